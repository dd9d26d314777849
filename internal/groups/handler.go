package groups

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saferound/saferound/internal/platform/httpx"
)

// Handler exposes group endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches group routes to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/groups", h.create)
	r.Post("/groups/join", h.join)
	r.Post("/groups/notify", h.notify)
	r.Get("/users/{userID}/notifications", h.notifications)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil || body.UserID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "user_id is required")
		return
	}
	group, code, err := h.service.Create(r.Context(), body.UserID, body.Name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"group": group,
		"code":  code,
	})
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code   string `json:"code"`
		UserID string `json:"user_id"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil || body.Code == "" || body.UserID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "code and user_id are required")
		return
	}
	group, err := h.service.Join(r.Context(), body.Code, body.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, group)
}

func (h *Handler) notify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID  string `json:"user_id"`
		Message string `json:"message"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil || body.UserID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "user_id is required")
		return
	}
	if err := h.service.Notify(r.Context(), body.UserID, body.Message); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}

func (h *Handler) notifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.service.Notifications(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if notifications == nil {
		notifications = []Notification{}
	}
	httpx.JSON(w, http.StatusOK, notifications)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrCodeNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Invite code not found or expired")
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Group not found")
	default:
		h.logger.Error("groups handler", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
