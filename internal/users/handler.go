package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saferound/saferound/internal/platform/httpx"
)

// Handler exposes profile management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches profile routes to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/users", h.create)
	r.Get("/users/{userID}", h.get)
	r.Put("/users/{userID}", h.upsert)
	r.Patch("/users/{userID}", h.patch)
	r.Patch("/users/{userID}/cut-off", h.setCutOff)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	profile, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, profile)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.Upsert(r.Context(), chi.URLParam(r, "userID"), req); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	var patch ProfilePatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.Patch(r.Context(), chi.URLParam(r, "userID"), patch); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) setCutOff(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsCutOff bool `json:"is_cut_off"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	userID := chi.URLParam(r, "userID")
	if err := h.service.SetCutOff(r.Context(), userID, body.IsCutOff); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"is_cut_off": body.IsCutOff})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "User not found")
	case errors.Is(err, ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "User already exists")
	case isValidationError(err):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("users handler", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
