package drinks

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/saferound/saferound/internal/platform/httpx"
	"github.com/saferound/saferound/internal/users"
)

// Handler exposes the authorization and BAC estimate endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches drink routes to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/validate-drink", h.validateDrink)
	r.Get("/users/{userID}/bac", h.estimateBAC)
	r.Get("/users/{userID}/drinks", h.history)
}

func (h *Handler) validateDrink(w http.ResponseWriter, r *http.Request) {
	var req AuthorizeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	decision, err := h.service.Authorize(r.Context(), req)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		// Infrastructure failure: never render this as a denial.
		h.logger.Error("authorize failed", slog.String("user_id", req.UserID), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "")
		return
	}

	httpx.JSON(w, http.StatusOK, decision)
}

func (h *Handler) estimateBAC(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	grams, err := parseQueryFloat(r, "alcohol_grams")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "alcohol_grams must be a non-negative number")
		return
	}
	minutes, err := parseQueryFloat(r, "minutes_elapsed")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "minutes_elapsed must be a non-negative number")
		return
	}

	result, err := h.service.EstimateBAC(r.Context(), userID, grams, minutes)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "User not found")
			return
		}
		if errors.Is(err, errNegativeInput) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "inputs must be non-negative")
			return
		}
		h.logger.Error("estimate bac failed", slog.String("user_id", userID), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "")
		return
	}

	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	records, err := h.service.History(r.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "User not found")
			return
		}
		h.logger.Error("list drinks failed", slog.String("user_id", userID), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "")
		return
	}
	if records == nil {
		records = []Record{}
	}
	httpx.JSON(w, http.StatusOK, records)
}

func parseQueryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, errors.New("invalid query value")
	}
	return v, nil
}
