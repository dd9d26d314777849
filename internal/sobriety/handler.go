package sobriety

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saferound/saferound/internal/platform/httpx"
)

// EmergencyNotifier dispatches a guardian alert for emergency assessments.
type EmergencyNotifier interface {
	NotifyEmergency(ctx context.Context, userID, recommendation string) error
}

// Handler exposes the sobriety assessment endpoint.
type Handler struct {
	logger   *slog.Logger
	assessor *Assessor
	notifier EmergencyNotifier
}

// NewHandler constructs a Handler. The notifier is optional.
func NewHandler(logger *slog.Logger, assessor *Assessor, notifier EmergencyNotifier) *Handler {
	return &Handler{logger: logger, assessor: assessor, notifier: notifier}
}

// MountRoutes attaches sobriety routes to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sobriety/assess", h.assess)
}

type assessRequest struct {
	UserID string `json:"user_id,omitempty"`
	Telemetry
}

func (h *Handler) assess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	result := h.assessor.Assess(r.Context(), req.Telemetry)

	if result.IsEmergency && req.UserID != "" && h.notifier != nil {
		if err := h.notifier.NotifyEmergency(r.Context(), req.UserID, result.Recommendation); err != nil {
			h.logger.Error("emergency notify enqueue failed",
				slog.String("user_id", req.UserID),
				slog.Any("error", err),
			)
		}
	}

	httpx.JSON(w, http.StatusOK, result)
}
