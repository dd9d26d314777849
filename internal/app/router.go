package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/saferound/saferound/internal/drinks"
	"github.com/saferound/saferound/internal/groups"
	"github.com/saferound/saferound/internal/observability"
	"github.com/saferound/saferound/internal/sobriety"
	"github.com/saferound/saferound/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	UsersHandler    *users.Handler
	DrinksHandler   *drinks.Handler
	SobrietyHandler *sobriety.Handler
	GroupsHandler   *groups.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with SafeRound defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.DrinksHandler != nil {
		params.DrinksHandler.MountRoutes(r)
	}
	if params.UsersHandler != nil {
		params.UsersHandler.MountRoutes(r)
	}
	if params.SobrietyHandler != nil {
		params.SobrietyHandler.MountRoutes(r)
	}
	if params.GroupsHandler != nil {
		params.GroupsHandler.MountRoutes(r)
	}

	return r
}
