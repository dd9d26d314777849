// Package observability collects Prometheus metrics for the HTTP layer and
// the drink authorization engine.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry and the application collectors.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authorizations  *prometheus.CounterVec
	riskTiers       *prometheus.CounterVec
	sobrietyStates  *prometheus.CounterVec
}

// NewMetrics initialises the registry and base collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "saferound_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "saferound_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	authorizations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "saferound_drink_authorizations_total",
		Help: "Drink authorization decisions by reason code and outcome.",
	}, []string{"reason", "allowed"})
	riskTiers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "saferound_bac_risk_tier_total",
		Help: "BAC estimates by resulting risk tier.",
	}, []string{"tier"})
	sobrietyStates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "saferound_sobriety_assessments_total",
		Help: "Sobriety assessments by adapter state.",
	}, []string{"state"})
	registry.MustRegister(requests, duration, authorizations, riskTiers, sobrietyStates)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		authorizations:  authorizations,
		riskTiers:       riskTiers,
		sobrietyStates:  sobrietyStates,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveAuthorization records a single authorization decision.
func (m *Metrics) ObserveAuthorization(reason string, allowed bool) {
	if m == nil {
		return
	}
	m.authorizations.WithLabelValues(reason, strconv.FormatBool(allowed)).Inc()
}

// ObserveRiskTier records a BAC estimate classification.
func (m *Metrics) ObserveRiskTier(tier string) {
	if m == nil {
		return
	}
	m.riskTiers.WithLabelValues(tier).Inc()
}

// ObserveSobrietyState records the adapter branch taken for an assessment.
func (m *Metrics) ObserveSobrietyState(state string) {
	if m == nil {
		return
	}
	m.sobrietyStates.WithLabelValues(state).Inc()
}

// Middleware records request metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)

		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
