package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("scrape failed with %d", rr.Code)
	}
	return rr.Body.String()
}

func TestObserveAuthorization(t *testing.T) {
	m := NewMetrics()
	m.ObserveAuthorization("OK", true)
	m.ObserveAuthorization("COOLDOWN", false)
	m.ObserveAuthorization("COOLDOWN", false)

	body := scrape(t, m)
	if !strings.Contains(body, `saferound_drink_authorizations_total{allowed="true",reason="OK"} 1`) {
		t.Fatalf("missing OK counter in scrape:\n%s", body)
	}
	if !strings.Contains(body, `saferound_drink_authorizations_total{allowed="false",reason="COOLDOWN"} 2`) {
		t.Fatalf("missing COOLDOWN counter in scrape:\n%s", body)
	}
}

func TestObserveRiskTierAndSobrietyState(t *testing.T) {
	m := NewMetrics()
	m.ObserveRiskTier("red")
	m.ObserveSobrietyState("fallback")

	body := scrape(t, m)
	if !strings.Contains(body, `saferound_bac_risk_tier_total{tier="red"} 1`) {
		t.Fatalf("missing risk tier counter in scrape:\n%s", body)
	}
	if !strings.Contains(body, `saferound_sobriety_assessments_total{state="fallback"} 1`) {
		t.Fatalf("missing sobriety state counter in scrape:\n%s", body)
	}
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	m := NewMetrics()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/validate-drink", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	body := scrape(t, m)
	if !strings.Contains(body, `saferound_http_requests_total{code="418",route="/validate-drink"} 1`) {
		t.Fatalf("missing request counter in scrape:\n%s", body)
	}
}

func TestNilMetricsAreInert(t *testing.T) {
	var m *Metrics
	m.ObserveAuthorization("OK", true)
	m.ObserveRiskTier("GREEN")
	m.ObserveSobrietyState("ok")

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from nil metrics handler, got %d", rr.Code)
	}
}
