package drinks

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/saferound/saferound/internal/bac"
	"github.com/saferound/saferound/internal/users"
)

func newTestRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	NewHandler(slog.Default(), svc).MountRoutes(r)
	return r
}

func TestValidateDrinkEndpointApproves(t *testing.T) {
	svc := newTestService(newMemRepo(), demoProfiles(), nil)
	router := newTestRouter(svc)

	body := `{"user_id":"alice","drink_id":"d-1","alcohol_grams":14}`
	req := httptest.NewRequest(http.MethodPost, "/validate-drink", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var decision Decision
	if err := json.NewDecoder(rr.Body).Decode(&decision); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decision.Allowed || decision.Reason != ReasonOK {
		t.Fatalf("expected approval, got %+v", decision)
	}
}

func TestValidateDrinkEndpointDomainRejectionIs200(t *testing.T) {
	svc := newTestService(newMemRepo(), demoProfiles(), nil)
	router := newTestRouter(svc)

	body := `{"user_id":"bella","alcohol_grams":10}`
	req := httptest.NewRequest(http.MethodPost, "/validate-drink", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("domain rejection must stay 200, got %d", rr.Code)
	}
	var decision Decision
	if err := json.NewDecoder(rr.Body).Decode(&decision); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonServiceDenied {
		t.Fatalf("expected service denial, got %+v", decision)
	}
}

func TestValidateDrinkEndpointInfraFailureIs503(t *testing.T) {
	repo := newMemRepo()
	repo.failWith = errors.New("storage down")
	svc := newTestService(repo, demoProfiles(), nil)
	router := newTestRouter(svc)

	body := `{"user_id":"alice","alcohol_grams":10}`
	req := httptest.NewRequest(http.MethodPost, "/validate-drink", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for infrastructure failure, got %d", rr.Code)
	}
}

func TestValidateDrinkEndpointRejectsBadPayload(t *testing.T) {
	svc := newTestService(newMemRepo(), demoProfiles(), nil)
	router := newTestRouter(svc)

	cases := []struct {
		name string
		body string
	}{
		{"not json", `{{`},
		{"missing user", `{"alcohol_grams":10}`},
		{"negative grams", `{"user_id":"alice","alcohol_grams":-1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/validate-drink", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestEstimateBACEndpoint(t *testing.T) {
	svc := newTestService(newMemRepo(), demoProfiles(), nil)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/users/alice/bac?alcohol_grams=14&minutes_elapsed=240", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var result bac.Result
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.BAC != 0.2341 || result.Tier != bac.TierRed {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestEstimateBACEndpointUnknownUser(t *testing.T) {
	svc := newTestService(newMemRepo(), demoProfiles(), nil)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/users/ghost/bac?alcohol_grams=14", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestHistoryEndpointEmptyList(t *testing.T) {
	svc := newTestService(newMemRepo(), demoProfiles(), nil)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/users/alice/drinks", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

// Compile-time check: the engine's profile dependency matches the users service.
var _ ProfileReader = (*users.Service)(nil)
