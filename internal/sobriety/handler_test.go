package sobriety

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEmergencyNotifier struct {
	calls []string
}

func (n *recordingEmergencyNotifier) NotifyEmergency(ctx context.Context, userID, recommendation string) error {
	n.calls = append(n.calls, userID)
	return nil
}

func newHandlerRouter(a *Assessor, notifier EmergencyNotifier) http.Handler {
	r := chi.NewRouter()
	NewHandler(slog.Default(), a, notifier).MountRoutes(r)
	return r
}

func TestAssessEndpointUnconfigured(t *testing.T) {
	a := NewAssessor(slog.Default(), "", time.Second, nil)
	notifier := &recordingEmergencyNotifier{}
	router := newHandlerRouter(a, notifier)

	body := `{"user_id":"alice","straight_line_jitter":[],"reaction_latencies_ms":[300],"typing_test":{"typo_count":0,"speed_wpm":40,"text_entered":"ok"}}`
	req := httptest.NewRequest(http.MethodPost, "/sobriety/assess", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var result Result
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Equal(t, 50, result.Score)
	assert.False(t, result.IsEmergency)
	assert.Empty(t, notifier.calls)
}

func TestAssessEndpointEmergencyNotifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := newTestAssessor(srv.URL, time.Second)
	notifier := &recordingEmergencyNotifier{}
	router := newHandlerRouter(a, notifier)

	body := `{"user_id":"alice","reaction_latencies_ms":[900]}`
	req := httptest.NewRequest(http.MethodPost, "/sobriety/assess", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var result Result
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.True(t, result.IsEmergency)
	assert.Equal(t, []string{"alice"}, notifier.calls)
}

func TestAssessEndpointAnonymousEmergencySkipsNotify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := newTestAssessor(srv.URL, time.Second)
	notifier := &recordingEmergencyNotifier{}
	router := newHandlerRouter(a, notifier)

	body := `{"reaction_latencies_ms":[900]}`
	req := httptest.NewRequest(http.MethodPost, "/sobriety/assess", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, notifier.calls, "no user id means no one to notify about")
}

func TestAssessEndpointRejectsBadJSON(t *testing.T) {
	a := NewAssessor(slog.Default(), "", time.Second, nil)
	router := newHandlerRouter(a, nil)

	req := httptest.NewRequest(http.MethodPost, "/sobriety/assess", strings.NewReader("{{"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
