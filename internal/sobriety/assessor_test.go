package sobriety

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTelemetry() Telemetry {
	return Telemetry{
		StraightLineJitter:  []Vec3{{X: 0.1, Y: 0.2, Z: 0.05}},
		ReactionLatenciesMs: []float64{320, 410, 280, 350, 300},
		TypingTest:          TypingTest{TypoCount: 2, SpeedWPM: 41, TextEntered: "the quick brown fox"},
	}
}

func scorerStub(t *testing.T, status int, inner string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{{"text": inner}},
				},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestAssessor(endpoint string, timeout time.Duration) *Assessor {
	a := NewAssessor(slog.Default(), "test-key", timeout, nil)
	a.endpoint = endpoint
	return a
}

func TestAssessUnconfiguredReturnsNeutral(t *testing.T) {
	a := NewAssessor(slog.Default(), "", time.Second, nil)
	result := a.Assess(context.Background(), sampleTelemetry())
	assert.Equal(t, 50, result.Score)
	assert.False(t, result.IsEmergency)
}

func TestAssessParsesScorerResponse(t *testing.T) {
	srv := scorerStub(t, http.StatusOK, `{"sobriety_score":72,"recommendation":"You seem fine, stay hydrated.","is_emergency":false}`)
	defer srv.Close()

	a := newTestAssessor(srv.URL, time.Second)
	result := a.Assess(context.Background(), sampleTelemetry())
	assert.Equal(t, 72, result.Score)
	assert.Equal(t, "You seem fine, stay hydrated.", result.Recommendation)
	assert.False(t, result.IsEmergency)
}

func TestAssessFallbackOnServerError(t *testing.T) {
	srv := scorerStub(t, http.StatusInternalServerError, "")
	defer srv.Close()

	a := newTestAssessor(srv.URL, time.Second)
	result := a.Assess(context.Background(), sampleTelemetry())
	assert.Equal(t, fallbackResult, result)
	assert.True(t, result.IsEmergency, "failure to assess must be alarmist")
}

func TestAssessFallbackOnMalformedJSON(t *testing.T) {
	srv := scorerStub(t, http.StatusOK, `not json at all`)
	defer srv.Close()

	a := newTestAssessor(srv.URL, time.Second)
	result := a.Assess(context.Background(), sampleTelemetry())
	assert.Equal(t, fallbackResult, result)
}

func TestAssessFallbackOnSchemaViolation(t *testing.T) {
	srv := scorerStub(t, http.StatusOK, `{"sobriety_score":250,"recommendation":"","is_emergency":false}`)
	defer srv.Close()

	a := newTestAssessor(srv.URL, time.Second)
	result := a.Assess(context.Background(), sampleTelemetry())
	assert.Equal(t, fallbackResult, result)
}

func TestAssessFallbackOnEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	a := newTestAssessor(srv.URL, time.Second)
	result := a.Assess(context.Background(), sampleTelemetry())
	assert.Equal(t, fallbackResult, result)
}

func TestAssessFallbackOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	a := newTestAssessor(srv.URL, 50*time.Millisecond)

	start := time.Now()
	result := a.Assess(context.Background(), sampleTelemetry())
	require.Less(t, time.Since(start), time.Second, "assess must not block past its timeout")
	assert.Equal(t, fallbackResult, result)
}

func TestAssessNeverPanicsOnNilAssessor(t *testing.T) {
	var a *Assessor
	result := a.Assess(context.Background(), sampleTelemetry())
	assert.Equal(t, neutralResult, result)
}
