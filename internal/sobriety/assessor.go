package sobriety

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/saferound/saferound/internal/observability"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// scoringGuidelines instructs the model to emit the exact JSON schema the
// adapter parses. Higher jitter, slower reactions and more typos lower the
// score; below 40 is impaired, below 25 is an emergency.
const scoringGuidelines = `You are assessing human sobriety based on game and sensor telemetry.

Return ONLY valid JSON matching this schema:
{
  "sobriety_score": number (0-100),
  "recommendation": string,
  "is_emergency": boolean
}

Interpretation guidelines:
- Higher jitter, slower reactions, and many typing errors reduce the score
- < 40 indicates impaired
- < 25 indicates dangerous impairment (emergency)
- Be conservative and safety-focused`

// Safety defaults. The fallback is intentionally alarmist: failure to assess
// must never read as "probably fine".
var (
	neutralResult = Result{
		Score:          50,
		Recommendation: "Sobriety AI not configured; defaulting to neutral score.",
		IsEmergency:    false,
	}
	fallbackResult = Result{
		Score:          30,
		Recommendation: "Unable to reliably assess sobriety. Play it safe.",
		IsEmergency:    true,
	}
)

// Assessor calls the external scorer with a bounded timeout. A nil or
// unconfigured Assessor degrades to the neutral default.
type Assessor struct {
	logger     *slog.Logger
	apiKey     string
	endpoint   string
	httpClient *http.Client
	metrics    *observability.Metrics
}

// NewAssessor constructs the adapter. An empty apiKey leaves the external
// call disabled.
func NewAssessor(logger *slog.Logger, apiKey string, timeout time.Duration, metrics *observability.Metrics) *Assessor {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Assessor{
		logger:   logger,
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
	}
}

// Assess scores the telemetry. It never returns an error and never blocks
// beyond the configured timeout; a single failed attempt goes straight to the
// safety fallback, no retries.
func (a *Assessor) Assess(ctx context.Context, telemetry Telemetry) Result {
	if a == nil || a.apiKey == "" {
		a.observe(StateUnconfigured)
		return neutralResult
	}

	result, err := a.callScorer(ctx, telemetry)
	if err != nil {
		a.logger.Warn("sobriety scorer failed, using safety fallback", slog.Any("error", err))
		a.observe(StateFallback)
		return fallbackResult
	}
	a.observe(StateOK)
	return result
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string  `json:"responseMimeType"`
		Temperature      float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (a *Assessor) callScorer(ctx context.Context, telemetry Telemetry) (Result, error) {
	payload, err := json.Marshal(telemetry)
	if err != nil {
		return Result{}, fmt.Errorf("marshal telemetry: %w", err)
	}

	reqBody := generateRequest{
		Contents: []generateContent{{
			Role: "user",
			Parts: []generatePart{
				{Text: scoringGuidelines},
				{Text: "Sobriety telemetry:\n" + string(payload)},
			},
		}},
	}
	reqBody.GenerationConfig.ResponseMimeType = "application/json"
	reqBody.GenerationConfig.Temperature = 0.2

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+"?key="+a.apiKey, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("scorer returned status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return Result{}, fmt.Errorf("scorer returned no candidates")
	}

	var result Result
	if err := json.Unmarshal([]byte(decoded.Candidates[0].Content.Parts[0].Text), &result); err != nil {
		return Result{}, fmt.Errorf("parse scorer JSON: %w", err)
	}
	if result.Score < 0 || result.Score > 100 {
		return Result{}, fmt.Errorf("score %d outside 0-100", result.Score)
	}
	return result, nil
}

func (a *Assessor) observe(state string) {
	if a != nil && a.metrics != nil {
		a.metrics.ObserveSobrietyState(state)
	}
}
