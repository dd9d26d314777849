// Package sobriety wraps the external sobriety-scoring model behind a
// bounded-timeout, safety-biased adapter.
package sobriety

// Vec3 is a single accelerometer jitter sample.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// TypingTest carries the typing-game metrics.
type TypingTest struct {
	TypoCount   int     `json:"typo_count"`
	SpeedWPM    float64 `json:"speed_wpm"`
	TextEntered string  `json:"text_entered"`
}

// Telemetry is the payload collected by the mobile sobriety games.
type Telemetry struct {
	StraightLineJitter  []Vec3     `json:"straight_line_jitter"`
	ReactionLatenciesMs []float64  `json:"reaction_latencies_ms"`
	TypingTest          TypingTest `json:"typing_test"`
}

// Result is the assessment outcome. It is always well-formed: the adapter
// substitutes a safe default rather than failing.
type Result struct {
	Score          int    `json:"sobriety_score"`
	Recommendation string `json:"recommendation"`
	IsEmergency    bool   `json:"is_emergency"`
}

// Adapter states, used for metrics and tests.
const (
	StateUnconfigured = "unconfigured"
	StateOK           = "ok"
	StateFallback     = "fallback"
)
