// Package bac estimates blood alcohol content with the Widmark formula and
// classifies the result into risk tiers.
package bac

import "math"

// Sex selects the Widmark distribution ratio.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Tier is an ordered risk classification derived from the BAC estimate.
type Tier string

const (
	TierGreen  Tier = "green"
	TierYellow Tier = "yellow"
	TierRed    Tier = "red"
)

// Widmark distribution ratios, kept as data so further categories can be
// added without touching the algorithm.
var distributionRatios = map[Sex]float64{
	SexMale:   0.68,
	SexFemale: 0.55,
}

// betaPerHour is the average elimination rate in BAC per hour.
const betaPerHour = 0.015

// Tier thresholds. Boundaries are exclusive: a BAC of exactly 0.08
// classifies green and exactly 0.12 classifies yellow.
const (
	yellowAbove = 0.08
	redAbove    = 0.12
)

// Result carries the rounded estimate and its classification.
type Result struct {
	BAC            float64 `json:"bac"`
	Tier           Tier    `json:"status"`
	NotifyGuardian bool    `json:"notify_guardian"`
}

// DistributionRatio returns the Widmark ratio for the given sex, falling back
// to the more conservative female ratio for unknown values.
func DistributionRatio(sex Sex) float64 {
	if r, ok := distributionRatios[sex]; ok {
		return r
	}
	return distributionRatios[SexFemale]
}

// Compute estimates BAC from body weight, sex, the cumulative alcohol dose in
// grams and the minutes elapsed since consumption started. Inputs are assumed
// validated by the caller; negative intermediate results clamp to zero. The
// value is rounded to four decimals before classification so that tier
// boundaries behave deterministically.
func Compute(weightKg float64, sex Sex, alcoholGrams, minutesElapsed float64) Result {
	r := DistributionRatio(sex)

	peak := alcoholGrams / (weightKg * r)
	elimination := betaPerHour * (minutesElapsed / 60.0)

	value := round4(math.Max(0, peak-elimination))

	tier := TierGreen
	switch {
	case value > redAbove:
		tier = TierRed
	case value > yellowAbove:
		tier = TierYellow
	}

	return Result{
		BAC:            value,
		Tier:           tier,
		NotifyGuardian: tier == TierRed,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
