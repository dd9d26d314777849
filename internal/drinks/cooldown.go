package drinks

import "time"

// DefaultCooldown is the minimum interval between two approved drinks.
const DefaultCooldown = 120 * time.Second

// Cooldown reports whether an authorization is blocked and for how long.
type Cooldown struct {
	Blocked          bool
	RemainingSeconds int64
}

// CheckCooldown applies the cooldown policy. No prior drink never blocks.
// The delta is computed in whole seconds; a negative delta (clock moved
// backward, or a caller-supplied now earlier than the last record) still
// counts as inside the window, failing safe toward blocking.
func CheckCooldown(last *time.Time, now time.Time, minInterval time.Duration) Cooldown {
	if last == nil {
		return Cooldown{}
	}
	deltaSeconds := int64(now.Sub(*last) / time.Second)
	minSeconds := int64(minInterval / time.Second)
	if deltaSeconds >= minSeconds {
		return Cooldown{}
	}
	return Cooldown{
		Blocked:          true,
		RemainingSeconds: minSeconds - deltaSeconds,
	}
}
