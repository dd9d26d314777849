// Package drinks implements the drink authorization engine: cutoff and
// cooldown enforcement with an atomic record append per approved drink.
package drinks

import "time"

// Reason is the stable machine-readable code carried by every decision.
type Reason string

const (
	ReasonOK            Reason = "OK"
	ReasonCooldown      Reason = "COOLDOWN"
	ReasonServiceDenied Reason = "SERVICE_DENIED"
)

// User-visible decision messages. Clients branch on Reason and display these
// verbatim.
const (
	msgUserNotFound = "User not found."
	msgCutOff       = "You are currently cut off."
	msgCooldown     = "Please wait before ordering another drink."
	msgApproved     = "Drink approved."
)

// Record is the immutable fact written once per approved drink.
type Record struct {
	DrinkID      string    `json:"drink_id"`
	UserID       string    `json:"user_id"`
	AlcoholGrams float64   `json:"alcohol_grams"`
	Timestamp    time.Time `json:"timestamp"`
}

// Decision is the transient outcome of an authorization attempt. Domain
// rejections are data, never errors; only infrastructure failures surface as
// errors.
type Decision struct {
	Allowed     bool       `json:"allowed"`
	Reason      Reason     `json:"reason"`
	Message     string     `json:"message"`
	LastDrinkAt *time.Time `json:"last_drink_at,omitempty"`
}

// AuthorizeRequest is the structured input for an authorization attempt.
// DrinkID doubles as an idempotency token; when empty one is generated.
type AuthorizeRequest struct {
	DrinkID      string     `json:"drink_id"`
	UserID       string     `json:"user_id" validate:"required"`
	AlcoholGrams float64    `json:"alcohol_grams" validate:"gte=0"`
	ScannedAt    *time.Time `json:"scanned_at,omitempty"`
}
