// Package groups manages guardian groups: small circles of contacts that
// receive safety notifications about each other.
package groups

import "time"

// Group is a guardian circle.
type Group struct {
	ID        string    `json:"group_id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is a message recorded for a group member. Delivery semantics
// beyond persisting the row are out of scope.
type Notification struct {
	ID          string    `json:"notification_id"`
	GroupID     string    `json:"group_id"`
	RecipientID string    `json:"recipient_id"`
	AboutUserID string    `json:"about_user_id"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}
