package users

import (
	"time"

	"github.com/saferound/saferound/internal/bac"
)

// Profile describes a registered drinker. The authorization engine only reads
// profiles and may flip IsCutOff; everything else is owned by this module.
type Profile struct {
	UserID            string    `json:"user_id"`
	Age               int       `json:"age"`
	WeightKg          float64   `json:"weight_kg"`
	Sex               bac.Sex   `json:"sex"`
	PrimaryContact    string    `json:"primary_contact,omitempty"`
	EmergencyContacts []string  `json:"emergency_contacts,omitempty"`
	HeightCm          float64   `json:"height_cm,omitempty"`
	Tolerance         int       `json:"tolerance,omitempty"`
	IsCutOff          bool      `json:"is_cut_off"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ProfilePatch carries a partial profile update; nil fields are left untouched.
type ProfilePatch struct {
	Age               *int     `json:"age,omitempty" validate:"omitempty,gte=18"`
	WeightKg          *float64 `json:"weight_kg,omitempty" validate:"omitempty,gt=0"`
	Sex               *bac.Sex `json:"sex,omitempty" validate:"omitempty,oneof=male female"`
	PrimaryContact    *string  `json:"primary_contact,omitempty"`
	EmergencyContacts []string `json:"emergency_contacts,omitempty" validate:"omitempty,max=2"`
	HeightCm          *float64 `json:"height_cm,omitempty" validate:"omitempty,gte=0"`
	Tolerance         *int     `json:"tolerance,omitempty" validate:"omitempty,gte=1,lte=10"`
}
