package users

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateRequest is the payload for registering a profile.
type CreateRequest struct {
	UserID            string   `json:"user_id" validate:"required"`
	Age               int      `json:"age" validate:"gte=18"`
	WeightKg          float64  `json:"weight_kg" validate:"gt=0"`
	Sex               string   `json:"sex" validate:"oneof=male female"`
	PrimaryContact    string   `json:"primary_contact"`
	EmergencyContacts []string `json:"emergency_contacts" validate:"max=2"`
	HeightCm          float64  `json:"height_cm" validate:"gte=0"`
	Tolerance         int      `json:"tolerance" validate:"omitempty,gte=1,lte=10"`
}

func (r CreateRequest) validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("users: invalid profile: %w", err)
	}
	return nil
}

func (p ProfilePatch) validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("users: invalid patch: %w", err)
	}
	return nil
}

func isValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}
