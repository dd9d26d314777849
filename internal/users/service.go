package users

import (
	"context"

	"github.com/saferound/saferound/internal/bac"
)

// Service handles profile business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new profile. Duplicate user IDs return ErrDuplicate.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Profile, error) {
	if err := req.validate(); err != nil {
		return Profile{}, err
	}
	return s.repo.Create(ctx, Profile{
		UserID:            req.UserID,
		Age:               req.Age,
		WeightKg:          req.WeightKg,
		Sex:               bac.Sex(req.Sex),
		PrimaryContact:    req.PrimaryContact,
		EmergencyContacts: req.EmergencyContacts,
		HeightCm:          req.HeightCm,
		Tolerance:         req.Tolerance,
	})
}

// Get returns a profile by ID.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	return s.repo.Get(ctx, userID)
}

// Upsert replaces a profile, creating it when absent.
func (s *Service) Upsert(ctx context.Context, userID string, req CreateRequest) error {
	req.UserID = userID
	if err := req.validate(); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, Profile{
		UserID:            userID,
		Age:               req.Age,
		WeightKg:          req.WeightKg,
		Sex:               bac.Sex(req.Sex),
		PrimaryContact:    req.PrimaryContact,
		EmergencyContacts: req.EmergencyContacts,
		HeightCm:          req.HeightCm,
		Tolerance:         req.Tolerance,
	})
}

// Patch applies a partial profile update.
func (s *Service) Patch(ctx context.Context, userID string, patch ProfilePatch) error {
	if err := patch.validate(); err != nil {
		return err
	}
	return s.repo.Patch(ctx, userID, patch)
}

// SetCutOff flips the cutoff flag. The drink authorization engine never
// clears this; only this explicit call does.
func (s *Service) SetCutOff(ctx context.Context, userID string, cutOff bool) error {
	return s.repo.SetCutOff(ctx, userID, cutOff)
}
