package drinks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/saferound/saferound/internal/bac"
	"github.com/saferound/saferound/internal/observability"
	"github.com/saferound/saferound/internal/users"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ProfileReader is the slice of the users module the engine consumes.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (users.Profile, error)
}

// GuardianNotifier dispatches a guardian alert when a BAC estimate classifies
// red. Implementations must not block the caller beyond enqueueing.
type GuardianNotifier interface {
	NotifyRed(ctx context.Context, userID string, result bac.Result) error
}

// Service orchestrates drink authorization.
type Service struct {
	logger   *slog.Logger
	profiles ProfileReader
	repo     Repository
	notifier GuardianNotifier
	metrics  *observability.Metrics
	cooldown time.Duration
	clock    func() time.Time
}

// ServiceConfig collects the engine dependencies. Notifier and Metrics are
// optional; Cooldown defaults to DefaultCooldown when zero.
type ServiceConfig struct {
	Logger   *slog.Logger
	Profiles ProfileReader
	Repo     Repository
	Notifier GuardianNotifier
	Metrics  *observability.Metrics
	Cooldown time.Duration
}

// NewService builds the authorization engine.
func NewService(cfg ServiceConfig) *Service {
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:   logger,
		profiles: cfg.Profiles,
		repo:     cfg.Repo,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		cooldown: cooldown,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// Authorize decides a single drink request. Rejections for domain reasons
// come back as a Decision with Allowed=false; an error return always means
// infrastructure failure and must not be conflated with a denial.
func (s *Service) Authorize(ctx context.Context, req AuthorizeRequest) (Decision, error) {
	if err := validate.Struct(req); err != nil {
		return Decision{}, fmt.Errorf("drinks: invalid request: %w", err)
	}
	if req.DrinkID == "" {
		req.DrinkID = uuid.NewString()
	}

	profile, err := s.profiles.Get(ctx, req.UserID)
	if errors.Is(err, users.ErrNotFound) {
		return s.decided(Decision{Allowed: false, Reason: ReasonServiceDenied, Message: msgUserNotFound}), nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("drinks: load user: %w", err)
	}

	if profile.IsCutOff {
		return s.decided(Decision{Allowed: false, Reason: ReasonServiceDenied, Message: msgCutOff}), nil
	}

	now := s.clock()
	if req.ScannedAt != nil {
		now = req.ScannedAt.UTC()
	}

	outcome, err := s.repo.AppendDrinkAtomic(ctx, Record{
		DrinkID:      req.DrinkID,
		UserID:       req.UserID,
		AlcoholGrams: req.AlcoholGrams,
		Timestamp:    now,
	}, s.cooldown)
	if err != nil {
		return Decision{}, fmt.Errorf("drinks: append record: %w", err)
	}

	switch outcome.Status {
	case AppendCooldown:
		return s.decided(Decision{
			Allowed:     false,
			Reason:      ReasonCooldown,
			Message:     msgCooldown,
			LastDrinkAt: outcome.LastDrinkAt,
		}), nil
	case AppendReplayed:
		// Same drink ID seen before: the original approval stands.
		s.logger.Info("drink authorization replayed",
			slog.String("user_id", req.UserID),
			slog.String("drink_id", req.DrinkID),
		)
		return s.decided(Decision{Allowed: true, Reason: ReasonOK, Message: msgApproved}), nil
	default:
		return s.decided(Decision{Allowed: true, Reason: ReasonOK, Message: msgApproved}), nil
	}
}

// EstimateBAC is the read-only sibling of Authorize: it never writes history.
// Red-tier results dispatch a guardian notification when a notifier is wired.
func (s *Service) EstimateBAC(ctx context.Context, userID string, alcoholGrams, minutesElapsed float64) (bac.Result, error) {
	if alcoholGrams < 0 || minutesElapsed < 0 {
		return bac.Result{}, fmt.Errorf("drinks: estimate: %w", errNegativeInput)
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return bac.Result{}, err
	}

	result := bac.Compute(profile.WeightKg, profile.Sex, alcoholGrams, minutesElapsed)
	if s.metrics != nil {
		s.metrics.ObserveRiskTier(string(result.Tier))
	}

	if result.NotifyGuardian && s.notifier != nil {
		if err := s.notifier.NotifyRed(ctx, userID, result); err != nil {
			// Notification is best effort; the estimate itself must not fail.
			s.logger.Error("guardian notify enqueue failed",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
		}
	}
	return result, nil
}

// History returns the user's drink records, oldest first.
func (s *Service) History(ctx context.Context, userID string) ([]Record, error) {
	if _, err := s.profiles.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

var errNegativeInput = errors.New("negative input")

func (s *Service) decided(d Decision) Decision {
	if s.metrics != nil {
		s.metrics.ObserveAuthorization(string(d.Reason), d.Allowed)
	}
	return d
}
