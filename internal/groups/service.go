package groups

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Dispatcher hands a guardian notification off to the background worker; the
// fan-out to individual members happens there, not inline.
type Dispatcher interface {
	DispatchGuardianNotify(ctx context.Context, aboutUserID, message string) error
}

// Service handles group lifecycle and notification intents.
type Service struct {
	repo       Repository
	codes      *CodeStore
	dispatcher Dispatcher
	clock      func() time.Time
}

// NewService builds a Service. The dispatcher is optional; without it Notify
// records rows synchronously.
func NewService(repo Repository, codes *CodeStore, dispatcher Dispatcher) *Service {
	return &Service{
		repo:       repo,
		codes:      codes,
		dispatcher: dispatcher,
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// Create starts a group owned by ownerID and issues a join code for it.
func (s *Service) Create(ctx context.Context, ownerID, name string) (Group, string, error) {
	if name == "" {
		name = "SafeRound group"
	}
	group := Group{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: s.clock(),
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return Group{}, "", fmt.Errorf("groups: create: %w", err)
	}
	code, err := s.codes.Issue(ctx, group.ID)
	if err != nil {
		return Group{}, "", err
	}
	return group, code, nil
}

// Join adds the user to the group behind a live invite code.
func (s *Service) Join(ctx context.Context, code, userID string) (Group, error) {
	groupID, err := s.codes.Resolve(ctx, code)
	if err != nil {
		return Group{}, err
	}
	if err := s.repo.AddMember(ctx, groupID, userID); err != nil {
		return Group{}, fmt.Errorf("groups: join: %w", err)
	}
	return s.repo.GetGroup(ctx, groupID)
}

// Notify records a safety message about the user for every other member of
// their group. With a dispatcher wired the write happens in the worker.
func (s *Service) Notify(ctx context.Context, aboutUserID, message string) error {
	if message == "" {
		message = "A member of your group may need attention."
	}
	if s.dispatcher != nil {
		return s.dispatcher.DispatchGuardianNotify(ctx, aboutUserID, message)
	}
	return s.FanOut(ctx, aboutUserID, message)
}

// FanOut performs the actual notification writes. Called by the worker task,
// or directly when no dispatcher is configured.
func (s *Service) FanOut(ctx context.Context, aboutUserID, message string) error {
	group, err := s.repo.FindByMember(ctx, aboutUserID)
	if err != nil {
		return err
	}
	members, err := s.repo.ListMembers(ctx, group.ID)
	if err != nil {
		return err
	}

	now := s.clock()
	var notifications []Notification
	for _, member := range members {
		if member == aboutUserID {
			continue
		}
		notifications = append(notifications, Notification{
			ID:          uuid.NewString(),
			GroupID:     group.ID,
			RecipientID: member,
			AboutUserID: aboutUserID,
			Message:     message,
			CreatedAt:   now,
		})
	}
	return s.repo.InsertNotifications(ctx, notifications)
}

// Notifications lists the most recent notifications for a recipient.
func (s *Service) Notifications(ctx context.Context, recipientID string) ([]Notification, error) {
	return s.repo.ListNotifications(ctx, recipientID)
}
