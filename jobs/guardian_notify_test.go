package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferound/saferound/internal/groups"
)

// stubGroupRepo backs a real groups service with a single fixed group.
type stubGroupRepo struct {
	group         groups.Group
	members       []string
	notifications []groups.Notification
}

func (s *stubGroupRepo) CreateGroup(ctx context.Context, group groups.Group) error { return nil }

func (s *stubGroupRepo) GetGroup(ctx context.Context, groupID string) (groups.Group, error) {
	if groupID != s.group.ID {
		return groups.Group{}, groups.ErrNotFound
	}
	return s.group, nil
}

func (s *stubGroupRepo) AddMember(ctx context.Context, groupID, userID string) error { return nil }

func (s *stubGroupRepo) FindByMember(ctx context.Context, userID string) (groups.Group, error) {
	for _, member := range s.members {
		if member == userID {
			return s.group, nil
		}
	}
	return groups.Group{}, groups.ErrNotFound
}

func (s *stubGroupRepo) ListMembers(ctx context.Context, groupID string) ([]string, error) {
	return s.members, nil
}

func (s *stubGroupRepo) InsertNotifications(ctx context.Context, notifications []groups.Notification) error {
	s.notifications = append(s.notifications, notifications...)
	return nil
}

func (s *stubGroupRepo) ListNotifications(ctx context.Context, recipientID string) ([]groups.Notification, error) {
	return nil, nil
}

func newStubGroupRepo(members ...string) *stubGroupRepo {
	return &stubGroupRepo{
		group:   groups.Group{ID: "g-1", Name: "crew", OwnerID: members[0], CreatedAt: time.Now().UTC()},
		members: members,
	}
}

func TestGuardianNotifyFansOut(t *testing.T) {
	repo := newStubGroupRepo("alice", "bella", "carol")
	job := NewGuardianNotifyJob(groups.NewService(repo, nil, nil), nil, nil)

	task, err := NewGuardianNotifyTask(GuardianNotifyPayload{UserID: "alice", BAC: 0.13, Tier: "red"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, repo.notifications, 2)
	for _, n := range repo.notifications {
		assert.Equal(t, "alice", n.AboutUserID)
		assert.Contains(t, n.Message, "0.1300")
		assert.Contains(t, n.Message, "red")
	}
}

func TestGuardianNotifyKeepsExplicitMessage(t *testing.T) {
	repo := newStubGroupRepo("alice", "bella")
	job := NewGuardianNotifyJob(groups.NewService(repo, nil, nil), nil, nil)

	task, err := NewGuardianNotifyTask(GuardianNotifyPayload{UserID: "alice", Message: "Alice needs a ride home."})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, repo.notifications, 1)
	assert.Equal(t, "Alice needs a ride home.", repo.notifications[0].Message)
}

func TestGuardianNotifyUserWithoutGroupIsNotAnError(t *testing.T) {
	repo := newStubGroupRepo("bella")
	job := NewGuardianNotifyJob(groups.NewService(repo, nil, nil), nil, nil)

	task, err := NewGuardianNotifyTask(GuardianNotifyPayload{UserID: "loner", Message: "hello"})
	require.NoError(t, err)
	assert.NoError(t, job.Handle(context.Background(), task))
	assert.Empty(t, repo.notifications)
}

func TestGuardianNotifyMalformedPayloadSkipsRetry(t *testing.T) {
	repo := newStubGroupRepo("alice")
	job := NewGuardianNotifyJob(groups.NewService(repo, nil, nil), nil, nil)

	task := asynq.NewTask(TaskGuardianNotify, []byte("{{"))
	err := job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
