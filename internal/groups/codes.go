package groups

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCodeNotFound indicates an unknown or expired invite code.
var ErrCodeNotFound = errors.New("invite code not found")

const codeKeyPrefix = "groups:code:"

// CodeStore keeps short-lived six-digit invite codes in Redis.
type CodeStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCodeStore constructs the store.
func NewCodeStore(client *redis.Client, ttl time.Duration) *CodeStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CodeStore{client: client, ttl: ttl}
}

// Issue generates a fresh code bound to the group. Collisions with live codes
// are retried; SETNX keeps an existing binding intact.
func (s *CodeStore) Issue(ctx context.Context, groupID string) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code := fmt.Sprintf("%06d", rand.Intn(1000000))
		ok, err := s.client.SetNX(ctx, codeKeyPrefix+code, groupID, s.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("groups: issue code: %w", err)
		}
		if ok {
			return code, nil
		}
	}
	return "", errors.New("groups: could not allocate an invite code")
}

// Resolve looks up the group bound to a code.
func (s *CodeStore) Resolve(ctx context.Context, code string) (string, error) {
	groupID, err := s.client.Get(ctx, codeKeyPrefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("groups: resolve code: %w", err)
	}
	return groupID, nil
}
