package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore implements remote.SessionStore on Redis keys with a TTL.
// Key format: session:<session_id> holding the user id.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Open records an active session that expires after ttl.
func (s *SessionStore) Open(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(sessionID), userID, ttl).Err(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	return nil
}

// Lookup reports the user bound to sessionID while the session is active.
func (s *SessionStore) Lookup(ctx context.Context, sessionID string) (string, bool, error) {
	userID, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup session: %w", err)
	}
	return userID, true, nil
}

// Revoke ends the session. Revoking an unknown session is not an error.
func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(sessionID string) string {
	return "session:" + sessionID
}
