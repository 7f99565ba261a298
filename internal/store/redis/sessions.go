package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/portal/internal/domain"
)

// SessionStore keeps visitor sessions in Redis so several portal instances
// can share them.
type SessionStore struct {
	client  *redis.Client
	idleTTL time.Duration
}

// NewSessionStore creates a Redis-backed session store. Each save refreshes
// the key expiry to idleTTL; 0 keeps sessions forever.
func NewSessionStore(client *redis.Client, idleTTL time.Duration) *SessionStore {
	return &SessionStore{
		client:  client,
		idleTTL: idleTTL,
	}
}

// Save stores a session in Redis
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, SessionKey(session.ID), data, s.idleTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get retrieves a session from Redis by ID
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, SessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	return &session, nil
}

// Delete removes a session from Redis
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, SessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Count returns the number of stored sessions (SCAN based, for diagnostics)
func (s *SessionStore) Count(ctx context.Context) (int, error) {
	count := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixSession+"*", 0).Iterator()
	for iter.Next(ctx) {
		if _, err := ExtractSessionID(iter.Val()); err == nil {
			count++
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
