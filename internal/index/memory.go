package index

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/portal/internal/domain"
)

// MemorySessions keeps visitor sessions in process memory.
// Entries are stored serialized so callers never share a *domain.Session
// between concurrent requests.
type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry // ID -> session
	limit    int                    // 0 => unbounded
}

type memoryEntry struct {
	data     []byte
	lastSeen time.Time
}

// Option configures a MemorySessions.
type Option func(*MemorySessions)

// WithLimit caps the number of stored sessions. Saving a new session into a
// full store evicts the one seen least recently.
func WithLimit(n int) Option {
	return func(m *MemorySessions) {
		if n > 0 {
			m.limit = n
		}
	}
}

// NewMemorySessions creates an empty in-memory session store.
func NewMemorySessions(opts ...Option) *MemorySessions {
	m := &MemorySessions{
		sessions: make(map[string]memoryEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a private copy of the session with the given id.
func (m *MemorySessions) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	var s domain.Session
	if err := json.Unmarshal(entry.data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	return &s, nil
}

// Save adds or replaces a session.
func (m *MemorySessions) Save(_ context.Context, s *domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; !ok && m.limit > 0 && len(m.sessions) >= m.limit {
		m.evictOldestLocked()
	}
	m.sessions[s.ID] = memoryEntry{data: data, lastSeen: s.LastSeenAt}
	return nil
}

func (m *MemorySessions) evictOldestLocked() {
	var oldest string
	var seen time.Time
	for id, entry := range m.sessions {
		if oldest == "" || entry.lastSeen.Before(seen) {
			oldest, seen = id, entry.lastSeen
		}
	}
	delete(m.sessions, oldest)
}

// Delete removes a session. Unknown ids are ignored.
func (m *MemorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// Ping always succeeds; it exists to satisfy readiness checks.
func (m *MemorySessions) Ping(context.Context) error { return nil }

// Len returns the number of live sessions.
func (m *MemorySessions) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Count is Len for callers that also talk to remote backends.
func (m *MemorySessions) Count(context.Context) (int, error) {
	return m.Len(), nil
}

// DeleteIdle removes sessions not seen since cutoff and returns how many were dropped.
func (m *MemorySessions) DeleteIdle(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for id, entry := range m.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted
}
