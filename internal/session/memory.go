package session

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a mutex-guarded map. It is the default
// backend: sessions are short-lived, so losing them on restart is an
// accepted limitation. The whole store is one critical section, which
// keeps Complete and Sweep trivially exclusive per token.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	if s.Token == "" {
		return fmt.Errorf("session: missing token")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.Token]; exists {
		return ErrCollision
	}

	m.sessions[s.Token] = snapshot(s)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.live(token)
	if err != nil {
		return nil, err
	}

	return snapshot(s), nil
}

func (m *MemoryStore) Complete(_ context.Context, token string, result map[string]any) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.live(token)
	if err != nil {
		return nil, err
	}

	if s.Status == StatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	s.Status = StatusCompleted
	s.Result = maps.Clone(result)

	return snapshot(s), nil
}

func (m *MemoryStore) Sweep(_ context.Context, now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, token)
			removed++
		}
	}

	return removed
}

// live returns the stored session for a token, deleting it first when
// expired. Expiry is enforced here so every read path sees the same
// semantics even if the sweeper has not run yet. Caller holds mu.
func (m *MemoryStore) live(token string) (*Session, error) {
	s, exists := m.sessions[token]
	if !exists {
		return nil, ErrNotFound
	}

	if s.Expired(m.now()) {
		delete(m.sessions, token)
		return nil, ErrNotFound
	}

	return s, nil
}

// snapshot copies a session so callers never share map memory with the
// store or observe a partial write.
func snapshot(s *Session) *Session {
	c := *s
	c.Meta = maps.Clone(s.Meta)
	c.Result = maps.Clone(s.Result)
	return &c
}
