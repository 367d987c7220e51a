package session

import (
	"errors"
	"time"
)

// Status of a relay session. Expiry is never stored as a status; an
// expired record is simply treated as absent.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

var (
	// ErrNotFound is returned when a token is absent or expired.
	// Callers cannot distinguish the two cases; both mean the flow
	// must restart with a fresh token.
	ErrNotFound = errors.New("session: not found")

	// ErrCollision is returned when a token is already present on
	// insert. Transient; the caller regenerates the token and retries.
	ErrCollision = errors.New("session: token collision")

	// ErrAlreadyCompleted is returned when Complete is called on a
	// session that already holds a result. Callers should treat it as
	// "already recorded", not as a user-facing failure.
	ErrAlreadyCompleted = errors.New("session: already completed")
)

// Session is one pending or completed verification handoff.
// Meta is the initiator-supplied record, copied through untouched.
// Result is set exactly once, by the executor's completion callback.
type Session struct {
	Token     string         `json:"token"`
	Meta      map[string]any `json:"meta"`
	Status    Status         `json:"status"`
	Result    map[string]any `json:"result,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Expired reports whether the session is past its TTL at the given
// instant. Evaluated at read time; never persisted.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
