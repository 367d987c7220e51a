package session

import (
	"context"
	"time"
)

// Store defines how relay sessions are stored and retrieved.
// Implementations must enforce expiry uniformly in Get and Complete so
// every caller sees the same semantics regardless of sweep timing, and
// must make Complete atomic: two concurrent completions of the same
// token cannot both observe a pending session.
type Store interface {
	// Create inserts a new session. Returns ErrCollision if the token
	// is already present.
	Create(ctx context.Context, s *Session) error

	// Get returns the session for a token, or ErrNotFound when the
	// token is absent or the session has expired.
	Get(ctx context.Context, token string) (*Session, error)

	// Complete atomically marks the session completed and records the
	// executor's result. Returns ErrNotFound for absent/expired tokens
	// and ErrAlreadyCompleted if a result was already recorded.
	Complete(ctx context.Context, token string, result map[string]any) (*Session, error)

	// Sweep removes sessions whose expiry is at or before now and
	// reports how many were removed. Idempotent; safe to call
	// concurrently with reads and writes.
	Sweep(ctx context.Context, now time.Time) int
}
