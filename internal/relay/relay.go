package relay

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"selfie-relay/internal/payload"
	"selfie-relay/internal/session"
)

// DefaultTTL bounds how long the executor has to finish a capture
// before the handoff has to be restarted.
const DefaultTTL = 15 * time.Minute

// tokenAttempts bounds collision retries on issue. A collision of two
// 256-bit tokens is effectively impossible; the retry exists so an
// accidental one stays invisible to the caller.
const tokenAttempts = 3

// ValidationError reports which required metadata keys were missing at
// issuance. The caller must fix the request; retrying does not help.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("relay: missing required meta keys: %s", strings.Join(e.Missing, ", "))
}

// Issued is the outcome of a successful Issue call. Payload is the
// encoded meta for boundaries that want the self-describing form of
// the reference URL; the store record keyed by Token stays
// authoritative either way.
type Issued struct {
	Token        string
	Payload      string
	ReferenceURL string
}

// StatusReport is the pollable view of a session returned to the
// initiator. Result is nil until the executor completes the session.
type StatusReport struct {
	Status session.Status
	Meta   map[string]any
	Result map[string]any
}

// Relay is the state machine tying issuance, handoff, completion and
// status polling together. Every boundary adapter talks to it; nothing
// here touches the network.
type Relay struct {
	store        session.Store
	requiredKeys []string
	ttl          time.Duration
	baseURL      string
	path         string
	now          func() time.Time
}

// Config for a Relay. RequiredKeys is the minimal metadata the
// initiator must supply; everything else in meta is copied through.
type Config struct {
	Store        session.Store
	RequiredKeys []string
	TTL          time.Duration
	BaseURL      string
	Path         string
}

// New creates a Relay. TTL defaults to DefaultTTL when unset.
func New(cfg Config) *Relay {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Relay{
		store:        cfg.Store,
		requiredKeys: cfg.RequiredKeys,
		ttl:          ttl,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		path:         cfg.Path,
		now:          time.Now,
	}
}

// Issue validates the initiator's metadata, mints a token, stores a
// pending session and returns the reference URL for the executor
// context to open.
func (r *Relay) Issue(ctx context.Context, meta map[string]any) (*Issued, error) {
	if err := r.validate(meta); err != nil {
		return nil, err
	}

	encoded, err := payload.Encode(meta)
	if err != nil {
		return nil, err
	}

	now := r.now()

	for attempt := 0; attempt < tokenAttempts; attempt++ {
		token, err := session.GenerateID()
		if err != nil {
			return nil, err
		}

		s := &session.Session{
			Token:     token,
			Meta:      meta,
			Status:    session.StatusPending,
			CreatedAt: now,
			ExpiresAt: now.Add(r.ttl),
		}

		err = r.store.Create(ctx, s)
		if errors.Is(err, session.ErrCollision) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return &Issued{
			Token:        token,
			Payload:      encoded,
			ReferenceURL: fmt.Sprintf("%s%s?c=%s", r.baseURL, r.path, token),
		}, nil
	}

	return nil, fmt.Errorf("relay: could not mint a unique token after %d attempts", tokenAttempts)
}

// Resolve returns the metadata stored for a token. This is what the
// executor boundary calls to recover context before starting capture.
// Pure read; no state change.
func (r *Relay) Resolve(ctx context.Context, token string) (map[string]any, error) {
	s, err := r.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	return s.Meta, nil
}

// Complete records the executor's result exactly once, stamping the
// completion instant into it. Retries after the first success observe
// session.ErrAlreadyCompleted; callers treat that as already recorded.
func (r *Relay) Complete(ctx context.Context, token string, result map[string]any) error {
	stamped := make(map[string]any, len(result)+1)
	for k, v := range result {
		stamped[k] = v
	}
	stamped["completedAt"] = r.now().UTC().Format(time.RFC3339)

	_, err := r.store.Complete(ctx, token, stamped)
	return err
}

// Status is the initiator's polling read: current status plus the
// original meta, and the result once completed.
func (r *Relay) Status(ctx context.Context, token string) (*StatusReport, error) {
	s, err := r.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	return &StatusReport{
		Status: s.Status,
		Meta:   s.Meta,
		Result: s.Result,
	}, nil
}

func (r *Relay) validate(meta map[string]any) error {
	var missing []string

	for _, key := range r.requiredKeys {
		v, ok := meta[key]
		if !ok || v == nil || v == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationError{Missing: missing}
	}

	return nil
}
