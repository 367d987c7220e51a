package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed session store for deployments that want
// sessions to survive a process restart. Expiry rides on the key TTL,
// so Sweep has nothing to do. Complete uses an optimistic WATCH
// transaction to keep the at-most-once guarantee across processes.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "relay:session:",
	}
}

func (r *RedisStore) key(token string) string {
	return r.prefix + token
}

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	if s.Token == "" {
		return fmt.Errorf("session: missing token")
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(s.Token), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrCollision
	}

	return nil
}

func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	val, err := r.client.Get(ctx, r.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}

	if s.Expired(time.Now()) {
		// TTL should have evicted it already; enforce anyway.
		_ = r.client.Del(ctx, r.key(token)).Err()
		return nil, ErrNotFound
	}

	return &s, nil
}

func (r *RedisStore) Complete(ctx context.Context, token string, result map[string]any) (*Session, error) {
	const attempts = 3

	var completed *Session

	txn := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, r.key(token)).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var s Session
		if err := json.Unmarshal([]byte(val), &s); err != nil {
			return fmt.Errorf("session: failed to unmarshal: %w", err)
		}

		if s.Expired(time.Now()) {
			return ErrNotFound
		}
		if s.Status == StatusCompleted {
			return ErrAlreadyCompleted
		}

		s.Status = StatusCompleted
		s.Result = maps.Clone(result)

		data, err := json.Marshal(&s)
		if err != nil {
			return fmt.Errorf("session: failed to marshal: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key(token), data, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}

		completed = &s
		return nil
	}

	for i := 0; i < attempts; i++ {
		err := r.client.Watch(ctx, txn, r.key(token))
		if errors.Is(err, redis.TxFailedErr) {
			continue // key changed under us; re-read and retry
		}
		if err != nil {
			return nil, err
		}
		return completed, nil
	}

	// Every retry lost the race; by now the winner has completed it.
	return nil, ErrAlreadyCompleted
}

// Sweep is a no-op: Redis evicts sessions through the key TTL set at
// creation time.
func (r *RedisStore) Sweep(context.Context, time.Time) int {
	return 0
}
