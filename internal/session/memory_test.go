package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		Token:     token,
		Meta:      map[string]any{"userId": "u1", "transactionId": "t1"},
		Status:    StatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, newTestSession("tok", time.Minute)))

		got, err := store.Get(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, got.Status)
		assert.Equal(t, map[string]any{"userId": "u1", "transactionId": "t1"}, got.Meta)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		store := NewMemoryStore()
		assert.Error(t, store.Create(ctx, &Session{}))
	})

	t.Run("duplicate insert collides", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, newTestSession("tok", time.Minute)))
		assert.ErrorIs(t, store.Create(ctx, newTestSession("tok", time.Minute)), ErrCollision)
	})

	t.Run("unknown token", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, newTestSession("tok", time.Minute)))

		first, err := store.Get(ctx, "tok")
		require.NoError(t, err)
		first.Meta["userId"] = "tampered"

		second, err := store.Get(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "u1", second.Meta["userId"])
	})
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()

	t.Run("expired session reads as not found before sweep", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, newTestSession("tok", time.Minute)))

		store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

		_, err := store.Get(ctx, "tok")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = store.Complete(ctx, "tok", map[string]any{"captureId": "cap-9"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("sweep removes only expired sessions", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, newTestSession("old", time.Minute)))
		require.NoError(t, store.Create(ctx, newTestSession("fresh", time.Hour)))

		removed := store.Sweep(ctx, time.Now().Add(30*time.Minute))
		assert.Equal(t, 1, removed)

		_, err := store.Get(ctx, "fresh")
		assert.NoError(t, err)
	})

	t.Run("sweep is idempotent", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, newTestSession("old", time.Minute)))

		at := time.Now().Add(time.Hour)
		assert.Equal(t, 1, store.Sweep(ctx, at))
		assert.Equal(t, 0, store.Sweep(ctx, at))
	})
}

func TestMemoryStore_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("records result once", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, newTestSession("tok", time.Minute)))

		done, err := store.Complete(ctx, "tok", map[string]any{"captureId": "cap-9"})
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, done.Status)
		assert.Equal(t, "cap-9", done.Result["captureId"])

		_, err = store.Complete(ctx, "tok", map[string]any{"captureId": "cap-10"})
		assert.ErrorIs(t, err, ErrAlreadyCompleted)

		got, err := store.Get(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "cap-9", got.Result["captureId"], "first result must win")
	})

	t.Run("unknown token", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Complete(ctx, "nope", nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("concurrent completions pick exactly one winner", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, newTestSession("tok", time.Minute)))

		const goroutines = 16

		var wg sync.WaitGroup
		errs := make([]error, goroutines)

		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = store.Complete(ctx, "tok", map[string]any{"attempt": i})
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				assert.ErrorIs(t, err, ErrAlreadyCompleted)
			}
		}
		assert.Equal(t, 1, winners)
	})
}

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id, err := GenerateID()
		require.NoError(t, err)
		assert.Len(t, id, 43) // 32 bytes, base64url, no padding
		assert.False(t, seen[id], "ids must not repeat")
		seen[id] = true
	}
}
