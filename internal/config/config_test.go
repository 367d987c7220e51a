package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "3000", cfg.AppPort)
		assert.Equal(t, "/selfie", cfg.SelfiePath)
		assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
		assert.Empty(t, cfg.RelaySecret)
		assert.Empty(t, cfg.RedisAddr)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("APP_PORT", "8080")
		t.Setenv("SELFIE_DOMAIN", "https://relay.example.com")
		t.Setenv("SESSION_TTL", "5m")
		t.Setenv("RELAY_SECRET", "hunter2")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "https://relay.example.com", cfg.SelfieDomain)
		assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
		assert.Equal(t, "hunter2", cfg.RelaySecret)
	})

	t.Run("bad duration fails", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "not-a-duration")

		_, err := Load()
		assert.Error(t, err)
	})
}
