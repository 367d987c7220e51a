package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"3000"`

	// SelfieDomain is the public base URL the reference link points at.
	SelfieDomain string `env:"SELFIE_DOMAIN" envDefault:"https://samurai-selfi.onrender.com"`
	SelfiePath   string `env:"SELFIE_PATH" envDefault:"/selfie"`

	// SessionTTL bounds how long the executor has to finish a capture.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"15m"`

	OzSDKURL    string `env:"OZ_SDK_URL" envDefault:"https://web-sdk.prod.cdn.spain.ozforensics.com/blsinternational/plugin_liveness.php"`
	LivenessURL string `env:"LIVENESS_URL" envDefault:"https://www.blsspainmorocco.net/MAR/appointment/livenessrequest"`

	// RelaySecret, when set, is required on the initiator-facing
	// issue endpoint via the X-Relay-Secret header.
	RelaySecret string `env:"RELAY_SECRET"`

	// RedisAddr, when set, switches session storage from the
	// in-process map to Redis.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	return cfg, nil
}
