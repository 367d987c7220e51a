package app

import (
	"context"

	"selfie-relay/internal/config"
	"selfie-relay/internal/logger"
	"selfie-relay/internal/middleware"
	"selfie-relay/internal/redis"
	"selfie-relay/internal/relay"
	"selfie-relay/internal/relay/handler"
	"selfie-relay/internal/session"

	"github.com/gin-gonic/gin"
)

func setupHTTP(_ context.Context, cfg config.Config) (*gin.Engine, session.Store, func() error, error) {

	// ----------------------------
	// Dependencies
	// ----------------------------

	var store session.Store = session.NewMemoryStore()
	cleanup := func() error { return nil }

	if cfg.RedisAddr != "" {
		client, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, nil, err
		}
		store = session.NewRedisStore(client.Client)
		cleanup = client.Close
		logger.Info("using redis session store", map[string]any{
			"addr": cfg.RedisAddr,
		})
	}

	relayCore := relay.New(relay.Config{
		Store:        store,
		RequiredKeys: []string{"userId", "transactionId"},
		TTL:          cfg.SessionTTL,
		BaseURL:      cfg.SelfieDomain,
		Path:         cfg.SelfiePath,
	})

	relayHandler := handler.NewHandler(relayCore, cfg.OzSDKURL, cfg.LivenessURL)

	var secretGuard gin.HandlerFunc
	if cfg.RelaySecret != "" {
		secretGuard = middleware.GinRequireSecret(
			middleware.NewSecretGuard(cfg.RelaySecret),
		)
	}

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())

	relayHandler.RegisterRoutes(router, secretGuard)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router, store, cleanup, nil
}
