package app

import (
	"context"
	"net/http"
	"time"

	"selfie-relay/internal/config"
	"selfie-relay/internal/logger"
	"selfie-relay/internal/relay"
	"selfie-relay/internal/session"
)

type App struct {
	httpServer *http.Server
	store      session.Store
	sweepEvery time.Duration
	stopSweep  chan struct{}
	cleanup    func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	router, store, cleanup, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	sweepEvery := cfg.SessionTTL / 2
	if sweepEvery <= 0 {
		sweepEvery = relay.DefaultTTL / 2
	}

	return &App{
		httpServer: server,
		store:      store,
		sweepEvery: sweepEvery,
		stopSweep:  make(chan struct{}),
		cleanup:    cleanup,
	}, nil
}

func (a *App) Run() error {
	go a.sweepLoop()
	return a.httpServer.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	close(a.stopSweep)

	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}

// sweepLoop eagerly removes expired sessions so the store does not
// accumulate abandoned handoffs. Reads already enforce expiry lazily;
// this only reclaims memory.
func (a *App) sweepLoop() {
	ticker := time.NewTicker(a.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopSweep:
			return
		case now := <-ticker.C:
			if removed := a.store.Sweep(context.Background(), now); removed > 0 {
				logger.Info("swept expired sessions", map[string]any{
					"removed": removed,
				})
			}
		}
	}
}
