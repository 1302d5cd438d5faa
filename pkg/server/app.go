package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "AlgoSensei/internal/middleware"
	"AlgoSensei/internal/service/ratelimit"
	"AlgoSensei/internal/usecase"
	"AlgoSensei/pkg/cache"
	"AlgoSensei/pkg/config"
	xhttp "AlgoSensei/pkg/http"
	applogger "AlgoSensei/pkg/logger"
	"AlgoSensei/pkg/postgres"
)

const limiterPruneEvery = time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	feed       *usecase.MarketFeed
	fanout     *mid.SnapshotFanout
	limiter    *ratelimit.Limiter
	cache      cache.Service
	pg         *postgres.Client
}

// New creates a new App instance with all dependencies. pg may be nil.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	httpServer *xhttp.Server,
	feed *usecase.MarketFeed,
	fanout *mid.SnapshotFanout,
	limiter *ratelimit.Limiter,
	c cache.Service,
	pg *postgres.Client,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		feed:       feed,
		fanout:     fanout,
		limiter:    limiter,
		cache:      c,
		pg:         pg,
	}
}

// Run starts polling and the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return a.RunContext(ctx)
}

// RunContext is Run with an explicit lifetime; it returns after ctx is done and shutdown completes.
func (a *App) RunContext(ctx context.Context) error {
	a.feed.Start(ctx)
	a.logger.Info("market feed started",
		applogger.Strings("symbols", a.cfg.Market.Symbols),
		applogger.Duration("interval_ms", a.cfg.Market.PollInterval),
	)

	go a.pruneLimiter(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		a.feed.Stop()
		return err
	}

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) pruneLimiter(ctx context.Context) {
	if a.limiter == nil {
		return
	}
	t := time.NewTicker(limiterPruneEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.limiter.Prune(); n > 0 {
				a.logger.Debug("pruned login buckets", applogger.Int("removed", n))
			}
		}
	}
}

// shutdown stops polling first so no set is published into a closing fan-out.
func (a *App) shutdown() error {
	a.logger.Info("shutting down...")

	a.feed.Stop()
	a.fanout.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.logger.Warn("postgres close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
