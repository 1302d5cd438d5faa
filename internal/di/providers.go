package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"AlgoSensei/internal/domain/repository"
	"AlgoSensei/internal/handler/api"
	mid "AlgoSensei/internal/middleware"
	internalrepo "AlgoSensei/internal/repository"
	"AlgoSensei/internal/service/binance"
	"AlgoSensei/internal/service/openai"
	"AlgoSensei/internal/service/ratelimit"
	"AlgoSensei/internal/service/supabase"
	"AlgoSensei/internal/usecase"
	"AlgoSensei/pkg/cache"
	"AlgoSensei/pkg/config"
	xhttp "AlgoSensei/pkg/http"
	applogger "AlgoSensei/pkg/logger"
	"AlgoSensei/pkg/metrics"
	"AlgoSensei/pkg/postgres"
	"AlgoSensei/pkg/server"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideCache creates the session marker backend: Redis or in-process memory.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Session.Backend == "memory" {
		return cache.NewMemoryCache(), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, 1, 5*time.Second),
		cache.WithRedisPrefix(cfg.Session.KeyPrefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideSessionStores scopes marker storage per browser context with the session max age as TTL.
func ProvideSessionStores(c cache.Service, cfg *config.Config) repository.SessionStoreFactory {
	return internalrepo.NewCacheSessionStores(c, cfg.Session.MaxAge)
}

// ProvidePostgresClient connects to Postgres when profiles live there; otherwise it returns nil.
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, error) {
	if cfg.Profiles.Backend != "postgres" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := postgres.NewClient(ctx,
		postgres.WithURL(cfg.Postgres.URL),
		postgres.WithMaxConnections(cfg.Postgres.MaxConns, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}
	if err := client.InitSchema(ctx, internalrepo.ProfilesSchema(cfg.Profiles.Table)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	return client, nil
}

// ProvideAuthProvider creates the Supabase auth client.
func ProvideAuthProvider(cfg *config.Config, logger *applogger.Logger) repository.AuthProvider {
	client := supabase.NewHTTPClient(cfg.Auth.URL, cfg.Auth.AnonKey, xhttp.WithTimeout(cfg.Auth.Timeout))
	return supabase.NewAuthClient(client, logger)
}

// ProvideProfileDirectory selects the users table backend.
func ProvideProfileDirectory(cfg *config.Config, pg *postgres.Client) repository.ProfileDirectory {
	if cfg.Profiles.Backend == "postgres" && pg != nil {
		return internalrepo.NewPostgresProfileDirectory(pg.Pool(), cfg.Profiles.Table)
	}
	client := supabase.NewHTTPClient(cfg.Auth.URL, cfg.Auth.AnonKey, xhttp.WithTimeout(cfg.Auth.Timeout))
	return supabase.NewProfileClient(client, cfg.Profiles.Table)
}

// ProvideMarketSource selects the exchange client: plain REST or the go-binance SDK.
func ProvideMarketSource(cfg *config.Config) repository.MarketSource {
	if cfg.Market.Source == "sdk" {
		return binance.NewSDKSource(cfg.Market.BaseURL, &http.Client{Timeout: cfg.Market.Timeout})
	}
	return binance.NewRESTSource(xhttp.NewClient(
		xhttp.WithBaseURL(cfg.Market.BaseURL),
		xhttp.WithTimeout(cfg.Market.Timeout),
	))
}

// ProvideChatCompleter creates the LLM client; without an API key it reports unconfigured.
func ProvideChatCompleter(cfg *config.Config) repository.ChatCompleter {
	return openai.New(cfg.Advisor.BaseURL, cfg.Advisor.APIKey, cfg.Advisor.Model, xhttp.WithTimeout(cfg.Advisor.Timeout))
}

// ProvideLoginLimiter creates the per email+IP login throttle.
func ProvideLoginLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Auth.LoginBurst, cfg.Auth.RefillEvery)
}

// ProvideSessionManager creates the session use case.
func ProvideSessionManager(
	auth repository.AuthProvider,
	profiles repository.ProfileDirectory,
	m repository.Metrics,
	logger *applogger.Logger,
) *usecase.SessionManager {
	return usecase.NewSessionManager(auth, profiles, m, logger.With(applogger.String("component", "session")))
}

// ProvideSnapshotFanout creates the widget fan-out.
func ProvideSnapshotFanout(m repository.Metrics) *mid.SnapshotFanout {
	return mid.NewSnapshotFanout(m, mid.WithBufferSize(4))
}

// ProvideSnapshotBoard creates the board that holds the last good snapshot set.
func ProvideSnapshotBoard(fanout *mid.SnapshotFanout, m repository.Metrics, logger *applogger.Logger) *usecase.SnapshotBoard {
	return usecase.NewSnapshotBoard(fanout, m, logger.With(applogger.String("component", "board")))
}

// ProvideMarketPoller creates the snapshot poller.
func ProvideMarketPoller(source repository.MarketSource, m repository.Metrics, logger *applogger.Logger, cfg *config.Config) *usecase.MarketPoller {
	return usecase.NewMarketPoller(source, m, logger.With(applogger.String("component", "poller")),
		usecase.WithFetchTimeout(cfg.Market.Timeout),
	)
}

// ProvideMarketFeed binds the poller to the board for the configured symbols.
func ProvideMarketFeed(poller *usecase.MarketPoller, board *usecase.SnapshotBoard, cfg *config.Config) *usecase.MarketFeed {
	return usecase.NewMarketFeed(poller, board, cfg.Market.Symbols, cfg.Market.PollInterval)
}

// ProvideAdvisor creates the strategy advisor.
func ProvideAdvisor(llm repository.ChatCompleter, m repository.Metrics, logger *applogger.Logger) *usecase.Advisor {
	return usecase.NewAdvisor(llm, m, logger.With(applogger.String("component", "advisor")))
}

// ProvideHandlers builds every HTTP handler.
func ProvideHandlers(
	cfg *config.Config,
	logger *applogger.Logger,
	stores repository.SessionStoreFactory,
	sessions *usecase.SessionManager,
	limiter *ratelimit.Limiter,
	feed *usecase.MarketFeed,
	advisor *usecase.Advisor,
) []xhttp.Handler {
	cookie := api.NewSessionCookie(stores, cfg.Session.CookieName, cfg.Session.MaxAge, cfg.IsProduction())
	stream := api.NewMarketStream(logger, feed, cfg.Server.CORSOrigins)
	return []xhttp.Handler{
		api.NewAuthHandler(logger, sessions, cookie, limiter),
		api.NewMarketHandler(logger, feed, cfg.Market.HistoryInterval, cfg.Market.HistoryLimit, stream),
		api.NewAdvisorHandler(advisor),
	}
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, logger *applogger.Logger, handlers []xhttp.Handler) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithLogger(logger),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	}
	return xhttp.NewServer(handlers, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	httpServer *xhttp.Server,
	feed *usecase.MarketFeed,
	fanout *mid.SnapshotFanout,
	limiter *ratelimit.Limiter,
	c cache.Service,
	pg *postgres.Client,
) *server.App {
	return server.New(cfg, logger, httpServer, feed, fanout, limiter, c, pg)
}
