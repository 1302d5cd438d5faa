package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPort            = 8080
	DefaultServerTimeout   = 10 * time.Second
	DefaultMetricsPath     = "/metrics"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultLogOutput       = "stdout"
	DefaultAuthTimeout     = 10 * time.Second
	DefaultLoginBurst      = 5
	DefaultLoginRefill     = 12 * time.Second
	DefaultSessionBackend  = "memory"
	DefaultCookieName      = "algosensei_sid"
	DefaultSessionMaxAge   = 7 * 24 * time.Hour
	DefaultSessionPrefix   = "algosensei"
	DefaultProfilesBackend = "rest"
	DefaultProfilesTable   = "users"
	DefaultMarketSource    = "rest"
	DefaultMarketBaseURL   = "https://api.binance.com"
	DefaultPollInterval    = 30 * time.Second
	DefaultMarketTimeout   = 10 * time.Second
	DefaultHistoryInterval = "1d"
	DefaultHistoryLimit    = 100
	DefaultAdvisorBaseURL  = "https://api.openai.com/v1"
	DefaultAdvisorModel    = "gpt-4o"
	DefaultAdvisorTimeout  = 60 * time.Second
	DefaultRedisHost       = "localhost"
	DefaultRedisPort       = 6379
	DefaultRedisPoolSize   = 10
	DefaultPostgresConns   = 5
)

// DefaultSymbols mirrors the trading dashboard's watch list.
var DefaultSymbols = []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT", "ADAUSDT"}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultServerTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultServerTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultServerTimeout
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Log.Output == "" {
		c.Log.Output = DefaultLogOutput
	}

	if c.Auth.Timeout == 0 {
		c.Auth.Timeout = DefaultAuthTimeout
	}
	if c.Auth.LoginBurst == 0 {
		c.Auth.LoginBurst = DefaultLoginBurst
	}
	if c.Auth.RefillEvery == 0 {
		c.Auth.RefillEvery = DefaultLoginRefill
	}

	if c.Session.Backend == "" {
		c.Session.Backend = DefaultSessionBackend
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = DefaultCookieName
	}
	if c.Session.MaxAge == 0 {
		c.Session.MaxAge = DefaultSessionMaxAge
	}
	if c.Session.KeyPrefix == "" {
		c.Session.KeyPrefix = DefaultSessionPrefix
	}

	if c.Profiles.Backend == "" {
		c.Profiles.Backend = DefaultProfilesBackend
	}
	if c.Profiles.Table == "" {
		c.Profiles.Table = DefaultProfilesTable
	}

	if c.Market.Source == "" {
		c.Market.Source = DefaultMarketSource
	}
	if c.Market.BaseURL == "" {
		c.Market.BaseURL = DefaultMarketBaseURL
	}
	if len(c.Market.Symbols) == 0 {
		c.Market.Symbols = append([]string(nil), DefaultSymbols...)
	}
	if c.Market.PollInterval == 0 {
		c.Market.PollInterval = DefaultPollInterval
	}
	if c.Market.Timeout == 0 {
		c.Market.Timeout = DefaultMarketTimeout
	}
	if c.Market.HistoryInterval == "" {
		c.Market.HistoryInterval = DefaultHistoryInterval
	}
	if c.Market.HistoryLimit == 0 {
		c.Market.HistoryLimit = DefaultHistoryLimit
	}

	if c.Advisor.BaseURL == "" {
		c.Advisor.BaseURL = DefaultAdvisorBaseURL
	}
	if c.Advisor.Model == "" {
		c.Advisor.Model = DefaultAdvisorModel
	}
	if c.Advisor.Timeout == 0 {
		c.Advisor.Timeout = DefaultAdvisorTimeout
	}

	if c.Redis.Host == "" {
		c.Redis.Host = DefaultRedisHost
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = DefaultRedisPort
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = DefaultRedisPoolSize
	}
	if c.Postgres.MaxConns == 0 {
		c.Postgres.MaxConns = DefaultPostgresConns
	}
}
