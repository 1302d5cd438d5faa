package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"AlgoSensei/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Auth struct {
		URL     string        `yaml:"url"`      // Supabase project URL
		AnonKey string        `yaml:"anon_key"` // public anon key sent as apikey header
		Timeout time.Duration `yaml:"timeout"`
		// Login attempts allowed per email+IP before throttling, refilled at RefillEvery.
		LoginBurst  int           `yaml:"login_burst"`
		RefillEvery time.Duration `yaml:"login_refill_every"`
	} `yaml:"auth"`
	Session struct {
		Backend    string        `yaml:"backend"` // redis or memory
		CookieName string        `yaml:"cookie_name"`
		MaxAge     time.Duration `yaml:"max_age"`
		KeyPrefix  string        `yaml:"key_prefix"`
	} `yaml:"session"`
	Profiles struct {
		Backend string `yaml:"backend"` // rest or postgres
		Table   string `yaml:"table"`
	} `yaml:"profiles"`
	Market struct {
		Source          string        `yaml:"source"` // rest or sdk
		BaseURL         string        `yaml:"base_url"`
		Symbols         []string      `yaml:"symbols"`
		PollInterval    time.Duration `yaml:"poll_interval"`
		Timeout         time.Duration `yaml:"timeout"`
		HistoryInterval string        `yaml:"history_interval"`
		HistoryLimit    int           `yaml:"history_limit"`
	} `yaml:"market"`
	Advisor struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"advisor"`
	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`
	Postgres struct {
		URL      string `yaml:"url"`
		MaxConns int    `yaml:"max_conns"`
	} `yaml:"postgres"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := getenv("SUPABASE_URL"); v != "" {
		c.Auth.URL = v
	}
	if v := getenv("SUPABASE_ANON_KEY"); v != "" {
		c.Auth.AnonKey = v
	}
	if v := getenv("OPENAI_API_KEY"); v != "" {
		c.Advisor.APIKey = v
	}
	if v := getenv("SYMBOLS"); v != "" {
		c.Market.Symbols = splitSymbols(v)
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Host = host
		if ok {
			c.Redis.Port = util.ParseIntDefault(port, DefaultRedisPort)
		}
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Postgres.URL = v
	}
}

func splitSymbols(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Auth.URL == "" {
		return fmt.Errorf("auth.url is required")
	}
	if c.Session.Backend != "redis" && c.Session.Backend != "memory" {
		return fmt.Errorf("session.backend must be 'redis' or 'memory', got '%s'", c.Session.Backend)
	}
	if c.Profiles.Backend != "rest" && c.Profiles.Backend != "postgres" {
		return fmt.Errorf("profiles.backend must be 'rest' or 'postgres', got '%s'", c.Profiles.Backend)
	}
	if c.Profiles.Backend == "postgres" && c.Postgres.URL == "" {
		return fmt.Errorf("postgres.url is required when profiles.backend is 'postgres'")
	}
	if c.Market.Source != "rest" && c.Market.Source != "sdk" {
		return fmt.Errorf("market.source must be 'rest' or 'sdk', got '%s'", c.Market.Source)
	}
	if len(c.Market.Symbols) == 0 {
		return fmt.Errorf("market.symbols cannot be empty")
	}
	if c.Market.PollInterval < time.Second {
		return fmt.Errorf("market.poll_interval must be at least 1s, got %s", c.Market.PollInterval)
	}
	if c.Market.HistoryLimit < 1 || c.Market.HistoryLimit > 1000 {
		return fmt.Errorf("market.history_limit must be within 1..1000, got %d", c.Market.HistoryLimit)
	}
	return nil
}
