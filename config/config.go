package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// MongoDB configuration
	MongoURI     string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName string `env:"MONGO_DB_NAME" envDefault:"outreach_tracker"`

	// Server configuration
	Port        string   `env:"PORT" envDefault:"8080"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173,http://localhost:3000"`

	// Webhook configuration
	VerifyToken string `env:"WEBHOOK_VERIFY_TOKEN" envDefault:"webhook_verify_token"`

	// bcrypt hash of the operator API key; empty disables the check
	OperatorKeyHash string `env:"OPERATOR_KEY_HASH"`

	// Account directory (upstream profile provider)
	DirectoryBaseURL     string        `env:"DIRECTORY_BASE_URL" envDefault:"https://graph.facebook.com/v19.0"`
	DirectoryAccessToken string        `env:"DIRECTORY_ACCESS_TOKEN"`
	DirectoryTimeout     time.Duration `env:"DIRECTORY_TIMEOUT" envDefault:"10s"`
	DirectoryRPM         int           `env:"DIRECTORY_RPM" envDefault:"180"`
	EnrichConcurrency    int           `env:"ENRICH_CONCURRENCY" envDefault:"5"`

	// Profile cache; empty URL disables it
	RedisURL        string        `env:"REDIS_URL"`
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"15m"`

	// Periodic growth refresh; zero interval disables it
	GrowthRefreshInterval    time.Duration `env:"GROWTH_REFRESH_INTERVAL" envDefault:"0s"`
	GrowthControllingAccount string        `env:"GROWTH_CONTROLLING_ACCOUNT_ID"`

	// Profile picture inlining
	ImageFetchTimeout time.Duration `env:"IMAGE_FETCH_TIMEOUT" envDefault:"8s"`
	ImageMaxBytes     int64         `env:"IMAGE_MAX_BYTES" envDefault:"2097152"`
}

// LoadConfig reads an optional .env file and then the process environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	if cfg.DirectoryAccessToken == "" {
		slog.Warn("DIRECTORY_ACCESS_TOKEN not set, profile lookups will be rejected upstream")
	}
	if cfg.OperatorKeyHash == "" {
		slog.Warn("OPERATOR_KEY_HASH not set, API routes are unauthenticated")
	}

	return cfg, nil
}

// Parse builds a Config from the environment without touching .env files
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env parsing cannot
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI must not be empty")
	}
	if c.EnrichConcurrency < 1 {
		return fmt.Errorf("ENRICH_CONCURRENCY must be at least 1, got %d", c.EnrichConcurrency)
	}
	if c.DirectoryRPM < 1 {
		return fmt.Errorf("DIRECTORY_RPM must be at least 1, got %d", c.DirectoryRPM)
	}
	if c.DirectoryTimeout <= 0 {
		return fmt.Errorf("DIRECTORY_TIMEOUT must be positive")
	}
	if c.GrowthRefreshInterval < 0 {
		return fmt.Errorf("GROWTH_REFRESH_INTERVAL must not be negative")
	}
	if c.GrowthRefreshInterval > 0 && c.GrowthControllingAccount == "" {
		return fmt.Errorf("GROWTH_CONTROLLING_ACCOUNT_ID is required when GROWTH_REFRESH_INTERVAL is set")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
