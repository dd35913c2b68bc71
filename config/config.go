// config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Store backends understood by storage.Open.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendR2       = "r2"
)

// Config is the full runtime configuration for the companion process.
type Config struct {
	APIBaseURL  string        `env:"API_BASE_URL"`
	APIToken    string        `env:"API_TOKEN"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"badger"`
	StorePrefix  string `env:"STORE_PREFIX" envDefault:"chapter"`
	BadgerPath   string `env:"BADGER_PATH" envDefault:"./data/kv"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	DatabaseURL string `env:"DATABASE_URL"`

	R2AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	R2Bucket          string `env:"R2_BUCKET_NAME"`

	PendingScanTTL       time.Duration `env:"PENDING_SCAN_TTL" envDefault:"10m"`
	CacheHygieneInterval time.Duration `env:"CACHE_HYGIENE_INTERVAL" envDefault:"15m"`

	ListenAddr    string `env:"LISTEN_ADDR" envDefault:"127.0.0.1:5300"`
	LocalAPIToken string `env:"LOCAL_API_TOKEN"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and then parses the environment.
func Load(logger zerolog.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse parses the current environment into a validated Config.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements that struct tags cannot express.
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.PendingScanTTL <= 0 {
		return fmt.Errorf("PENDING_SCAN_TTL must be positive")
	}
	if strings.TrimSpace(c.StorePrefix) == "" {
		return fmt.Errorf("STORE_PREFIX must not be empty")
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendBadger:
		if c.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required for the badger backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendR2:
		if c.R2AccountID == "" || c.R2Bucket == "" {
			return fmt.Errorf("CLOUDFLARE_ACCOUNT_ID and R2_BUCKET_NAME are required for the r2 backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}
