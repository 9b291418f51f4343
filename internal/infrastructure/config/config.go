package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// DevSecret is the insecure fallback signing secret for local development.
// Startup refuses to run with it when ENV=production.
const DevSecret = "dev-only-insecure-secret-0123456789ab"

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=168h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Mongo MongoConfig
	Redis RedisConfig

	LoginMaxAttempts int64         `env:"LOGIN_MAX_ATTEMPTS, default=10"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=blog"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
// When no JWT_SECRET is set, the insecure development fallback is used;
// Validate rejects that combination in production.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DevSecret
	}
	return &cfg, nil
}

// IsProduction reports whether the process runs in a production posture.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate enforces the settings that must never ship with defaults.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == DevSecret {
		return fmt.Errorf("config: JWT_SECRET must be set in production")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("config: JWT_SECRET must be at least 32 characters")
	}
	return nil
}
