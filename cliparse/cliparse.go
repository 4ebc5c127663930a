package cliparse

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port           int
	DatabaseURL    string
	DatabaseType   string
	JWTSecret      string
	SessionTTL     time.Duration
	SupportAdminID string
	SupportRouting string
	StorageDir     string
	PublicBaseURL  string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	MaxAvatarBytes int64
	LogLevel       string
	Environment    string
}

// envConfig mirrors Config with environment names and defaults
type envConfig struct {
	Port           int           `env:"PORT, default=3318"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	DatabaseType   string        `env:"DATABASE_TYPE, default=sqlite"`
	JWTSecret      string        `env:"JWT_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL, default=24h"`
	SupportAdminID string        `env:"SUPPORT_ADMIN_ID"`
	SupportRouting string        `env:"SUPPORT_ROUTING, default=fixed"`
	StorageDir     string        `env:"STORAGE_DIR, default=./storage"`
	PublicBaseURL  string        `env:"PUBLIC_BASE_URL, default=http://localhost:3318"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=15s"`
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS, default=5"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST, default=10"`
	MaxAvatarBytes int64         `env:"MAX_AVATAR_BYTES, default=2097152"`
	LogLevel       string        `env:"LOG_LEVEL, default=info"`
	Environment    string        `env:"ENVIRONMENT, default=development"`
}

// ParseFlags loads .env, then the environment, then applies CLI flags on top
func ParseFlags(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var env envConfig
	if err := envconfig.Process(context.Background(), &env); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	cfg := Config(env)

	fs := flag.NewFlagSet("ballotbox", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Session signing secret (prefer env)")

	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Session lifetime")
	fs.StringVar(&cfg.SupportAdminID, "support-admin", cfg.SupportAdminID, "Profile id that receives voter support messages")
	fs.StringVar(&cfg.SupportRouting, "support-routing", cfg.SupportRouting, "Support routing (fixed or assigned)")
	fs.StringVar(&cfg.StorageDir, "storage", cfg.StorageDir, "Directory for uploaded files")
	fs.StringVar(&cfg.PublicBaseURL, "public-url", cfg.PublicBaseURL, "Public base URL for uploaded files")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Per-request timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("DATABASE_TYPE must be sqlite or postgres")
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	if cfg.SupportRouting != "fixed" && cfg.SupportRouting != "assigned" {
		return Config{}, errors.New("SUPPORT_ROUTING must be fixed or assigned")
	}
	if cfg.SessionTTL <= 0 || cfg.RequestTimeout <= 0 {
		return Config{}, errors.New("SESSION_TTL and REQUEST_TIMEOUT must be positive")
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development environment
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}
