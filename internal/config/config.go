package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// AuthModeOpen accepts any credentials; identity is asserted by the email alone.
	AuthModeOpen = "open"
	// AuthModeHashed verifies bcrypt password hashes stored at sign-up.
	AuthModeHashed = "hashed"

	devSessionSecret = "dev-session-secret-change-me"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName     string `env:"APP_NAME" envDefault:"AsiaMedicare"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	AdminEmails    []string      `env:"ADMIN_EMAILS" envSeparator:"," envDefault:"admin@asiamedicare.com,thedecor.th@gmail.com"`
	AuthMode       string        `env:"AUTH_MODE" envDefault:"open"`
	LoginRateLimit int           `env:"LOGIN_RATE_LIMIT" envDefault:"5"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-3-flash-preview"`
	GeminiURL    string `env:"GEMINI_URL" envDefault:"https://generativelanguage.googleapis.com/"`

	IdempotencyTTL            time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	RedemptionConfirmTTL      time.Duration `env:"REDEMPTION_CONFIRM_TTL" envDefault:"5m"`
	RedemptionSuccessTTL      time.Duration `env:"REDEMPTION_SUCCESS_TTL" envDefault:"3s"`
	RedemptionProcessingDelay time.Duration `env:"REDEMPTION_PROCESSING_DELAY" envDefault:"0s"`
	ShutdownPeriod            time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file, then populates a Config from the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom builds a Config from the provided variables only, ignoring the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))
	cfg.AdminEmails = normalizeEmails(cfg.AdminEmails)

	switch cfg.AuthMode {
	case AuthModeOpen, AuthModeHashed:
	default:
		return Config{}, fmt.Errorf("invalid AUTH_MODE %q (must be %q or %q)", cfg.AuthMode, AuthModeOpen, AuthModeHashed)
	}

	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.RedemptionConfirmTTL <= 0 || cfg.RedemptionSuccessTTL <= 0 {
		return Config{}, fmt.Errorf("redemption TTLs must be positive")
	}

	if cfg.IsDev() {
		if cfg.SessionSecret == "" {
			cfg.SessionSecret = devSessionSecret
		}
		return cfg, nil
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
	}
	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET must be set when APP_ENV=%s", cfg.AppEnv)
	}

	return cfg, nil
}

// IsDev reports whether the application runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func normalizeEmails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
