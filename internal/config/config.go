package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvironment     = "development"
	defaultListenAddr      = ":8080"
	defaultDBPath          = "gaffer.db"
	defaultSecretKey       = "change-this-secret-key-before-production-use"
	defaultTokenTTL        = 30 * time.Minute
	defaultExecutionDelay  = 5 * time.Second
	defaultRateLimitCalls  = 100
	defaultRateLimitWindow = 60 * time.Second
	defaultAdminUsername   = "admin"
	defaultAdminEmail      = "admin@example.com"
	defaultAdminPassword   = "admin123"

	envEnvironment     = "GAFFER_ENV"
	envListenAddr      = "GAFFER_LISTEN_ADDR"
	envDBPath          = "GAFFER_DB_PATH"
	envLogLevel        = "GAFFER_LOG_LEVEL"
	envSecretKey       = "GAFFER_SECRET_KEY"
	envTokenTTL        = "GAFFER_TOKEN_TTL"
	envExecutionDelay  = "GAFFER_EXECUTION_DELAY"
	envRateLimitCalls  = "GAFFER_RATE_LIMIT_CALLS"
	envRateLimitWindow = "GAFFER_RATE_LIMIT_WINDOW"
	envAllowedOrigins  = "GAFFER_ALLOWED_ORIGINS"
	envAdminUsername   = "GAFFER_ADMIN_USERNAME"
	envAdminEmail      = "GAFFER_ADMIN_EMAIL"
	envAdminPassword   = "GAFFER_ADMIN_PASSWORD"
)

// minSecretLen is the minimum secret key length accepted in production.
const minSecretLen = 32

// EnvProduction is the environment name that triggers hardening checks.
const EnvProduction = "production"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Environment     string
	ListenAddr      string
	DBPath          string
	LogLevel        slog.Level
	SecretKey       string
	TokenTTL        time.Duration
	ExecutionDelay  time.Duration
	RateLimitCalls  int
	RateLimitWindow time.Duration
	AllowedOrigins  []string
	AdminUsername   string
	AdminEmail      string
	AdminPassword   string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present; variables
// already set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Environment:     defaultEnvironment,
		ListenAddr:      defaultListenAddr,
		DBPath:          defaultDBPath,
		LogLevel:        slog.LevelInfo,
		SecretKey:       defaultSecretKey,
		TokenTTL:        defaultTokenTTL,
		ExecutionDelay:  defaultExecutionDelay,
		RateLimitCalls:  defaultRateLimitCalls,
		RateLimitWindow: defaultRateLimitWindow,
		AllowedOrigins:  []string{"*"},
		AdminUsername:   defaultAdminUsername,
		AdminEmail:      defaultAdminEmail,
		AdminPassword:   defaultAdminPassword,
	}

	if v := os.Getenv(envEnvironment); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv(envSecretKey); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv(envTokenTTL); v != "" {
		cfg.TokenTTL = parseDuration(v, time.Minute, defaultTokenTTL)
	}
	if v := os.Getenv(envExecutionDelay); v != "" {
		cfg.ExecutionDelay = parseDuration(v, time.Second, defaultExecutionDelay)
	}
	if v := os.Getenv(envRateLimitCalls); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimitCalls = n
		}
	}
	if v := os.Getenv(envRateLimitWindow); v != "" {
		cfg.RateLimitWindow = parseDuration(v, time.Second, defaultRateLimitWindow)
	}
	if v := os.Getenv(envAllowedOrigins); v != "" {
		cfg.AllowedOrigins = splitOrigins(v)
	}
	if v := os.Getenv(envAdminUsername); v != "" {
		cfg.AdminUsername = v
	}
	if v := os.Getenv(envAdminEmail); v != "" {
		cfg.AdminEmail = v
	}
	if v := os.Getenv(envAdminPassword); v != "" {
		cfg.AdminPassword = v
	}

	return cfg
}

// Validate enforces production hardening. Outside production it always
// succeeds; in production the secret key must be changed from the default and
// long enough, and origins must not be a wildcard.
func (c Config) Validate() error {
	if c.Environment != EnvProduction {
		return nil
	}

	var errs []string
	if c.SecretKey == defaultSecretKey {
		errs = append(errs, fmt.Sprintf("%s must be changed from the default value", envSecretKey))
	}
	if len(c.SecretKey) < minSecretLen {
		errs = append(errs, fmt.Sprintf("%s must be at least %d characters", envSecretKey, minSecretLen))
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			errs = append(errs, fmt.Sprintf("%s must not contain the wildcard origin", envAllowedOrigins))
			break
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("production configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseDuration accepts either time.Duration syntax ("30m", "5s") or a bare
// number interpreted in unit. Unparseable values fall back to def.
func parseDuration(s string, unit, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * unit
	}
	return def
}

// splitOrigins parses a comma-separated origin list, trimming whitespace.
func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
