package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	ClockSkew          time.Duration
	CORSAllowedOrigins []string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	IdempotencyTTL     time.Duration
	CurrencyCode       string
	DefaultPageSize    int
	MaxPageSize        int
	MigrateOnStart     bool
	InvoicePDFDir      string
	PINMaxAttempts     int
	PINLockoutWindow   time.Duration
	LoginRateLimit     string
	DepositLockTTL     time.Duration
	WorkerConcurrency  int
	NotifyEmailEnabled bool
	NotifyEmailFrom    string
	AuditEnabled       bool
	AuditSamplingRate  float64
	MaxBodyBytes       int64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		JWTSecret:          k.String("JWT_SECRET"),
		JWTIssuer:          valueOrDefault(k.String("JWT_ISSUER"), "backend-agency"),
		JWTAudience:        valueOrDefault(k.String("JWT_AUDIENCE"), "agency-backoffice"),
		ClockSkew:          parseDuration(k.String("JWT_CLOCK_SKEW"), "30s"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		AccessTokenTTL:     parseDuration(k.String("ACCESS_TOKEN_TTL"), "15m"),
		RefreshTokenTTL:    parseDuration(k.String("REFRESH_TOKEN_TTL"), "720h"),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		CurrencyCode:       valueOrDefault(k.String("CURRENCY_CODE"), "BDT"),
		DefaultPageSize:    parseInt(k.String("PAGE_SIZE_DEFAULT"), 20),
		MaxPageSize:        parseInt(k.String("PAGE_SIZE_MAX"), 100),
		MigrateOnStart:     parseBool(valueOrDefault(k.String("DB_MIGRATE_ON_START"), "true")),
		InvoicePDFDir:      valueOrDefault(k.String("INVOICE_PDF_DIR"), "/var/lib/agency/invoices"),
		PINMaxAttempts:     parseInt(k.String("PIN_MAX_ATTEMPTS"), 5),
		PINLockoutWindow:   parseDuration(k.String("PIN_LOCKOUT_WINDOW"), "15m"),
		LoginRateLimit:     valueOrDefault(k.String("LOGIN_RATE_LIMIT"), "10-M"),
		DepositLockTTL:     parseDuration(k.String("DEPOSIT_LOCK_TTL"), "10s"),
		WorkerConcurrency:  parseInt(k.String("WORKER_CONCURRENCY"), 4),
		NotifyEmailEnabled: parseBool(k.String("NOTIFY_EMAIL_ENABLED")),
		NotifyEmailFrom:    valueOrDefault(k.String("NOTIFY_EMAIL_FROM"), "no-reply@agency.local"),
		AuditEnabled:       parseBool(valueOrDefault(k.String("AUDIT_ENABLED"), "true")),
		AuditSamplingRate:  parseFloat(k.String("AUDIT_SAMPLING_RATE"), 1.0),
		MaxBodyBytes:       int64(parseInt(k.String("HTTP_MAX_BODY_BYTES"), 1<<20)),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
