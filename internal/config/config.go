package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Environment names accepted in ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds the server configuration.
type Config struct {
	Port string
	Env  string

	// Storage. An empty DatabaseURL selects the in-memory store seeded from
	// the embedded reference dataset.
	DatabaseURL string

	// Sessions. Redis when RedisURL is set, otherwise the sessions table
	// when DatabaseURL is set, otherwise process memory.
	RedisURL   string
	SessionTTL time.Duration

	LogLevel string

	// Auth
	LoginDelay         time.Duration
	LoginRatePerMinute int
	LoginBurst         int

	// Jobs
	QuotaSweepCron string

	CORSAllowedOrigins []string

	// Proxies whose X-Forwarded-For / X-Real-IP headers are believed.
	TrustedProxies []netip.Prefix
}

var (
	ErrInvalidPort     = errors.New("PORT must be a number between 1 and 65535")
	ErrInvalidEnv      = errors.New("ENV must be development or production")
	ErrInvalidLogLevel = errors.New("LOG_LEVEL must be debug, info, warn or error")
	ErrInvalidRate     = errors.New("LOGIN_RATE_PER_MINUTE and LOGIN_BURST must be positive")
	ErrInvalidTTL      = errors.New("SESSION_TTL must be positive")
)

// DefaultCORSOrigins are the dashboard origins allowed when
// CORS_ALLOWED_ORIGINS is unset.
var DefaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:8080",
}

// LoadFromEnv loads configuration from environment variables.
//
// Environment variables:
//   - PORT: listen port (default: 5050)
//   - ENV: "development" or "production" (default: development)
//   - DATABASE_URL: Postgres DSN; empty selects the in-memory store
//   - REDIS_URL: Redis URL for sessions; empty falls back to the database or memory
//   - SESSION_TTL: session lifetime (default: 6h)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOGIN_DELAY: fixed delay applied to credential checks (default: 1s)
//   - LOGIN_RATE_PER_MINUTE / LOGIN_BURST: per-IP login limiter (default: 10 / 5)
//   - QUOTA_SWEEP_CRON: schedule of the quota alert job (default: @every 15m)
//   - CORS_ALLOWED_ORIGINS: comma separated origin allow-list
//   - TRUSTED_PROXIES: comma separated proxy IPs or CIDRs (default: none)
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "5050"),
		Env:                strings.ToLower(getEnv("ENV", EnvDevelopment)),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		QuotaSweepCron:     getEnv("QUOTA_SWEEP_CRON", "@every 15m"),
		CORSAllowedOrigins: DefaultCORSOrigins,
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 6*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.LoginDelay, err = getDuration("LOGIN_DELAY", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.LoginRatePerMinute, err = getInt("LOGIN_RATE_PER_MINUTE", 10); err != nil {
		return Config{}, err
	}
	if cfg.LoginBurst, err = getInt("LOGIN_BURST", 5); err != nil {
		return Config{}, err
	}

	if origins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); origins != "" {
		cfg.CORSAllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	if cfg.TrustedProxies, err = ParseTrustedProxies(os.Getenv("TRUSTED_PROXIES")); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// ParseTrustedProxies reads a comma separated list of IPs and CIDRs.
func ParseTrustedProxies(s string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return ErrInvalidPort
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return ErrInvalidEnv
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	if c.LoginRatePerMinute <= 0 || c.LoginBurst <= 0 {
		return ErrInvalidRate
	}
	if c.SessionTTL <= 0 {
		return ErrInvalidTTL
	}
	if c.LoginDelay < 0 {
		return fmt.Errorf("LOGIN_DELAY must not be negative")
	}
	if _, err := cron.ParseStandard(c.QuotaSweepCron); err != nil {
		return fmt.Errorf("QUOTA_SWEEP_CRON: %w", err)
	}
	return nil
}

// Production reports whether the server runs with production settings.
func (c Config) Production() bool {
	return c.Env == EnvProduction
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
