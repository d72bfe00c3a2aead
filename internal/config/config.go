package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Jomoregie1/greetingapi/internal/api/middleware"
	"github.com/Jomoregie1/greetingapi/internal/greetings"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string // PostgreSQL; SQLite is used when empty
	SQLitePath  string
	RedisURL    string

	// Response cache
	CacheTTL time.Duration

	// Rate limiting
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
	TrustedProxies     []string // peers allowed to set X-Forwarded-For / X-Real-IP
	AutoBlockEnabled   bool     // Enable auto-blocking after repeated violations

	// Warnings lists values that could not be parsed and fell back to defaults.
	Warnings []string
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       getEnv("SQLITE_PATH", "./data/greetings.db"),
		RedisURL:         os.Getenv("REDIS_URL"),
		AutoBlockEnabled: getEnv("AUTO_BLOCK_ENABLED", "false") == "true",
	}

	cfg.CacheTTL = cfg.duration("CACHE_TTL", greetings.DefaultCacheTTL)
	cfg.RateLimitRequests = cfg.positiveInt("RATE_LIMIT_REQUESTS", middleware.DefaultRateLimitRequests)
	cfg.RateLimitWindow = cfg.duration("RATE_LIMIT_WINDOW", middleware.DefaultRateLimitWindow)

	// Comma-separated IPs or CIDRs
	cfg.RateLimitWhitelist = getList("RATE_LIMIT_WHITELIST")
	cfg.TrustedProxies = getList("TRUSTED_PROXIES")

	// In production, require database and redis URLs
	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production")
		}
		if cfg.RedisURL == "" {
			panic("REDIS_URL is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// duration accepts Go duration syntax ("90s", "600h") or a bare number of seconds.
func (c *Config) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not a positive duration, using %s", key, raw, def))
	return def
}

func (c *Config) positiveInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not a positive integer, using %d", key, raw, def))
		return def
	}
	return n
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getList(key string) []string {
	var out []string
	for _, entry := range strings.Split(os.Getenv(key), ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
