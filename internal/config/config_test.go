package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jomoregie1/greetingapi/internal/api/middleware"
	"github.com/Jomoregie1/greetingapi/internal/greetings"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "SQLITE_PATH", "REDIS_URL", "CACHE_TTL",
		"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "RATE_LIMIT_WHITELIST", "AUTO_BLOCK_ENABLED",
		"TRUSTED_PROXIES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	require.Equal(t, "8080", cfg.Port)
	require.True(t, cfg.IsDevelopment())
	require.Equal(t, "./data/greetings.db", cfg.SQLitePath)
	require.Equal(t, greetings.DefaultCacheTTL, cfg.CacheTTL)
	require.Equal(t, 2_160_000*time.Second, cfg.CacheTTL)
	require.Equal(t, middleware.DefaultRateLimitRequests, cfg.RateLimitRequests)
	require.Equal(t, middleware.DefaultRateLimitWindow, cfg.RateLimitWindow)
	require.Empty(t, cfg.RateLimitWhitelist)
	require.Empty(t, cfg.TrustedProxies)
	require.False(t, cfg.AutoBlockEnabled)
	require.Empty(t, cfg.Warnings)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("CACHE_TTL", "3600")
	t.Setenv("RATE_LIMIT_REQUESTS", "20")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.0/8, 127.0.0.1 ,")
	t.Setenv("AUTO_BLOCK_ENABLED", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1,172.16.0.0/12")

	cfg := Load()
	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, time.Hour, cfg.CacheTTL)
	require.Equal(t, 20, cfg.RateLimitRequests)
	require.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	require.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.RateLimitWhitelist)
	require.True(t, cfg.AutoBlockEnabled)
	require.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.TrustedProxies)
}

func TestLoad_InvalidValuesWarn(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_TTL", "forever")
	t.Setenv("RATE_LIMIT_REQUESTS", "-3")

	cfg := Load()
	require.Equal(t, greetings.DefaultCacheTTL, cfg.CacheTTL)
	require.Equal(t, middleware.DefaultRateLimitRequests, cfg.RateLimitRequests)
	require.Len(t, cfg.Warnings, 2)
	require.Contains(t, cfg.Warnings[0], "CACHE_TTL")
}

func TestLoad_ProductionRequiresBackends(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	require.PanicsWithValue(t, "DATABASE_URL is required in production", func() { Load() })

	t.Setenv("DATABASE_URL", "postgres://localhost/greetings")
	require.PanicsWithValue(t, "REDIS_URL is required in production", func() { Load() })

	t.Setenv("REDIS_URL", "redis://localhost:6379")
	require.False(t, Load().IsDevelopment())
}
