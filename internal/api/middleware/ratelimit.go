package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Jomoregie1/greetingapi/internal/greetings"
	"github.com/Jomoregie1/greetingapi/internal/metrics"
)

const (
	DefaultRateLimitRequests = 5
	DefaultRateLimitWindow   = time.Minute

	autoBlockThreshold = 10
)

// RateLimit defines limits for an endpoint.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	Requests         int                  // default requests per window
	Window           time.Duration        // default window
	Limits           map[string]RateLimit // per-endpoint overrides
	Whitelist        []string             // IPs or CIDRs exempt from rate limiting
	AutoBlockEnabled bool                 // Enable auto-blocking after repeated violations
}

// RateLimiter implements sliding window rate limiting per client address and endpoint.
type RateLimiter struct {
	window           WindowStore
	client           *redis.Client
	blocker          *IPBlocker
	logger           zerolog.Logger
	defaultLimit     RateLimit
	limits           map[string]RateLimit
	whitelist        ipSet
	autoBlockEnabled bool
}

// NewRateLimiter creates a new rate limiter. With a nil client, windows are
// kept in process memory and auto-blocking is disabled.
func NewRateLimiter(client *redis.Client, logger zerolog.Logger, cfg RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		client:       client,
		logger:       logger,
		whitelist:    newIPSet(cfg.Whitelist, logger, "whitelist"),
		defaultLimit: RateLimit{Requests: cfg.Requests, Window: cfg.Window},
		limits:       cfg.Limits,
	}
	if rl.defaultLimit.Requests <= 0 {
		rl.defaultLimit.Requests = DefaultRateLimitRequests
	}
	if rl.defaultLimit.Window <= 0 {
		rl.defaultLimit.Window = DefaultRateLimitWindow
	}

	if client != nil {
		rl.window = NewRedisWindow(client)
		rl.blocker = NewIPBlocker(client)
		rl.autoBlockEnabled = cfg.AutoBlockEnabled
	} else {
		rl.window = NewMemoryWindow()
		if cfg.AutoBlockEnabled {
			logger.Warn().Msg("auto-block requires redis, disabled")
		}
	}

	if rl.whitelist.len() > 0 {
		logger.Info().Int("entries", rl.whitelist.len()).Msg("rate limit whitelist configured")
	}

	return rl
}

// limitFor returns the endpoint override or the default limit.
func (rl *RateLimiter) limitFor(endpoint string) RateLimit {
	if l, ok := rl.limits[endpoint]; ok && l.Requests > 0 && l.Window > 0 {
		return l
	}
	return rl.defaultLimit
}

// windowKey identifies one client's window on one endpoint.
func windowKey(ip, endpoint string) string {
	return "ratelimit:ip:" + ip + ":" + endpoint
}

// Limit returns middleware that throttles requests to the named endpoint.
// The decision never touches the greetings store.
func (rl *RateLimiter) Limit(endpoint string) func(http.Handler) http.Handler {
	limit := rl.limitFor(endpoint)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)

			// Skip rate limiting for whitelisted IPs
			if rl.whitelist.contains(ip) {
				next.ServeHTTP(w, r)
				return
			}

			// Check IP block first
			if rl.blocker != nil && rl.blocker.IsBlocked(r.Context(), ip) {
				metrics.BlockedRequests.WithLabelValues("ip_blocked").Inc()
				rl.logger.Warn().
					Str("type", "security").
					Str("event", "blocked_request").
					Str("ip", ip).
					Str("endpoint", endpoint).
					Msg("blocked IP attempted request")
				jsonError(w, http.StatusForbidden, "temporarily blocked")
				return
			}

			key := windowKey(ip, endpoint)
			d, err := rl.window.Hit(r.Context(), key, limit.Requests, limit.Window)
			if err != nil {
				rl.logger.Error().Err(err).Str("key", key).Msg("rate limit check failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(d.ResetAt)))

				rl.trackViolation(r.Context(), ip)
				metrics.RateLimitHits.WithLabelValues(endpoint).Inc()

				rl.logger.Warn().
					Str("type", "security").
					Str("event", "rate_limit_exceeded").
					Str("ip", ip).
					Str("endpoint", endpoint).
					Str("key", key).
					Msg("rate limit exceeded")

				jsonError(w, http.StatusTooManyRequests, greetings.ErrTooManyRequests.Detail)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(resetAt time.Time) int {
	secs := int(time.Until(resetAt).Seconds() + 0.999)
	if secs < 1 {
		return 1
	}
	return secs
}

// trackViolation tracks rate limit violations and auto-blocks repeat offenders.
func (rl *RateLimiter) trackViolation(ctx context.Context, ip string) {
	if !rl.autoBlockEnabled {
		return
	}

	key := fmt.Sprintf("violations:ip:%s", ip)
	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		rl.logger.Error().Err(err).Str("ip", ip).Msg("failed to track violation")
		return
	}
	rl.client.Expire(ctx, key, time.Hour)

	if count >= autoBlockThreshold {
		rl.blocker.Block(ctx, ip, 24*time.Hour, "repeated rate limit violations")
		rl.logger.Warn().
			Str("type", "security").
			Str("event", "ip_auto_blocked").
			Str("ip", ip).
			Int64("violations", count).
			Msg("IP auto-blocked for repeated violations")
	}
}

// IPBlocker manages temporary IP blocks.
type IPBlocker struct {
	client *redis.Client
}

// NewIPBlocker creates a new IP blocker.
func NewIPBlocker(client *redis.Client) *IPBlocker {
	return &IPBlocker{client: client}
}

// IsBlocked checks if an IP is blocked.
func (b *IPBlocker) IsBlocked(ctx context.Context, ip string) bool {
	key := fmt.Sprintf("blocked:ip:%s", ip)
	exists, _ := b.client.Exists(ctx, key).Result()
	return exists > 0
}

// Block blocks an IP for the specified duration.
func (b *IPBlocker) Block(ctx context.Context, ip string, duration time.Duration, reason string) {
	key := fmt.Sprintf("blocked:ip:%s", ip)
	b.client.Set(ctx, key, reason, duration)
}
