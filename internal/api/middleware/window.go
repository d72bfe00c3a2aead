package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of recording one request in a window.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time // when the oldest counted request leaves the window
}

// WindowStore counts requests per key over a trailing window.
// Hit must check and record atomically.
type WindowStore interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// slidingWindowScript trims expired entries, then records the request only
// when the window has room. Returns {allowed, count, reset_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, window)

local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
	reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`)

// RedisWindow keeps one sorted set of request timestamps per key.
type RedisWindow struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisWindow creates a Redis-backed window store.
func NewRedisWindow(client *redis.Client) *RedisWindow {
	return &RedisWindow{client: client, now: time.Now}
}

func (rw *RedisWindow) Hit(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := rw.now()
	res, err := slidingWindowScript.Run(ctx, rw.client, []string{key},
		now.UnixMilli(), window.Milliseconds(), limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Decision{}, err
	}

	remaining := limit - int(res[1])
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   res[0] == 1,
		Remaining: remaining,
		ResetAt:   time.UnixMilli(res[2]),
	}, nil
}

// MemoryWindow is a single-process WindowStore for running without Redis.
type MemoryWindow struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

// NewMemoryWindow creates an empty in-memory window store.
func NewMemoryWindow() *MemoryWindow {
	return &MemoryWindow{hits: make(map[string][]time.Time), now: time.Now}
}

func (mw *MemoryWindow) Hit(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	now := mw.now()
	cutoff := now.Add(-window)

	kept := mw.hits[key][:0]
	for _, t := range mw.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	allowed := len(kept) < limit
	if allowed {
		kept = append(kept, now)
	}
	if len(kept) == 0 {
		delete(mw.hits, key)
	} else {
		mw.hits[key] = kept
	}

	resetAt := now.Add(window)
	if len(kept) > 0 {
		resetAt = kept[0].Add(window)
	}
	remaining := limit - len(kept)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: allowed, Remaining: remaining, ResetAt: resetAt}, nil
}
