package greetings

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jomoregie1/greetingapi/internal/metrics"
)

const (
	// DefaultCacheTTL is 25 days. Entries are never invalidated by writes.
	DefaultCacheTTL = 2_160_000 * time.Second

	cachePrefix = "greetings-cache:"
)

// Cache is an opaque key/value store with per-entry expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedReader memoizes successful results of the wrapped Reader.
// Random selections pass straight through.
type CachedReader struct {
	next   Reader
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedReader wraps next with cache. A non-positive ttl uses DefaultCacheTTL.
func NewCachedReader(next Reader, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedReader {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedReader{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedReader) List(ctx context.Context, req PageRequest) (*Page, error) {
	return getOrCompute(ctx, c, "list", pageKey("list", req), func() (*Page, error) {
		return c.next.List(ctx, req)
	})
}

func (c *CachedReader) Search(ctx context.Context, req PageRequest) (*Page, error) {
	return getOrCompute(ctx, c, "search", pageKey("search", req), func() (*Page, error) {
		return c.next.Search(ctx, req)
	})
}

func (c *CachedReader) Recent(ctx context.Context, req PageRequest) (*Page, error) {
	return getOrCompute(ctx, c, "recent", pageKey("recent", req), func() (*Page, error) {
		return c.next.Recent(ctx, req)
	})
}

func (c *CachedReader) Categories(ctx context.Context) (*CategoryList, error) {
	return getOrCompute(ctx, c, "types", cachePrefix+"types", func() (*CategoryList, error) {
		return c.next.Categories(ctx)
	})
}

func (c *CachedReader) Random(ctx context.Context, cat Category) (*RandomGreeting, error) {
	return c.next.Random(ctx, cat)
}

// pageKey serializes every parameter that affects a page. Absent optional
// parameters encode as empty values and url.Values sorts keys.
func pageKey(endpoint string, req PageRequest) string {
	v := url.Values{}
	v.Set("category", req.CategoryToken())
	v.Set("query", req.Query)
	v.Set("limit", strconv.Itoa(req.Limit))
	v.Set("offset", strconv.Itoa(req.Offset))
	return cachePrefix + endpoint + "?" + v.Encode()
}

func getOrCompute[T any](ctx context.Context, c *CachedReader, endpoint, key string, compute func() (*T, error)) (*T, error) {
	data, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	case ok:
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			metrics.CacheLookups.WithLabelValues(endpoint, "hit").Inc()
			return &v, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}
	metrics.CacheLookups.WithLabelValues(endpoint, "miss").Inc()

	v, err := compute()
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(v)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return v, nil
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return v, nil
}
