package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Jomoregie1/greetingapi/internal/api/middleware"
	"github.com/Jomoregie1/greetingapi/internal/greetings"
	"github.com/Jomoregie1/greetingapi/internal/handlers"
	"github.com/Jomoregie1/greetingapi/internal/store"
)

// Options tunes caching, rate limiting and proxy trust.
type Options struct {
	CacheTTL  time.Duration
	RateLimit middleware.RateLimiterConfig

	// TrustedProxies lists peers (IPs or CIDRs) whose forwarded headers
	// identify the client. Empty means the connecting address is the client.
	TrustedProxies []string
}

// NewRouter creates and configures the HTTP router. redisStore may be nil,
// in which case responses are not cached and rate limits are kept in memory.
func NewRouter(logger zerolog.Logger, db store.DataStore, redisStore *store.RedisStore, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.ProxyHeaders(opts.TrustedProxies, logger))
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - read-only API open to browser clients
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Query pipeline: cache stage wraps the store-backed service
	var reader greetings.Reader = greetings.NewService(db)
	if redisStore != nil {
		reader = greetings.NewCachedReader(reader, redisStore, opts.CacheTTL, logger)
	} else {
		logger.Warn().Msg("redis not configured, response cache disabled")
	}

	limiter := middleware.NewRateLimiter(redisStore.Client(), logger, opts.RateLimit)
	h := handlers.NewHandler(reader, db, redisStore, logger)

	// Exempt from rate limiting
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Mount("/greetings", greetingRoutes(h, limiter))
	r.Mount("/v1/greetings", greetingRoutes(h, limiter))

	return r
}

// greetingRoutes wires each endpoint behind its own rate limit window.
func greetingRoutes(h *handlers.Handler, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.With(limiter.Limit("list")).Get("/", h.ListGreetings)
	r.With(limiter.Limit("random")).Get("/random", h.RandomGreeting)
	r.With(limiter.Limit("types")).Get("/types", h.GreetingTypes)
	r.With(limiter.Limit("search")).Get("/search", h.SearchGreetings)
	r.With(limiter.Limit("recent")).Get("/recent_greetings", h.RecentGreetings)

	return r
}
