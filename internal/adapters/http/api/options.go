package api

import (
	"math/rand/v2"
	"time"

	"github.com/amore/clue/internal/adapters/cache"
	"github.com/amore/clue/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCache enables the response cache for cacheable read routes.
// ttl of zero keeps the cache's own default.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Server) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithStatsProvider adds service statistics to GET /api/stats.
func WithStatsProvider(p StatsProvider) Option {
	return func(s *Server) { s.stats = p }
}

// WithFrontendURL restricts CORS to one origin.
func WithFrontendURL(url string) Option {
	return func(s *Server) { s.frontendURL = url }
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithRand sets the random source behind simulated values.
func WithRand(r *rand.Rand) Option {
	return func(s *Server) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
