package cache

import (
	"context"
	"strings"
	"time"

	"github.com/amore/clue/pkg/logger"
)

const (
	defaultSize = 1024
	defaultTTL  = 5 * time.Minute
)

// Settings selects and sizes a backend.
type Settings struct {
	Backend       string
	TTL           time.Duration
	Size          int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New builds the configured backend. When Redis is unreachable it falls back
// to the in-memory cache and logs a warning.
func New(ctx context.Context, s Settings) Cache {
	log := logger.Get().Named("cache")

	switch strings.ToLower(s.Backend) {
	case BackendNone:
		log.Info(ctx, "response cache disabled")
		return Noop{}
	case BackendRedis:
		rc, err := NewRedisCache(ctx, s.RedisAddr, s.RedisPassword, s.RedisDB, s.TTL)
		if err == nil {
			log.Info(ctx, "using Redis response cache", logger.String("addr", s.RedisAddr))
			return rc
		}
		log.Warn(ctx, "Redis unavailable, falling back to in-memory response cache. "+
			"Replicas will not share cached responses.",
			logger.String("addr", s.RedisAddr),
			logger.Error(err))
	}

	log.Info(ctx, "using in-memory response cache",
		logger.Int("size", s.Size),
		logger.Duration("ttl", s.TTL))
	return NewMemoryCache(s.Size, s.TTL)
}
