// Package cache provides the byte-value caches behind the HTTP response cache.
package cache

import (
	"context"
	"time"
)

// Backend names.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Cache stores opaque values by key.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key. A zero ttl uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Backend names the implementation.
	Backend() string
	Close() error
}
