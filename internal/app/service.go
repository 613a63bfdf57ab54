// Package service owns the dashboard's long-lived dependencies: the MongoDB
// store, the response cache and the LLM proxy client.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amore/clue/internal/adapters/cache"
	"github.com/amore/clue/internal/adapters/llm"
	"github.com/amore/clue/internal/adapters/repository"
	"github.com/amore/clue/pkg/logger"
	"github.com/amore/clue/pkg/metrics"
)

const stopTimeout = 5 * time.Second

// Service builds and owns the API dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	store *repository.MongoStore
	cache cache.Cache
	proxy *llm.Client

	// Configuration
	mongoURI       string
	mongoDatabase  string
	connectTimeout time.Duration
	production     bool
	cacheSettings  cache.Settings
	upstreams      map[string]string
	llmOptions     []llm.Option

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithMongo sets the MongoDB connection string and database name.
func WithMongo(uri, database string) Option {
	return func(s *Service) {
		s.mongoURI = uri
		if database != "" {
			s.mongoDatabase = database
		}
	}
}

// WithConnectTimeout bounds the MongoDB connect at start.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.connectTimeout = timeout
		}
	}
}

// WithProduction makes an unreachable database fail Start.
func WithProduction(production bool) Option {
	return func(s *Service) { s.production = production }
}

// WithCache selects the response cache backend.
func WithCache(settings cache.Settings) Option {
	return func(s *Service) { s.cacheSettings = settings }
}

// WithUpstreams sets the LLM base URLs keyed by upstream name.
func WithUpstreams(upstreams map[string]string) Option {
	return func(s *Service) {
		if len(upstreams) > 0 {
			s.upstreams = upstreams
		}
	}
}

// WithLLMTimeouts sets the ordinary and long upstream timeouts.
func WithLLMTimeouts(normal, long time.Duration) Option {
	return func(s *Service) {
		s.llmOptions = append(s.llmOptions, llm.WithTimeouts(normal, long))
	}
}

// WithLLMMaxConcurrent caps in-flight requests per upstream.
func WithLLMMaxConcurrent(n int) Option {
	return func(s *Service) {
		s.llmOptions = append(s.llmOptions, llm.WithMaxConcurrent(n))
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		mongoURI:       "mongodb://localhost:27017",
		mongoDatabase:  "amore",
		connectTimeout: 10 * time.Second,
		cacheSettings:  cache.Settings{Backend: cache.BackendMemory},
		upstreams: map[string]string{
			llm.UpstreamPort4: "http://localhost:5004",
			llm.UpstreamPort5: "http://localhost:5005",
			llm.UpstreamPort6: "http://localhost:5006",
			llm.UpstreamPort7: "http://localhost:5007",
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start connects the store and builds the cache and the LLM client.
// In development an unreachable database is logged and the service starts
// unconnected; in production Start fails.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting dashboard service...")

	proxy, err := llm.New(s.upstreams, append([]llm.Option{llm.WithLogger(s.logger.Named("llm"))}, s.llmOptions...)...)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	store := repository.NewMongoStore(s.mongoURI, s.mongoDatabase, repository.WithConnectTimeout(s.connectTimeout))
	if err := store.Connect(ctx); err != nil {
		if s.production {
			return fmt.Errorf("start: mongodb: %w", err)
		}
		s.logger.Warn(ctx, "MongoDB unavailable, serving without database",
			logger.String("database", s.mongoDatabase),
			logger.Error(err))
	} else {
		s.logger.Info(ctx, "connected to MongoDB", logger.String("database", s.mongoDatabase))
	}

	s.store = store
	s.proxy = proxy
	s.cache = cache.New(ctx, s.cacheSettings)
	s.started = true
	s.startedAt = time.Now()

	s.logger.Info(ctx, "dashboard service started",
		logger.Bool("database", store.Connected()),
		logger.String("cache", s.cache.Backend()),
		logger.Int("upstreams", len(s.upstreams)),
	)
	return nil
}

// Stop disconnects the store and closes the cache.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping dashboard service...")

	if s.store != nil {
		if err := s.store.Close(ctx); err != nil {
			s.logger.Warn(ctx, "MongoDB disconnect failed", logger.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn(ctx, "cache close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "dashboard service stopped")
}

// Store returns the MongoDB store. It is nil before Start.
func (s *Service) Store() repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil
	}
	return s.store
}

// Proxy returns the LLM client. It is nil before Start.
func (s *Service) Proxy() *llm.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.proxy
}

// Cache returns the response cache. It is nil before Start.
func (s *Service) Cache() cache.Cache {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache
}

// Connected reports whether the store holds a live database handle.
func (s *Service) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store != nil && s.store.Connected()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"production": s.production,
		"database":   s.mongoDatabase,
		"connected":  s.store != nil && s.store.Connected(),
	}
	upstreams := make(map[string]string, len(s.upstreams))
	for k, v := range s.upstreams {
		upstreams[k] = v
	}
	stats["upstreams"] = upstreams

	if s.started {
		stats["cacheBackend"] = s.cache.Backend()
		uptime := time.Since(s.startedAt)
		stats["uptimeSeconds"] = int64(uptime.Seconds())
		metrics.UpdateServiceUptime(uptime.Seconds())
	}
	return stats
}
