// Package api declares the dashboard HTTP contracts and route registration.
package api

import (
	"context"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/amore/clue/internal/adapters/cache"
	"github.com/amore/clue/internal/adapters/llm"
	"github.com/amore/clue/internal/adapters/repository"
	"github.com/amore/clue/pkg/logger"
)

const defaultMaxBodyBytes = 10 << 20

// Proxy forwards analysis and chat requests to the LLM upstreams.
type Proxy interface {
	Forward(ctx context.Context, r llm.Route, body []byte) (*llm.Response, error)
	Health(ctx context.Context) llm.HealthReport
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	store        repository.Store
	proxy        Proxy
	cache        cache.Cache
	cacheTTL     time.Duration
	stats        StatsProvider
	frontendURL  string
	maxBodyBytes int64
	now          func() time.Time
	logger       logger.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates an API server reading from store and forwarding to proxy.
func NewServer(store repository.Store, proxy Proxy, opts ...Option) *Server {
	now := time.Now()
	s := &Server{
		store:        store,
		proxy:        proxy,
		maxBodyBytes: defaultMaxBodyBytes,
		now:          time.Now,
		logger:       logger.Get().Named("api"),
		rng:          rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix()))),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler(store)
	s.statsHandler = NewStatsHandler(store, s.stats)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("GET /metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("GET /api/stats", MetricsMiddleware(s.requireDB(s.statsHandler.HandleStats), "stats"))

	s.read(mux, "GET /api/trends", "trends", s.handleTrends, true)
	s.read(mux, "GET /api/leaderboard", "leaderboard", s.handleLeaderboard, true)
	s.read(mux, "GET /api/sns-platform/rankings", "sns_rankings", s.handlePlatformRankings, false)
	s.read(mux, "GET /api/sns-platform/{platform}", "sns_platform", s.handlePlatform, false)
	s.read(mux, "GET /api/batch/status", "batch_status", s.handleBatchStatus, false)

	s.read(mux, "GET /api/real/leaderboard", "real_leaderboard", s.handleRealLeaderboard, true)
	s.read(mux, "GET /api/real/reviews/count", "reviews_count", s.handleReviewCount, true)
	s.read(mux, "GET /api/real/sns-platform/popular", "sns_popular", s.handlePopularPlatforms, true)
	s.read(mux, "GET /api/real/sns-platform/data", "sns_data", s.handlePlatformData, true)
	s.read(mux, "GET /api/real/combinations/leaderboard", "combinations", s.handleCombinations, true)
	s.read(mux, "GET /api/real/combinations/review-keywords", "review_keywords", s.handleReviewKeywords, true)
	s.read(mux, "GET /api/real/combinations/reviews-by-type", "reviews_by_type", s.handleReviewsByType, false)
	s.read(mux, "GET /api/real/reviews/sentiment", "reviews_sentiment", s.handleReviewSentiment, true)
	s.read(mux, "GET /api/real/reviews/details", "reviews_details", s.handleReviewDetails, false)
	s.read(mux, "GET /api/real/products/by-keyword", "products_by_keyword", s.handleProductsByKeyword, true)
	s.read(mux, "GET /api/real/trend-evidence", "trend_evidence", s.handleTrendEvidence, true)
	s.read(mux, "GET /api/real/whitespace/products", "whitespace", s.handleWhitespace, true)
	s.read(mux, "GET /api/real/keyword-summary", "keyword_summary", s.handleKeywordSummary, true)
	s.read(mux, "GET /api/real/review-type-summary", "review_type_summary", s.handleReviewTypeSummary, true)
	s.read(mux, "GET /api/real/keyword-description", "keyword_description", s.handleKeywordDescription, true)
	s.read(mux, "GET /api/real/kbeauty/trends-data", "kbeauty_trends", s.handleKBeautyTrends, true)
	s.read(mux, "GET /api/real/kbeauty/products-by-ingredient", "kbeauty_ingredient", s.handleProductsByIngredient, true)
	s.read(mux, "GET /api/real/kbeauty/products-by-concern", "kbeauty_concern", s.handleProductsByConcern, true)

	mux.HandleFunc("GET /api/llm/health", MetricsMiddleware(s.handleLLMHealth, "llm_health"))
	mux.HandleFunc("POST /api/llm/ingredient-detail", MetricsMiddleware(s.handleIngredientDetail, "llm_ingredient_detail"))
	mux.HandleFunc("POST /api/llm/{route}", MetricsMiddleware(s.handleLLM, "llm"))
	mux.HandleFunc("POST /api/chat/{kind}", MetricsMiddleware(s.handleChat, "chat"))

	s.logger.Debug(ctx, "api routes registered", logger.Bool("cache", s.cache != nil))
}

// Wrap applies the process-wide middleware chain to h.
func (s *Server) Wrap(h http.Handler) http.Handler {
	return RecoverMiddleware(s.logger, RequestIDMiddleware(CORSMiddleware(s.frontendURL, BodyLimitMiddleware(s.maxBodyBytes, h))))
}

// read registers a database-backed GET route, optionally behind the response cache.
func (s *Server) read(mux *http.ServeMux, pattern, endpoint string, h http.HandlerFunc, cached bool) {
	h = s.requireDB(h)
	if cached {
		h = s.cached(h)
	}
	mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
}

// withRand runs fn with exclusive use of the server's random source.
func (s *Server) withRand(fn func(*rand.Rand)) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	fn(s.rng)
}
