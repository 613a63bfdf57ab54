package api_test

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/amore/clue/internal/adapters/llm"
	"github.com/amore/clue/internal/adapters/repository"
	"github.com/amore/clue/internal/domain/model"
)

// mockStore is an in-memory repository.Store. err, when set, is returned by
// every read.
type mockStore struct {
	mu    sync.Mutex
	calls map[string]int

	connected bool
	err       error
	panicOn   string

	keywordRows   []model.KeywordAggregate
	trends        []model.Trend
	precomputed   []model.LeaderboardEntry
	weekCounts    []model.WeekCount
	platformStats []model.PlatformStat
	latestStat    *model.PlatformStat
	products      []model.Product
	processed     []model.ProcessedKeyword
	typeCounts    []model.TypeSentimentCount
	sentences     []model.ReviewSentence
	sentiments    map[string]int
	reviews       []bson.M
	reviewCount   int64
	keywordProd   *model.Product
	whitespace    map[string][]bson.M
	summary       *model.KeywordSummary
	description   *model.ProcessedKeyword
	brandDocs     map[string][]bson.M
	brandErr      map[string]error
	batchLogs     []model.BatchLog
	counts        map[string]int64

	lastLeaderboard repository.LeaderboardQuery
	lastSentence    repository.SentenceQuery
	lastFilter      repository.ReviewFilter
	lastSince       time.Time
}

func newMockStore() *mockStore {
	return &mockStore{connected: true, calls: map[string]int{}}
}

func (m *mockStore) track(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
	if m.panicOn == name {
		panic("boom in " + name)
	}
	return m.err
}

func (m *mockStore) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockStore) Connected() bool { return m.connected }

func (m *mockStore) KeywordLeaderboard(_ context.Context, q repository.LeaderboardQuery) ([]model.KeywordAggregate, error) {
	m.mu.Lock()
	m.lastLeaderboard = q
	m.mu.Unlock()
	return m.keywordRows, m.track("KeywordLeaderboard")
}

func (m *mockStore) TrendDocuments(_ context.Context, _ string, _ int) ([]model.Trend, error) {
	return m.trends, m.track("TrendDocuments")
}

func (m *mockStore) PrecomputedLeaderboard(_ context.Context, _ repository.LeaderboardQuery) ([]model.LeaderboardEntry, error) {
	return m.precomputed, m.track("PrecomputedLeaderboard")
}

func (m *mockStore) WeeklyReviewCounts(_ context.Context, _ string, since, _ time.Time) ([]model.WeekCount, error) {
	m.mu.Lock()
	m.lastSince = since
	m.mu.Unlock()
	return m.weekCounts, m.track("WeeklyReviewCounts")
}

func (m *mockStore) PlatformStats(_ context.Context, _, _ string, _ int) ([]model.PlatformStat, error) {
	return m.platformStats, m.track("PlatformStats")
}

func (m *mockStore) LatestPlatformStat(_ context.Context, _, _ string) (model.PlatformStat, error) {
	if err := m.track("LatestPlatformStat"); err != nil {
		return model.PlatformStat{}, err
	}
	if m.latestStat == nil {
		return model.PlatformStat{}, repository.ErrNotFound
	}
	return *m.latestStat, nil
}

func (m *mockStore) RecentPlatformStats(_ context.Context, _, _ string, since time.Time) ([]model.PlatformStat, error) {
	m.mu.Lock()
	m.lastSince = since
	m.mu.Unlock()
	return m.platformStats, m.track("RecentPlatformStats")
}

func (m *mockStore) CategoryProducts(_ context.Context, _, _ string, _ int) ([]model.Product, error) {
	return m.products, m.track("CategoryProducts")
}

func (m *mockStore) ProcessedKeywords(_ context.Context, _, _ string) ([]model.ProcessedKeyword, error) {
	return m.processed, m.track("ProcessedKeywords")
}

func (m *mockStore) ReviewTypeSentiment(_ context.Context, _ string, _ []string) ([]model.TypeSentimentCount, error) {
	return m.typeCounts, m.track("ReviewTypeSentiment")
}

func (m *mockStore) SentencesByType(_ context.Context, q repository.SentenceQuery) ([]model.ReviewSentence, error) {
	m.mu.Lock()
	m.lastSentence = q
	m.mu.Unlock()
	return m.sentences, m.track("SentencesByType")
}

func (m *mockStore) SentimentCounts(_ context.Context, _, _ string) (map[string]int, error) {
	return m.sentiments, m.track("SentimentCounts")
}

func (m *mockStore) ReviewDetails(_ context.Context, _, _, _ string, _ int) ([]bson.M, error) {
	return m.reviews, m.track("ReviewDetails")
}

func (m *mockStore) CountReviews(_ context.Context, f repository.ReviewFilter) (int64, error) {
	m.mu.Lock()
	m.lastFilter = f
	m.mu.Unlock()
	return m.reviewCount, m.track("CountReviews")
}

func (m *mockStore) ProductsByKeyword(_ context.Context, _, _ string, _ int) ([]model.Product, error) {
	return m.products, m.track("ProductsByKeyword")
}

func (m *mockStore) ProductForKeyword(_ context.Context, _ string) (model.Product, error) {
	if err := m.track("ProductForKeyword"); err != nil {
		return model.Product{}, err
	}
	if m.keywordProd == nil {
		return model.Product{}, repository.ErrNotFound
	}
	return *m.keywordProd, nil
}

func (m *mockStore) WhitespaceProducts(_ context.Context, _, _, kind string) ([]bson.M, error) {
	return m.whitespace[kind], m.track("WhitespaceProducts")
}

func (m *mockStore) KeywordSummary(_ context.Context, _ repository.SummaryQuery) (model.KeywordSummary, error) {
	if err := m.track("KeywordSummary"); err != nil {
		return model.KeywordSummary{}, err
	}
	if m.summary == nil {
		return model.KeywordSummary{}, repository.ErrNotFound
	}
	return *m.summary, nil
}

func (m *mockStore) KeywordDescription(_ context.Context, _, _ string) (model.ProcessedKeyword, error) {
	if err := m.track("KeywordDescription"); err != nil {
		return model.ProcessedKeyword{}, err
	}
	if m.description == nil {
		return model.ProcessedKeyword{}, repository.ErrNotFound
	}
	return *m.description, nil
}

func (m *mockStore) BrandProducts(_ context.Context, collection string, _ repository.BrandFilter) ([]bson.M, error) {
	if err := m.track("BrandProducts"); err != nil {
		return nil, err
	}
	if err := m.brandErr[collection]; err != nil {
		return nil, err
	}
	// Copies keep concurrent handlers from sharing maps.
	docs := make([]bson.M, 0, len(m.brandDocs[collection]))
	for _, d := range m.brandDocs[collection] {
		c := bson.M{}
		for k, v := range d {
			c[k] = v
		}
		docs = append(docs, c)
	}
	return docs, nil
}

func (m *mockStore) BatchLogs(_ context.Context, limit int) ([]model.BatchLog, error) {
	logs := m.batchLogs
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, m.track("BatchLogs")
}

func (m *mockStore) CollectionCounts(_ context.Context) (map[string]int64, error) {
	return m.counts, m.track("CollectionCounts")
}

// mockProxy records forwarded requests and replies with resp or err.
type mockProxy struct {
	mu     sync.Mutex
	routes []llm.Route
	bodies []string

	resp   *llm.Response
	err    error
	health llm.HealthReport
}

func (m *mockProxy) Forward(_ context.Context, r llm.Route, body []byte) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, r)
	m.bodies = append(m.bodies, string(body))
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func (m *mockProxy) Health(_ context.Context) llm.HealthReport {
	return m.health
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}
