// Package repository defines the read-only dashboard store and its MongoDB implementation.
package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/amore/clue/internal/domain/model"
)

// Collections read by the dashboard.
const (
	CollTrends            = "trends"
	CollLeaderboard       = "leaderboard"
	CollRetailSales       = "raw_retail_sales"
	CollRawReviews        = "raw_reviews"
	CollSNSPosts          = "raw_sns_posts"
	CollProcessedKeywords = "processed_keywords"
	CollPlatformStats     = "sns_platform_stats"
	CollProducts          = "products"
	CollReviewSentences   = "review_sentences"
	CollKeywordSummaries  = "keyword_summaries"
	CollWhitespace        = "whitespace_products"
	CollBatchLogs         = "batch_job_logs"
)

// StatCollections is the order in which CollectionCounts reports collections.
var StatCollections = []string{
	CollTrends,
	CollLeaderboard,
	CollRetailSales,
	CollRawReviews,
	CollSNSPosts,
	CollProcessedKeywords,
	CollPlatformStats,
	CollProducts,
	CollReviewSentences,
	CollKeywordSummaries,
	CollWhitespace,
	CollBatchLogs,
}

// LeaderboardQuery selects keyword rows for one dashboard leaderboard.
type LeaderboardQuery struct {
	Country    string
	Category   string
	ItemType   string
	TrendLevel string
	Limit      int
}

// ReviewFilter narrows a raw_reviews count. Zero fields are ignored.
// Since is inclusive and Until exclusive.
type ReviewFilter struct {
	Country    string
	Keyword    string
	Sentiment  string
	ReviewType string
	// Content is matched case-insensitively anywhere in the review text.
	Content string
	Since   time.Time
	Until   time.Time
}

// SentenceQuery selects classified review sentences.
type SentenceQuery struct {
	Country    string
	Keywords   []string
	ReviewType string
	Sentiment  string
	Limit      int
}

// SummaryQuery selects one pre-generated summary. Either Keyword or ReviewType is set.
type SummaryQuery struct {
	Country    string
	Keyword    string
	ReviewType string
	Sentiment  string
	// FoldCase matches Keyword exactly but case-insensitively.
	FoldCase bool
}

// BrandFilter narrows a brand catalog query. The zero value returns every product.
type BrandFilter struct {
	Ingredient string
	Concerns   []string
}

// Store provides read access to the aggregate collections written by the batch pipeline.
// Every method returns ErrNotConnected when the database is unavailable.
type Store interface {
	// Connected reports whether a database handle is available.
	Connected() bool

	// KeywordLeaderboard groups processed_keywords by keyword, ordered by average score.
	KeywordLeaderboard(ctx context.Context, q LeaderboardQuery) ([]model.KeywordAggregate, error)
	// TrendDocuments returns trends documents ordered by score desc.
	TrendDocuments(ctx context.Context, country string, limit int) ([]model.Trend, error)
	// PrecomputedLeaderboard returns leaderboard rows ordered by score desc.
	PrecomputedLeaderboard(ctx context.Context, q LeaderboardQuery) ([]model.LeaderboardEntry, error)

	// WeeklyReviewCounts groups raw_reviews posted in [since, until] by ISO week.
	WeeklyReviewCounts(ctx context.Context, country string, since, until time.Time) ([]model.WeekCount, error)
	// PlatformStats returns platform stats, newest first. A limit of 0 means no limit.
	PlatformStats(ctx context.Context, country, category string, limit int) ([]model.PlatformStat, error)
	// LatestPlatformStat returns the newest stats for one platform.
	// Returns ErrNotFound if the platform has no stats.
	LatestPlatformStat(ctx context.Context, platform, country string) (model.PlatformStat, error)
	// RecentPlatformStats returns stats dated at or after since, newest first.
	RecentPlatformStats(ctx context.Context, country, platform string, since time.Time) ([]model.PlatformStat, error)

	// CategoryProducts returns products of a category ordered by sales rank.
	CategoryProducts(ctx context.Context, country, category string, limit int) ([]model.Product, error)
	// ProcessedKeywords returns every processed keyword of a country and category.
	ProcessedKeywords(ctx context.Context, country, category string) ([]model.ProcessedKeyword, error)

	// ReviewTypeSentiment counts review sentences per review type and sentiment.
	ReviewTypeSentiment(ctx context.Context, country string, keywords []string) ([]model.TypeSentimentCount, error)
	// SentencesByType returns the newest sentences of a review type. When keywords
	// match nothing the query is retried without them.
	SentencesByType(ctx context.Context, q SentenceQuery) ([]model.ReviewSentence, error)

	// SentimentCounts counts raw reviews per sentiment.
	SentimentCounts(ctx context.Context, country, keyword string) (map[string]int, error)
	// ReviewDetails returns the newest raw reviews as stored.
	ReviewDetails(ctx context.Context, country, keyword, sentiment string, limit int) ([]bson.M, error)
	// CountReviews counts raw reviews matching f.
	CountReviews(ctx context.Context, f ReviewFilter) (int64, error)

	// ProductsByKeyword searches product keywords, names, descriptions and ingredients.
	ProductsByKeyword(ctx context.Context, country, keyword string, limit int) ([]model.Product, error)
	// ProductForKeyword returns any product tagged with keyword.
	// Returns ErrNotFound if none is.
	ProductForKeyword(ctx context.Context, keyword string) (model.Product, error)
	// WhitespaceProducts returns the most reviewed whitespace products of one kind.
	WhitespaceProducts(ctx context.Context, country, category, kind string) ([]bson.M, error)

	// KeywordSummary returns a pre-generated summary. Returns ErrNotFound if none exists.
	KeywordSummary(ctx context.Context, q SummaryQuery) (model.KeywordSummary, error)
	// KeywordDescription returns the described keyword for a country, falling back
	// to any country. Returns ErrNotFound if no description exists.
	KeywordDescription(ctx context.Context, country, keyword string) (model.ProcessedKeyword, error)

	// BrandProducts returns raw documents of one brand collection.
	BrandProducts(ctx context.Context, collection string, f BrandFilter) ([]bson.M, error)
	// BatchLogs returns the newest batch workflow runs.
	BatchLogs(ctx context.Context, limit int) ([]model.BatchLog, error)
	// CollectionCounts counts the documents of every StatCollections entry.
	CollectionCounts(ctx context.Context) (map[string]int64, error)
}
