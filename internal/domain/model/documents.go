// Package model contains the MongoDB documents read by the store and the
// display DTOs returned by the API.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// KeywordAggregate is one grouped row of the processed_keywords leaderboard pipeline.
type KeywordAggregate struct {
	Keyword     string   `bson:"_id"`
	AvgScore    float64  `bson:"avgScore"`
	Count       int      `bson:"count"`
	TrendLevel  string   `bson:"trendLevel"`
	Category    string   `bson:"category"`
	Effects     []string `bson:"effects"`
	KoreanName  string   `bson:"koreanName"`
	Description string   `bson:"description"`
	Sources     []any    `bson:"sources"`
}

// ProcessedKeyword is a keyword document written by the batch pipeline.
type ProcessedKeyword struct {
	Keyword     string  `bson:"keyword" json:"keyword"`
	KeywordType string  `bson:"keywordType" json:"keywordType,omitempty"`
	Country     string  `bson:"country" json:"country,omitempty"`
	Category    string  `bson:"category" json:"category,omitempty"`
	Score       float64 `bson:"score" json:"score"`
	TrendLevel  string  `bson:"trendLevel" json:"trendLevel,omitempty"`
	KoreanName  string  `bson:"koreanName" json:"koreanName,omitempty"`
	Description string  `bson:"description" json:"description,omitempty"`
}

// Trend is a keyword-combination document from the trends collection.
type Trend struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Country     string             `bson:"country" json:"country"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Combination string             `bson:"combination,omitempty" json:"combination,omitempty"`
	Ingredients []string           `bson:"ingredients" json:"ingredients"`
	Formulas    []string           `bson:"formulas" json:"formulas"`
	Effects     []string           `bson:"effects" json:"effects"`
	Mood        []string           `bson:"mood" json:"mood"`
	Score       float64            `bson:"score" json:"score"`
	AvgRank     float64            `bson:"avgRank" json:"avgRank"`
	TrendLevel  string             `bson:"trendLevel,omitempty" json:"trendLevel,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// PlatformKeyword is one keyword entry inside a platform stats document.
type PlatformKeyword struct {
	Keyword    string  `bson:"keyword" json:"keyword,omitempty"`
	Name       string  `bson:"name" json:"name,omitempty"`
	KoreanName string  `bson:"koreanName" json:"koreanName,omitempty"`
	Value      float64 `bson:"value" json:"value"`
	Change     float64 `bson:"change" json:"change"`
	Type       string  `bson:"type" json:"type,omitempty"`
	Rank       float64 `bson:"rank" json:"rank,omitempty"`
}

// DisplayName returns keyword, then name.
func (k PlatformKeyword) DisplayName() string {
	if k.Keyword != "" {
		return k.Keyword
	}
	return k.Name
}

// PlatformStat is a dated keyword ranking for one platform and country.
type PlatformStat struct {
	Platform string            `bson:"platform" json:"platform"`
	Country  string            `bson:"country" json:"country"`
	Category string            `bson:"category,omitempty" json:"category,omitempty"`
	Date     time.Time         `bson:"date" json:"date"`
	Keywords []PlatformKeyword `bson:"keywords" json:"keywords"`
}

// Product is a retail product document from the products collection.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Country      string             `bson:"country"`
	ProductName  string             `bson:"productName"`
	Name         string             `bson:"name"`
	Brand        string             `bson:"brand"`
	Category     string             `bson:"category"`
	MainCategory string             `bson:"mainCategory"`
	Description  string             `bson:"description"`
	SalesRank    float64            `bson:"salesRank"`
	ReviewCount  float64            `bson:"reviewCount"`
	AvgRating    float64            `bson:"avgRating"`
	Rating       float64            `bson:"rating"`
	Score        float64            `bson:"score"`
	TrendLevel   string             `bson:"trendLevel"`
	ImageURL     string             `bson:"image_url"`
	ImageURLAlt  string             `bson:"imageUrl"`
	ProductURL   string             `bson:"productUrl"`
	Keywords     []string           `bson:"keywords"`
	Ingredients  []string           `bson:"ingredients"`
	Formulas     []string           `bson:"formulas"`
	Texture      []string           `bson:"texture"`
	Effects      []string           `bson:"effects"`
	Moods        []string           `bson:"moods"`
	Visual       []string           `bson:"visual"`
}

// DisplayName returns productName, then name.
func (p Product) DisplayName() string {
	if p.ProductName != "" {
		return p.ProductName
	}
	return p.Name
}

// ReviewSentence is a sentence-level classified review.
type ReviewSentence struct {
	Country     string    `bson:"country"`
	ReviewType  string    `bson:"reviewType"`
	Sentiment   string    `bson:"sentiment"`
	Content     string    `bson:"content"`
	ContentKr   string    `bson:"contentKr"`
	ProductName string    `bson:"productName"`
	Brand       string    `bson:"brand"`
	Rating      float64   `bson:"rating"`
	Source      string    `bson:"source"`
	CreatedAt   time.Time `bson:"createdAt"`
}

// TypeSentimentCount is one group of the review_sentences reviewType x sentiment pipeline.
type TypeSentimentCount struct {
	ReviewType string
	Sentiment  string
	Count      int
}

// WeekCount is one group of the weekly review count pipeline.
type WeekCount struct {
	Year  int
	Week  int
	Count int
}

// SampleReview is an excerpt stored next to a generated summary.
type SampleReview struct {
	Content   string  `bson:"content" json:"content"`
	ContentKr string  `bson:"contentKr,omitempty" json:"contentKr,omitempty"`
	Product   string  `bson:"product" json:"product"`
	Brand     string  `bson:"brand" json:"brand"`
	Rating    float64 `bson:"rating" json:"rating"`
}

// KeywordSummary is a pre-generated review summary for a keyword or review type.
type KeywordSummary struct {
	Country       string         `bson:"country"`
	Keyword       string         `bson:"keyword,omitempty"`
	ReviewType    string         `bson:"reviewType,omitempty"`
	Sentiment     string         `bson:"sentiment"`
	Summary       string         `bson:"summary"`
	Source        string         `bson:"source"`
	ReviewCount   int            `bson:"reviewCount"`
	SampleReviews []SampleReview `bson:"sampleReviews"`
	GeneratedAt   time.Time      `bson:"generatedAt"`
}

// BatchLog is one run record of the out-of-process batch pipeline.
type BatchLog struct {
	JobType     string    `bson:"jobType" json:"-"`
	Status      string    `bson:"status" json:"status"`
	Reason      string    `bson:"reason,omitempty" json:"reason,omitempty"`
	Country     string    `bson:"country,omitempty" json:"country,omitempty"`
	Category    string    `bson:"category,omitempty" json:"category,omitempty"`
	StartedAt   time.Time `bson:"startedAt" json:"startedAt"`
	CompletedAt time.Time `bson:"completedAt" json:"completedAt"`
	Duration    float64   `bson:"duration" json:"duration"`
}

// LeaderboardEntry is a precomputed keyword row in the leaderboard collection.
type LeaderboardEntry struct {
	Keyword      string    `bson:"keyword"`
	KoreanName   string    `bson:"koreanName"`
	Description  string    `bson:"description"`
	Score        float64   `bson:"score"`
	Change       float64   `bson:"change"`
	TrendLevel   string    `bson:"trendLevel"`
	ItemType     string    `bson:"itemType"`
	Country      string    `bson:"country"`
	Category     string    `bson:"category"`
	MainCategory string    `bson:"mainCategory"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}
