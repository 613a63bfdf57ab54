package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/amore/clue/internal/adapters/repository"
	"github.com/amore/clue/internal/domain/model"
	"github.com/amore/clue/internal/domain/trend"
	"github.com/amore/clue/internal/domain/types"
)

const (
	defaultReviewWeeks = 8
	maxReviewWeeks     = 104
	defaultReviewLimit = 10
	maxReviewLimit     = 100
	week               = 7 * 24 * time.Hour
)

type reviewCountResponse struct {
	Country string             `json:"country"`
	Keyword string             `json:"keyword,omitempty"`
	Period  string             `json:"period"`
	Data    []model.NamedCount `json:"data"`
}

// handleReviewCount handles GET /api/real/reviews/count.
func (s *Server) handleReviewCount(w http.ResponseWriter, r *http.Request) {
	country := query(r, "country", types.DefaultCountry)
	keyword := query(r, "keyword", "")
	weeks := queryInt(r, "period", defaultReviewWeeks, maxReviewWeeks)

	until := s.now()
	since := until.Add(-time.Duration(weeks) * week)
	counts, err := s.store.WeeklyReviewCounts(r.Context(), country, since, until)
	if err != nil {
		s.fail(w, r, "review count", err)
		return
	}
	writeJSON(w, http.StatusOK, reviewCountResponse{
		Country: country,
		Keyword: keyword,
		Period:  fmt.Sprintf("%dweeks", weeks),
		Data:    nonNil(trend.WeeklyReviewBars(counts, keyword)),
	})
}

type sentimentResponse struct {
	Country  string `json:"country"`
	Keyword  string `json:"keyword,omitempty"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Total    int    `json:"total"`
}

// handleReviewSentiment handles GET /api/real/reviews/sentiment.
func (s *Server) handleReviewSentiment(w http.ResponseWriter, r *http.Request) {
	country := query(r, "country", types.DefaultCountry)
	keyword := query(r, "keyword", "")

	counts, err := s.store.SentimentCounts(r.Context(), country, keyword)
	if err != nil {
		s.fail(w, r, "review sentiment", err)
		return
	}
	pos, neg := counts[types.SentimentPositive], counts[types.SentimentNegative]
	writeJSON(w, http.StatusOK, sentimentResponse{Country: country, Keyword: keyword, Positive: pos, Negative: neg, Total: pos + neg})
}

type reviewDetailsResponse struct {
	Country   string   `json:"country"`
	Keyword   string   `json:"keyword,omitempty"`
	Sentiment string   `json:"sentiment,omitempty"`
	Reviews   []bson.M `json:"reviews"`
}

// handleReviewDetails handles GET /api/real/reviews/details. Reviews are
// returned as stored plus a product field for the SPA.
func (s *Server) handleReviewDetails(w http.ResponseWriter, r *http.Request) {
	country := query(r, "country", types.DefaultCountry)
	keyword := query(r, "keyword", "")
	sentiment := query(r, "sentiment", "")
	limit := queryInt(r, "limit", defaultReviewLimit, maxReviewLimit)

	reviews, err := s.store.ReviewDetails(r.Context(), country, keyword, sentiment, limit)
	if err != nil {
		s.fail(w, r, "review details", err)
		return
	}
	for _, rv := range reviews {
		rv["product"] = reviewProduct(rv)
	}
	writeJSON(w, http.StatusOK, reviewDetailsResponse{Country: country, Keyword: keyword, Sentiment: sentiment, Reviews: nonNil(reviews)})
}

func reviewProduct(doc bson.M) string {
	for _, key := range []string{"productName", "product"} {
		if v, ok := doc[key].(string); ok && v != "" {
			return v
		}
	}
	return "Unknown Product"
}

type reviewKeywordsResponse struct {
	Country       string                  `json:"country"`
	Positive      []model.ReviewTypeCount `json:"positive"`
	Negative      []model.ReviewTypeCount `json:"negative"`
	TotalPositive int                     `json:"totalPositive"`
	TotalNegative int                     `json:"totalNegative"`
}

// handleReviewKeywords handles GET /api/real/combinations/review-keywords.
func (s *Server) handleReviewKeywords(w http.ResponseWriter, r *http.Request) {
	country := query(r, "country", types.DefaultCountry)
	keywords := splitList(query(r, "keywords", ""))

	groups, err := s.store.ReviewTypeSentiment(r.Context(), country, keywords)
	if err != nil {
		s.fail(w, r, "review keywords", err)
		return
	}
	pos, neg, totPos, totNeg := trend.ReviewTypeBreakdown(groups)
	writeJSON(w, http.StatusOK, reviewKeywordsResponse{
		Country:       country,
		Positive:      nonNil(pos),
		Negative:      nonNil(neg),
		TotalPositive: totPos,
		TotalNegative: totNeg,
	})
}

type reviewsByTypeResponse struct {
	Country    string             `json:"country"`
	ReviewType string             `json:"reviewType"`
	Sentiment  string             `json:"sentiment"`
	Reviews    []model.ReviewCard `json:"reviews"`
}

// handleReviewsByType handles GET /api/real/combinations/reviews-by-type.
func (s *Server) handleReviewsByType(w http.ResponseWriter, r *http.Request) {
	reviewType := query(r, "reviewType", "")
	if reviewType == "" {
		missingParam(w, "reviewType")
		return
	}
	q := repository.SentenceQuery{
		Country:    query(r, "country", types.DefaultCountry),
		Keywords:   splitList(query(r, "keywords", "")),
		ReviewType: reviewType,
		Sentiment:  query(r, "sentiment", types.SentimentPositive),
		Limit:      queryInt(r, "limit", defaultReviewLimit, maxReviewLimit),
	}
	sentences, err := s.store.SentencesByType(r.Context(), q)
	if err != nil {
		s.fail(w, r, "reviews by type", err)
		return
	}
	writeJSON(w, http.StatusOK, reviewsByTypeResponse{
		Country:    q.Country,
		ReviewType: reviewType,
		Sentiment:  q.Sentiment,
		Reviews:    nonNil(trend.ReviewCards(sentences, s.now())),
	})
}

type keywordSummaryResponse struct {
	Keyword     string    `json:"keyword"`
	Sentiment   string    `json:"sentiment"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// handleKeywordSummary handles GET /api/real/keyword-summary. Without a
// stored summary it counts matching reviews and answers a canned one.
func (s *Server) handleKeywordSummary(w http.ResponseWriter, r *http.Request) {
	keyword := query(r, "keyword", "")
	if keyword == "" {
		missingParam(w, "keyword")
		return
	}
	country := query(r, "country", types.DefaultCountry)
	sentiment := query(r, "sentiment", types.SentimentPositive)
	ctx := r.Context()

	sum, err := s.store.KeywordSummary(ctx, repository.SummaryQuery{Country: country, Keyword: keyword, Sentiment: sentiment, FoldCase: true})
	if err == nil {
		writeJSON(w, http.StatusOK, keywordSummaryResponse{
			Keyword: keyword, Sentiment: sentiment, Summary: sum.Summary, Source: sum.Source, GeneratedAt: sum.GeneratedAt,
		})
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.fail(w, r, "keyword summary", err)
		return
	}

	n, err := s.store.CountReviews(ctx, repository.ReviewFilter{Country: country, Content: keyword, Sentiment: sentiment})
	if err != nil {
		s.fail(w, r, "keyword summary", err)
		return
	}
	writeJSON(w, http.StatusOK, keywordSummaryResponse{
		Keyword:     keyword,
		Sentiment:   sentiment,
		Summary:     trend.KeywordSummaryFallback(keyword, sentiment, n),
		Source:      "fallback",
		GeneratedAt: s.now(),
	})
}

type reviewTypeSummaryResponse struct {
	Keyword       string               `json:"keyword,omitempty"`
	ReviewType    string               `json:"reviewType,omitempty"`
	Sentiment     string               `json:"sentiment"`
	Summary       string               `json:"summary"`
	SampleReviews []model.SampleReview `json:"sampleReviews"`
	ReviewCount   int64                `json:"reviewCount"`
	Source        string               `json:"source"`
	GeneratedAt   time.Time            `json:"generatedAt"`
}

// handleReviewTypeSummary handles GET /api/real/review-type-summary for a
// leaderboard keyword or a review type.
func (s *Server) handleReviewTypeSummary(w http.ResponseWriter, r *http.Request) {
	keyword := query(r, "keyword", "")
	reviewType := query(r, "reviewType", "")
	if keyword == "" && reviewType == "" {
		missingParam(w, "keyword or reviewType")
		return
	}
	if keyword != "" {
		reviewType = ""
	}
	country := query(r, "country", types.DefaultCountry)
	sentiment := query(r, "sentiment", types.SentimentPositive)
	ctx := r.Context()

	resp := reviewTypeSummaryResponse{Keyword: keyword, ReviewType: reviewType, Sentiment: sentiment, SampleReviews: []model.SampleReview{}}
	sum, err := s.store.KeywordSummary(ctx, repository.SummaryQuery{Country: country, Keyword: keyword, ReviewType: reviewType, Sentiment: sentiment})
	switch {
	case err == nil:
		resp.Summary = sum.Summary
		resp.SampleReviews = nonNil(sum.SampleReviews)
		resp.ReviewCount = int64(sum.ReviewCount)
		resp.Source = sum.Source
		resp.GeneratedAt = sum.GeneratedAt
		writeJSON(w, http.StatusOK, resp)
		return
	case !errors.Is(err, repository.ErrNotFound):
		s.fail(w, r, "review type summary", err)
		return
	}

	resp.Source = "fallback"
	resp.GeneratedAt = s.now()
	if keyword != "" {
		resp.Summary = trend.PendingKeywordSummary(keyword, sentiment)
		writeJSON(w, http.StatusOK, resp)
		return
	}
	n, err := s.store.CountReviews(ctx, repository.ReviewFilter{Country: country, ReviewType: reviewType, Sentiment: sentiment})
	if err != nil {
		s.fail(w, r, "review type summary", err)
		return
	}
	resp.ReviewCount = n
	resp.Summary = trend.ReviewTypeSummaryFallback(reviewType, sentiment, n)
	writeJSON(w, http.StatusOK, resp)
}
