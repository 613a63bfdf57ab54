package trend

import (
	"fmt"
	"sort"
	"time"

	"github.com/amore/clue/internal/domain/model"
	"github.com/amore/clue/internal/domain/types"
)

// keywordShare approximates the fraction of reviews that mention a keyword.
const keywordShare = 0.3

// WeeklyReviewBars labels week groups "Week 1".."Week n". With a keyword the
// counts are scaled down to the estimated keyword share.
func WeeklyReviewBars(weeks []model.WeekCount, keyword string) []model.NamedCount {
	out := make([]model.NamedCount, len(weeks))
	for i, w := range weeks {
		v := w.Count
		if keyword != "" {
			v = int(float64(w.Count) * keywordShare)
		}
		out[i] = model.NamedCount{Name: fmt.Sprintf("Week %d", i+1), Value: v}
	}
	return out
}

// ReviewTypeBreakdown splits reviewType x sentiment groups into positive and
// negative bars sorted by count, with totals. Groups without a type are skipped.
func ReviewTypeBreakdown(groups []model.TypeSentimentCount) (positive, negative []model.ReviewTypeCount, totalPositive, totalNegative int) {
	positive = []model.ReviewTypeCount{}
	negative = []model.ReviewTypeCount{}
	for _, g := range groups {
		if g.ReviewType == "" {
			continue
		}
		entry := model.ReviewTypeCount{Keyword: g.ReviewType, Count: g.Count, Type: g.ReviewType}
		switch g.Sentiment {
		case types.SentimentPositive:
			positive = append(positive, entry)
			totalPositive += g.Count
		case types.SentimentNegative:
			negative = append(negative, entry)
			totalNegative += g.Count
		}
	}
	sort.SliceStable(positive, func(i, j int) bool { return positive[i].Count > positive[j].Count })
	sort.SliceStable(negative, func(i, j int) bool { return negative[i].Count > negative[j].Count })
	return positive, negative, totalPositive, totalNegative
}

// ReviewCards maps review sentences to popup cards. now stands in for a missing createdAt.
func ReviewCards(sentences []model.ReviewSentence, now time.Time) []model.ReviewCard {
	out := make([]model.ReviewCard, len(sentences))
	for i, s := range sentences {
		product := s.ProductName
		if product == "" {
			product = "Unknown Product"
		}
		source := s.Source
		if source == "" {
			source = "Amazon"
		}
		posted := s.CreatedAt
		if posted.IsZero() {
			posted = now
		}
		out[i] = model.ReviewCard{
			Keyword:   s.ReviewType,
			Sentiment: s.Sentiment,
			Content:   s.Content,
			ContentKr: s.ContentKr,
			Product:   product,
			Brand:     s.Brand,
			Rating:    s.Rating,
			PostedAt:  posted.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			Source:    source,
		}
	}
	return out
}

// SentimentLabel returns the Korean word for a sentiment.
func SentimentLabel(sentiment string) string {
	if sentiment == types.SentimentPositive {
		return "긍정"
	}
	return "부정"
}

// KeywordSummaryFallback is shown while no generated summary exists for a keyword.
func KeywordSummaryFallback(keyword, sentiment string, reviews int64) string {
	if sentiment == types.SentimentPositive {
		return fmt.Sprintf("\"%s\" 성분에 대해 %d건의 긍정적 리뷰가 있습니다. 소비자들은 전반적으로 만족스러운 경험을 보고하고 있습니다.", keyword, reviews)
	}
	return fmt.Sprintf("\"%s\" 성분에 대해 %d건의 부정적 리뷰가 있습니다. 일부 소비자들은 개선이 필요한 부분을 언급했습니다.", keyword, reviews)
}

// PendingKeywordSummary is shown while a leaderboard keyword's summary is being generated.
func PendingKeywordSummary(keyword, sentiment string) string {
	return fmt.Sprintf("\"%s\" 키워드에 대한 %s 리뷰 요약이 생성 중입니다.", keyword, SentimentLabel(sentiment))
}

// ReviewTypeSummaryFallback summarises a review type by its count.
func ReviewTypeSummaryFallback(reviewType, sentiment string, reviews int64) string {
	return fmt.Sprintf("\"%s\" 유형에 대한 %d건의 %s 리뷰가 분석되었습니다. 소비자들의 주요 의견을 종합하여 트렌드 인사이트를 제공합니다.",
		reviewType, reviews, SentimentLabel(sentiment))
}
