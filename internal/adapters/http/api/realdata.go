package api

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"github.com/amore/clue/internal/adapters/repository"
	"github.com/amore/clue/internal/domain/catalog"
	"github.com/amore/clue/internal/domain/model"
	"github.com/amore/clue/internal/domain/trend"
	"github.com/amore/clue/internal/domain/types"
)

const (
	combinationProducts   = 200
	defaultKeywordProduct = 5
	maxKeywordProducts    = 50
	defaultEvidenceScore  = 70
)

type combinationsResponse struct {
	Country     string              `json:"country"`
	Category    string              `json:"category"`
	Leaderboard []model.Combination `json:"leaderboard"`
}

// handleCombinations handles GET /api/real/combinations/leaderboard.
func (s *Server) handleCombinations(w http.ResponseWriter, r *http.Request) {
	country := query(r, "country", types.DefaultCountry)
	category := query(r, "category", types.DefaultCategory)

	var (
		products []model.Product
		keywords []model.ProcessedKeyword
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		products, err = s.store.CategoryProducts(ctx, country, category, combinationProducts)
		return err
	})
	g.Go(func() (err error) {
		keywords, err = s.store.ProcessedKeywords(ctx, country, category)
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, "combinations", err)
		return
	}

	scores := trend.KeywordScores(keywords)
	var ranked []model.Combination
	s.withRand(func(rng *rand.Rand) { ranked = trend.RankCombinations(products, scores, category, rng) })
	writeJSON(w, http.StatusOK, combinationsResponse{Country: country, Category: category, Leaderboard: nonNil(ranked)})
}

type productsByKeywordResponse struct {
	Keyword  string              `json:"keyword"`
	Products []model.ProductCard `json:"products"`
}

// handleProductsByKeyword handles GET /api/real/products/by-keyword.
func (s *Server) handleProductsByKeyword(w http.ResponseWriter, r *http.Request) {
	keyword := query(r, "keyword", "")
	if keyword == "" {
		missingParam(w, "keyword")
		return
	}
	country := query(r, "country", types.DefaultCountry)
	limit := queryInt(r, "limit", defaultKeywordProduct, maxKeywordProducts)

	products, err := s.store.ProductsByKeyword(r.Context(), country, keyword, limit)
	if err != nil {
		s.fail(w, r, "products by keyword", err)
		return
	}
	writeJSON(w, http.StatusOK, productsByKeywordResponse{Keyword: keyword, Products: catalog.ProductCards(products, keyword)})
}

type trendEvidenceResponse struct {
	Country       string            `json:"country"`
	Keyword       string            `json:"keyword,omitempty"`
	WeeksData     []model.WeekPoint `json:"weeksData"`
	PLCPrediction []model.PLCPoint  `json:"plcPrediction"`
	TrendLevel    string            `json:"trendLevel"`
}

// handleTrendEvidence handles GET /api/real/trend-evidence. The eight weekly
// review counts are read concurrently with the platform stats and the
// keyword's product.
func (s *Server) handleTrendEvidence(w http.ResponseWriter, r *http.Request) {
	country := query(r, "country", types.DefaultCountry)
	keyword := query(r, "keyword", "")
	now := s.now()

	var (
		stats   []model.PlatformStat
		counts  = make([]int, trend.EvidenceWeeks)
		product model.Product
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		stats, err = s.store.PlatformStats(ctx, country, "", 0)
		return err
	})
	for i := range counts {
		// i = 0 is the oldest week.
		age := trend.EvidenceWeeks - 1 - i
		g.Go(func() error {
			n, err := s.store.CountReviews(ctx, repository.ReviewFilter{
				Country: country,
				Keyword: keyword,
				Since:   now.Add(-time.Duration(age+1) * week),
				Until:   now.Add(-time.Duration(age) * week),
			})
			counts[i] = int(n)
			return err
		})
	}
	if keyword != "" {
		g.Go(func() error {
			p, err := s.store.ProductForKeyword(ctx, keyword)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			product = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.fail(w, r, "trend evidence", err)
		return
	}

	level := product.TrendLevel
	if level == "" {
		level = types.LevelGrowing
	}
	score := product.Score
	if score == 0 {
		score = defaultEvidenceScore
	}
	sns, retail := trend.EvidenceBases(stats, keyword)
	var weeks []model.WeekPoint
	s.withRand(func(rng *rand.Rand) { weeks = trend.TrendEvidence(counts, sns, retail, rng) })
	writeJSON(w, http.StatusOK, trendEvidenceResponse{
		Country:       country,
		Keyword:       keyword,
		WeeksData:     weeks,
		PLCPrediction: trend.PLCPrediction(level, score),
		TrendLevel:    level,
	})
}

type whitespaceResponse struct {
	Country  string   `json:"country"`
	Category string   `json:"category"`
	Overseas []bson.M `json:"overseas"`
	Korean   []bson.M `json:"korean"`
}

// handleWhitespace handles GET /api/real/whitespace/products.
func (s *Server) handleWhitespace(w http.ResponseWriter, r *http.Request) {
	country := query(r, "country", types.DefaultCountry)
	category := query(r, "category", types.DefaultCategory)

	var overseas, korean []bson.M
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		overseas, err = s.store.WhitespaceProducts(ctx, country, category, "overseas")
		return err
	})
	g.Go(func() (err error) {
		korean, err = s.store.WhitespaceProducts(ctx, country, category, "korean")
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, "whitespace products", err)
		return
	}
	writeJSON(w, http.StatusOK, whitespaceResponse{
		Country:  country,
		Category: category,
		Overseas: withImages(overseas),
		Korean:   withImages(korean),
	})
}

// withImages sets image and imageUrl from the first stored image field.
func withImages(docs []bson.M) []bson.M {
	for _, d := range docs {
		for _, key := range []string{"imageUrl", "image_url", "image"} {
			if v, ok := d[key]; ok && v != nil && v != "" {
				d["image"] = v
				d["imageUrl"] = v
				break
			}
		}
	}
	return nonNil(docs)
}

type keywordDescriptionResponse struct {
	Keyword     string `json:"keyword"`
	KoreanName  string `json:"koreanName"`
	Description string `json:"description"`
	KeywordType string `json:"keywordType,omitempty"`
	Category    string `json:"category,omitempty"`
	Source      string `json:"source"`
}

// handleKeywordDescription handles GET /api/real/keyword-description.
func (s *Server) handleKeywordDescription(w http.ResponseWriter, r *http.Request) {
	keyword := query(r, "keyword", "")
	if keyword == "" {
		missingParam(w, "keyword")
		return
	}
	country := query(r, "country", types.DefaultCountry)

	doc, err := s.store.KeywordDescription(r.Context(), country, keyword)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusOK, keywordDescriptionResponse{Keyword: keyword, KoreanName: keyword, Source: "none"})
		return
	}
	if err != nil {
		s.fail(w, r, "keyword description", err)
		return
	}
	korean := doc.KoreanName
	if korean == "" {
		korean = keyword
	}
	writeJSON(w, http.StatusOK, keywordDescriptionResponse{
		Keyword:     keyword,
		KoreanName:  korean,
		Description: doc.Description,
		KeywordType: doc.KeywordType,
		Category:    doc.Category,
		Source:      "database",
	})
}
