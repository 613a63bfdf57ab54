package api

import (
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/amore/clue/internal/adapters/repository"
	"github.com/amore/clue/internal/domain/model"
	"github.com/amore/clue/internal/domain/trend"
	"github.com/amore/clue/internal/domain/types"
)

const (
	defaultTrendsLimit = 100
	maxTrendsLimit     = 500
)

type trendsResponse struct {
	Country  string        `json:"country"`
	Category string        `json:"category,omitempty"`
	Count    int           `json:"count"`
	Data     []model.Trend `json:"data"`
}

// handleTrends handles GET /api/trends.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	country := query(r, "country", types.DefaultCountry)
	category := query(r, "category", "")
	limit := queryInt(r, "limit", defaultTrendsLimit, maxTrendsLimit)

	trends, err := s.store.TrendDocuments(r.Context(), country, limit)
	if err != nil {
		s.fail(w, r, "trends", err)
		return
	}
	if category != "" && !strings.EqualFold(category, types.CategoryAll) {
		kept := trends[:0]
		for _, t := range trends {
			if strings.EqualFold(t.Category, category) {
				kept = append(kept, t)
			}
		}
		trends = kept
	}
	if trends == nil {
		trends = []model.Trend{}
	}
	writeJSON(w, http.StatusOK, trendsResponse{Country: country, Category: category, Count: len(trends), Data: trends})
}

func leaderboardQuery(r *http.Request) repository.LeaderboardQuery {
	return repository.LeaderboardQuery{
		Country:    query(r, "country", types.DefaultCountry),
		Category:   query(r, "category", types.DefaultCategory),
		ItemType:   query(r, "itemType", types.ItemIngredients),
		TrendLevel: query(r, "trendLevel", types.LevelActionable),
		Limit:      trend.MaxLeaderboard,
	}
}

type leaderboardResponse struct {
	Country     string `json:"country"`
	Category    string `json:"category"`
	ItemType    string `json:"itemType"`
	TrendLevel  string `json:"trendLevel"`
	Source      string `json:"source,omitempty"`
	Leaderboard any    `json:"leaderboard"`
}

// handleLeaderboard handles GET /api/leaderboard. The precomputed leaderboard
// collection wins; without it the keyword averages of the top trends are used.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := leaderboardQuery(r)
	rows, err := s.store.PrecomputedLeaderboard(r.Context(), q)
	if err != nil {
		s.fail(w, r, "leaderboard", err)
		return
	}
	items, source := trend.PrecomputedLeaderboard(rows), repository.CollLeaderboard
	if len(rows) == 0 {
		trends, err := s.store.TrendDocuments(r.Context(), q.Country, defaultTrendsLimit)
		if err != nil {
			s.fail(w, r, "leaderboard", err)
			return
		}
		items, source = trend.AggregateTrends(trends, q.ItemType), repository.CollTrends
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		Country:     q.Country,
		Category:    q.Category,
		ItemType:    q.ItemType,
		TrendLevel:  q.TrendLevel,
		Source:      source,
		Leaderboard: map[string][]model.LeaderboardItem{trend.TrendsFieldFor(q.ItemType): nonNil(items)},
	})
}

// handleRealLeaderboard handles GET /api/real/leaderboard.
func (s *Server) handleRealLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := leaderboardQuery(r)
	rows, err := s.store.KeywordLeaderboard(r.Context(), q)
	if err != nil {
		s.fail(w, r, "real leaderboard", err)
		return
	}
	var items []model.LeaderboardItem
	s.withRand(func(rng *rand.Rand) { items = trend.KeywordLeaderboard(rows, rng) })
	writeJSON(w, http.StatusOK, leaderboardResponse{
		Country:     q.Country,
		Category:    q.Category,
		ItemType:    q.ItemType,
		TrendLevel:  q.TrendLevel,
		Leaderboard: nonNil(items),
	})
}

// nonNil keeps empty lists encoding as [] instead of null.
func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
