package api

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amore/clue/internal/adapters/repository"
	"github.com/amore/clue/internal/domain/model"
	"github.com/amore/clue/internal/domain/trend"
	"github.com/amore/clue/internal/domain/types"
)

const (
	rankingsWindow = 7 * 24 * time.Hour
	// popularStatsLimit covers every platform and category of one country.
	popularStatsLimit = 21
)

type platformRanking struct {
	Platform string                  `json:"platform"`
	Keywords []model.PlatformKeyword `json:"keywords"`
}

type rankingsResponse struct {
	Country   string            `json:"country"`
	Platforms []platformRanking `json:"platforms"`
}

// handlePlatformRankings handles GET /api/sns-platform/rankings.
func (s *Server) handlePlatformRankings(w http.ResponseWriter, r *http.Request) {
	country := query(r, "country", types.DefaultCountry)
	platform := query(r, "platform", "")

	stats, err := s.store.RecentPlatformStats(r.Context(), country, platform, s.now().Add(-rankingsWindow))
	if err != nil {
		s.fail(w, r, "platform rankings", err)
		return
	}
	top := trend.TopPlatformKeywords(stats)
	out := make([]platformRanking, 0, len(top))
	for _, st := range top {
		out = append(out, platformRanking{Platform: st.Platform, Keywords: nonNil(st.Keywords)})
	}
	writeJSON(w, http.StatusOK, rankingsResponse{Country: country, Platforms: out})
}

type platformResponse struct {
	Platform string                  `json:"platform"`
	Country  string                  `json:"country"`
	Keywords []model.PlatformKeyword `json:"keywords"`
	Date     time.Time               `json:"date"`
}

// handlePlatform handles GET /api/sns-platform/{platform}.
func (s *Server) handlePlatform(w http.ResponseWriter, r *http.Request) {
	country := query(r, "country", types.DefaultCountry)
	stat, err := s.store.LatestPlatformStat(r.Context(), r.PathValue("platform"), country)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, codeNotFound, msgPlatformMissing)
		return
	}
	if err != nil {
		s.fail(w, r, "platform", err)
		return
	}
	writeJSON(w, http.StatusOK, platformResponse{
		Platform: stat.Platform,
		Country:  stat.Country,
		Keywords: nonNil(stat.Keywords),
		Date:     stat.Date,
	})
}

type platformKeywordsResponse struct {
	Country   string                   `json:"country"`
	Category  string                   `json:"category,omitempty"`
	Platforms []model.PlatformKeywords `json:"platforms"`
}

// handlePopularPlatforms handles GET /api/real/sns-platform/popular.
func (s *Server) handlePopularPlatforms(w http.ResponseWriter, r *http.Request) {
	country := query(r, "country", types.DefaultCountry)
	category := query(r, "category", types.DefaultCategory)

	stats, err := s.store.PlatformStats(r.Context(), country, category, popularStatsLimit)
	if err != nil {
		s.fail(w, r, "popular platforms", err)
		return
	}
	writeJSON(w, http.StatusOK, platformKeywordsResponse{Country: country, Platforms: trend.PopularPlatforms(stats, country)})
}

// handlePlatformData handles GET /api/real/sns-platform/data.
func (s *Server) handlePlatformData(w http.ResponseWriter, r *http.Request) {
	country := query(r, "country", types.DefaultCountry)
	category := query(r, "category", types.DefaultCategory)

	stats, err := s.store.PlatformStats(r.Context(), country, category, 0)
	if err != nil {
		s.fail(w, r, "platform data", err)
		return
	}
	var platforms []model.PlatformKeywords
	s.withRand(func(rng *rand.Rand) { platforms = trend.PlatformData(stats, country, category, rng) })
	writeJSON(w, http.StatusOK, platformKeywordsResponse{Country: country, Category: category, Platforms: platforms})
}
