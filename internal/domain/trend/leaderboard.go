// Package trend turns aggregate documents into the ranked and projected
// series the dashboard draws. Functions here do no I/O; randomness comes
// from the caller's *rand.Rand.
package trend

import (
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/amore/clue/internal/domain/model"
	"github.com/amore/clue/internal/domain/types"
)

// MaxLeaderboard bounds every keyword leaderboard.
const MaxLeaderboard = 20

var keywordTypes = map[string]string{
	types.ItemIngredients: types.KeywordIngredient,
	types.ItemTexture:     types.KeywordFormulas,
	types.ItemEffects:     types.KeywordEffects,
	types.ItemVisualMood:  types.KeywordMood,
}

// KeywordTypeFor maps a dashboard item type to the stored keywordType.
// Unknown item types map to ingredient.
func KeywordTypeFor(itemType string) string {
	if kt, ok := keywordTypes[itemType]; ok {
		return kt
	}
	return types.KeywordIngredient
}

// TrendsFieldFor maps a dashboard item type to the list field of a trends document.
func TrendsFieldFor(itemType string) string {
	switch itemType {
	case types.ItemTexture:
		return "formulas"
	case types.ItemEffects:
		return "effects"
	case types.ItemVisualMood:
		return "mood"
	default:
		return "ingredients"
	}
}

// NormalizeTrendLevel upper-cases the first letter and lower-cases the rest.
func NormalizeTrendLevel(level string) string {
	if level == "" {
		return ""
	}
	r := []rune(level)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}

// LevelForScore classifies a 0..100 score.
func LevelForScore(score int) string {
	switch {
	case score >= 75:
		return types.LevelActionable
	case score < 50:
		return types.LevelEarly
	default:
		return types.LevelGrowing
	}
}

// KeywordLeaderboard ranks grouped processed_keywords rows. Rows arrive
// sorted by average score; change is a display jitter in [-3, 6].
func KeywordLeaderboard(rows []model.KeywordAggregate, rng *rand.Rand) []model.LeaderboardItem {
	items := make([]model.LeaderboardItem, 0, len(rows))
	for i, row := range rows {
		korean := row.KoreanName
		if korean == "" {
			korean = row.Keyword
		}
		effects := row.Effects
		if effects == nil {
			effects = []string{}
		}
		items = append(items, model.LeaderboardItem{
			Rank:        i + 1,
			Keyword:     row.Keyword,
			KoreanName:  korean,
			Description: row.Description,
			Score:       int(math.Round(row.AvgScore)),
			Change:      rng.IntN(10) - 3,
			TrendLevel:  row.TrendLevel,
			Metadata: model.LeaderboardMetadata{
				ProductCount: len(row.Sources),
				TrendCount:   row.Count,
				Effects:      effects,
			},
		})
	}
	return items
}

// PrecomputedLeaderboard ranks rows read from the leaderboard collection.
func PrecomputedLeaderboard(rows []model.LeaderboardEntry) []model.LeaderboardItem {
	items := make([]model.LeaderboardItem, 0, len(rows))
	for i, row := range rows {
		korean := row.KoreanName
		if korean == "" {
			korean = row.Keyword
		}
		items = append(items, model.LeaderboardItem{
			Rank:        i + 1,
			Keyword:     row.Keyword,
			KoreanName:  korean,
			Description: row.Description,
			Score:       int(math.Round(row.Score)),
			Change:      int(math.Round(row.Change)),
			TrendLevel:  row.TrendLevel,
		})
	}
	return items
}

type keywordTally struct {
	keyword string
	score   float64
	count   int
	ranks   []float64
}

// AggregateTrends averages trend scores per keyword of the item type's list
// field and returns the top 20 by average score.
func AggregateTrends(trends []model.Trend, itemType string) []model.LeaderboardItem {
	field := TrendsFieldFor(itemType)
	tallies := map[string]*keywordTally{}
	var order []string
	for _, t := range trends {
		for _, kw := range keywordsOf(t, field) {
			tl, ok := tallies[kw]
			if !ok {
				tl = &keywordTally{keyword: kw}
				tallies[kw] = tl
				order = append(order, kw)
			}
			tl.score += t.Score
			tl.count++
			tl.ranks = append(tl.ranks, t.AvgRank)
		}
	}

	type ranked struct {
		keyword string
		avg     float64
		avgRank float64
		count   int
	}
	rows := make([]ranked, 0, len(order))
	for _, kw := range order {
		tl := tallies[kw]
		avgRank := 1000.0
		if len(tl.ranks) > 0 {
			avgRank = mean(tl.ranks)
		}
		rows = append(rows, ranked{keyword: kw, avg: tl.score / float64(tl.count), avgRank: avgRank, count: tl.count})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].avg > rows[j].avg })
	if len(rows) > MaxLeaderboard {
		rows = rows[:MaxLeaderboard]
	}

	items := make([]model.LeaderboardItem, len(rows))
	for i, r := range rows {
		items[i] = model.LeaderboardItem{
			Rank:     i + 1,
			Keyword:  r.keyword,
			Score:    int(math.Round(r.avg)),
			Metadata: model.LeaderboardMetadata{Count: r.count, AvgRank: int(math.Round(r.avgRank))},
		}
	}
	return items
}

func keywordsOf(t model.Trend, field string) []string {
	switch field {
	case "formulas":
		return t.Formulas
	case "effects":
		return t.Effects
	case "mood":
		return t.Mood
	default:
		return t.Ingredients
	}
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
