package trend

import (
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/amore/clue/internal/domain/model"
	"github.com/amore/clue/internal/domain/types"
)

// MaxCombinations is the length of the combination leaderboard.
const MaxCombinations = 7

const (
	defaultSalesRank    = 1000
	defaultKeywordScore = 50
)

type comboDefault struct {
	ingredient, formula, effect, mood string
}

var categoryCombos = map[string][]comboDefault{
	"Skincare": {
		{"Retinol", "Serum", "Anti-aging", "Glass Skin"},
		{"Niacinamide", "Toner", "Brightening", "Dewy"},
		{"Hyaluronic Acid", "Essence", "Hydration", "Plump"},
		{"Vitamin C", "Serum", "Brightening", "Glow"},
		{"Centella", "Cream", "Soothing", "Calm"},
		{"Peptides", "Moisturizer", "Firming", "Youthful"},
		{"Snail Mucin", "Essence", "Repair", "Healthy"},
	},
	"Cleansing": {
		{"Salicylic Acid", "Gel Cleanser", "Pore Cleansing", "Fresh"},
		{"Tea Tree", "Foam Cleanser", "Oil Control", "Clean"},
		{"Centella", "Low pH Cleanser", "Gentle", "Soft"},
		{"Green Tea", "Oil Cleanser", "Makeup Removal", "Natural"},
	},
	"Sun Care": {
		{"Zinc Oxide", "Sun Stick", "UV Protection", "No White Cast"},
		{"Centella", "Sunscreen", "Moisturizing", "Dewy"},
		{"Niacinamide", "Sun Cushion", "Tone-up", "Bright"},
	},
	"Makeup": {
		{"Hyaluronic Acid", "Cushion", "Long-lasting", "Glow"},
		{"Vitamin E", "Foundation", "Coverage", "Natural"},
		{"Collagen", "Primer", "Smoothing", "Flawless"},
	},
}

// KeywordScores maps a lower-cased keyword to its trend score. The first
// processed_keywords row per keyword wins; a zero score counts as 50.
func KeywordScores(rows []model.ProcessedKeyword) map[string]float64 {
	scores := make(map[string]float64, len(rows))
	for _, row := range rows {
		key := strings.ToLower(row.Keyword)
		if _, ok := scores[key]; ok {
			continue
		}
		s := row.Score
		if s == 0 {
			s = defaultKeywordScore
		}
		scores[key] = s
	}
	return scores
}

type combo struct {
	ingredient, formula, effect, mood string
	totalRank, totalReviews           float64
	products                          int
}

func (c *combo) parts() []string {
	var out []string
	for _, p := range []string{c.ingredient, c.formula, c.effect, c.mood} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RankCombinations groups products by their leading ingredient, formula,
// effect and mood keywords and scores each group by sales rank, review
// volume and keyword trend score. Fewer than seven groups are padded from
// the category's defaults with simulated values.
func RankCombinations(products []model.Product, scores map[string]float64, category string, rng *rand.Rand) []model.Combination {
	combos := map[string]*combo{}
	var order []string
	for _, p := range products {
		formulas := p.Formulas
		if formulas == nil {
			formulas = p.Texture
		}
		moods := p.Moods
		if moods == nil {
			moods = p.Visual
		}
		c := combo{
			ingredient: firstLower(p.Ingredients),
			formula:    firstLower(formulas),
			effect:     firstLower(p.Effects),
			mood:       firstLower(moods),
		}
		unique := uniqueSorted(c.parts())
		if len(unique) < 2 {
			continue
		}
		key := strings.Join(unique, "|")
		existing, ok := combos[key]
		if !ok {
			existing = &c
			combos[key] = existing
			order = append(order, key)
		}
		rank := p.SalesRank
		if rank == 0 {
			rank = defaultSalesRank
		}
		existing.totalRank += rank
		existing.totalReviews += p.ReviewCount
		existing.products++
	}

	maxReviews := 0.0
	for _, c := range combos {
		avg := c.totalReviews / float64(c.products)
		if avg == 0 {
			avg = 1
		}
		maxReviews = math.Max(maxReviews, avg)
	}

	out := make([]model.Combination, 0, len(order)+MaxCombinations)
	for _, key := range order {
		c := combos[key]
		avgRank := c.totalRank / float64(c.products)
		avgReviews := c.totalReviews / float64(c.products)
		rankScore := math.Max(0, 100-avgRank/10)
		reviewScore := avgReviews / maxReviews * 100

		kw := c.parts()
		var sum float64
		for _, k := range kw {
			s, ok := scores[k]
			if !ok || s == 0 {
				s = defaultKeywordScore
			}
			sum += s
		}
		kwScore := float64(defaultKeywordScore)
		if len(kw) > 0 {
			kwScore = sum / float64(len(kw))
		}
		total := int(math.Round(rankScore*0.3 + reviewScore*0.3 + kwScore*0.4))

		out = append(out, model.Combination{
			Combination:  combinationName(kw),
			Ingredients:  optional(c.ingredient),
			Formulas:     optional(c.formula),
			Effects:      optional(c.effect),
			Moods:        optional(c.mood),
			Score:        total,
			AvgRank:      int(math.Round(avgRank)),
			AvgReviews:   int(math.Round(avgReviews)),
			ProductCount: c.products,
			TrendLevel:   LevelForScore(total),
			Signals: model.Signals{
				SNS:    int(math.Round(kwScore)),
				Retail: int(math.Round(rankScore)),
				Review: int(math.Round(reviewScore)),
			},
			SynergyScore: float64(c.products) / float64(len(products)) * 100,
		})
	}

	sortByScore(out)
	if len(out) > MaxCombinations {
		out = out[:MaxCombinations]
	}
	if len(out) < MaxCombinations {
		out = padCombinations(out, category, rng)
	}
	sortByScore(out)
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func padCombinations(out []model.Combination, category string, rng *rand.Rand) []model.Combination {
	defaults, ok := categoryCombos[category]
	if !ok {
		defaults = categoryCombos[types.DefaultCategory]
	}
	seen := make(map[string]struct{}, len(out))
	for _, c := range out {
		seen[strings.ToLower(c.Combination)] = struct{}{}
	}
	for _, d := range defaults {
		if len(out) >= MaxCombinations {
			break
		}
		name := d.ingredient + " + " + d.formula + " + " + d.effect
		if _, dup := seen[strings.ToLower(name)]; dup {
			continue
		}
		score := 60 + rng.IntN(30)
		out = append(out, model.Combination{
			Combination:  name,
			Ingredients:  []string{strings.ToLower(d.ingredient)},
			Formulas:     []string{strings.ToLower(d.formula)},
			Effects:      []string{strings.ToLower(d.effect)},
			Moods:        []string{strings.ToLower(d.mood)},
			Score:        score,
			AvgRank:      50 + rng.IntN(200),
			AvgReviews:   500 + rng.IntN(3000),
			ProductCount: 5 + rng.IntN(20),
			TrendLevel:   LevelForScore(score),
			Signals: model.Signals{
				SNS:    50 + rng.IntN(40),
				Retail: 50 + rng.IntN(40),
				Review: 50 + rng.IntN(40),
			},
			SynergyScore: float64(20 + rng.IntN(60)),
		})
	}
	return out
}

func combinationName(parts []string) string {
	seen := map[string]struct{}{}
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		key := strings.ToLower(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, capitalize(p))
	}
	return strings.Join(names, " + ")
}

func sortByScore(cs []model.Combination) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Score > cs[j].Score })
}

func firstLower(xs []string) string {
	if len(xs) == 0 {
		return ""
	}
	return strings.ToLower(xs[0])
}

func optional(s string) []string {
	if s == "" {
		return []string{}
	}
	return []string{s}
}

func uniqueSorted(xs []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if _, dup := seen[x]; dup {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	sort.Strings(out)
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
