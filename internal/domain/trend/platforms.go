package trend

import (
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/amore/clue/internal/domain/model"
	"github.com/amore/clue/internal/domain/types"
)

const (
	platformTopN    = 5
	minRealKeywords = 3
)

var platformOrder = map[string][]string{
	"usa":       {"Amazon", "YouTube", "Instagram"},
	"japan":     {"@cosme", "YouTube", "Instagram"},
	"singapore": {"Shopee", "YouTube", "Instagram"},
	"malaysia":  {"Shopee", "YouTube", "Instagram"},
	"indonesia": {"Shopee", "YouTube", "Instagram"},
	"china":     {"Weibo", "Xiaohongshu", "Douyin"},
}

var defaultPlatformOrder = []string{"Shopee", "YouTube", "Instagram"}

// PlatformOrder returns the platforms shown for a country, top card first.
func PlatformOrder(country string) []string {
	if order, ok := platformOrder[strings.ToLower(country)]; ok {
		return order
	}
	return defaultPlatformOrder
}

// LatestPerPlatform keeps the first stat per platform. Stats must be sorted newest first.
func LatestPerPlatform(stats []model.PlatformStat) map[string]model.PlatformStat {
	latest := make(map[string]model.PlatformStat, len(stats))
	for _, s := range stats {
		if _, ok := latest[s.Platform]; !ok {
			latest[s.Platform] = s
		}
	}
	return latest
}

// PopularPlatforms lists the country's platforms that have data, each with
// its first five keywords as stored.
func PopularPlatforms(stats []model.PlatformStat, country string) []model.PlatformKeywords {
	latest := LatestPerPlatform(stats)
	out := make([]model.PlatformKeywords, 0, len(latest))
	for _, name := range PlatformOrder(country) {
		s, ok := latest[name]
		if !ok {
			continue
		}
		kws := s.Keywords
		if len(kws) > platformTopN {
			kws = kws[:platformTopN]
		}
		values := make([]model.KeywordValue, 0, len(kws))
		for _, k := range kws {
			values = append(values, keywordValue(k, ""))
		}
		out = append(out, model.PlatformKeywords{Platform: s.Platform, Keywords: values})
	}
	return out
}

// PlatformData lists every platform of the country in display order. A
// platform with fewer than three stored keywords gets simulated keywords
// from the category pool.
func PlatformData(stats []model.PlatformStat, country, category string, rng *rand.Rand) []model.PlatformKeywords {
	latest := LatestPerPlatform(stats)
	order := PlatformOrder(country)
	out := make([]model.PlatformKeywords, 0, len(order))
	for _, name := range order {
		if s, ok := latest[name]; ok && len(s.Keywords) >= minRealKeywords {
			values := make([]model.KeywordValue, 0, len(s.Keywords))
			for _, k := range s.Keywords {
				values = append(values, keywordValue(k, "Unknown"))
			}
			out = append(out, model.PlatformKeywords{Platform: s.Platform, Keywords: values})
			continue
		}
		out = append(out, model.PlatformKeywords{Platform: name, Keywords: SimulatedPlatformKeywords(name, category, rng)})
	}
	return out
}

// TopPlatformKeywords keeps the newest stat per platform, in first-seen
// order, with its keywords sorted by value and cut to five.
func TopPlatformKeywords(stats []model.PlatformStat) []model.PlatformStat {
	seen := map[string]struct{}{}
	out := make([]model.PlatformStat, 0, len(stats))
	for _, s := range stats {
		if _, dup := seen[s.Platform]; dup {
			continue
		}
		seen[s.Platform] = struct{}{}
		kws := make([]model.PlatformKeyword, len(s.Keywords))
		copy(kws, s.Keywords)
		sort.SliceStable(kws, func(i, j int) bool { return kws[i].Value > kws[j].Value })
		if len(kws) > platformTopN {
			kws = kws[:platformTopN]
		}
		s.Keywords = kws
		out = append(out, s)
	}
	return out
}

func keywordValue(k model.PlatformKeyword, unknown string) model.KeywordValue {
	name := k.DisplayName()
	if name == "" {
		name = k.KoreanName
	}
	if name == "" {
		name = unknown
	}
	korean := k.KoreanName
	if korean == "" {
		korean = k.DisplayName()
	}
	if korean == "" {
		korean = unknown
	}
	kind := k.Type
	if kind == "" {
		kind = types.KeywordIngredient
	}
	return model.KeywordValue{Name: name, KoreanName: korean, Value: k.Value, Change: k.Change, Type: kind}
}

type keywordPool struct {
	ingredients, formulas, effects []string
}

var categoryPools = map[string]keywordPool{
	"Skincare": {
		ingredients: []string{"Retinol", "Niacinamide", "Hyaluronic Acid", "Vitamin C", "Peptides"},
		formulas:    []string{"Serum", "Moisturizer", "Toner", "Essence", "Cream"},
		effects:     []string{"Anti-aging", "Brightening", "Hydration", "Pore Care", "Soothing"},
	},
	"Cleansing": {
		ingredients: []string{"Salicylic Acid", "Tea Tree", "Centella", "Green Tea", "Charcoal"},
		formulas:    []string{"Foam Cleanser", "Oil Cleanser", "Gel Cleanser", "Balm Cleanser", "Micellar Water"},
		effects:     []string{"Deep Cleansing", "Pore Cleansing", "Makeup Removal", "Oil Control", "Gentle"},
	},
	"Sun Care": {
		ingredients: []string{"Zinc Oxide", "Titanium Dioxide", "Centella", "Aloe", "Niacinamide"},
		formulas:    []string{"Sunscreen", "Sun Stick", "Sun Cushion", "Sun Spray", "Sun Gel"},
		effects:     []string{"UV Protection", "Non-greasy", "Moisturizing", "Tone-up", "Water Resistant"},
	},
	"Makeup": {
		ingredients: []string{"Hyaluronic Acid", "Collagen", "Vitamin E", "Centella", "Niacinamide"},
		formulas:    []string{"Cushion", "Foundation", "Concealer", "Primer", "Setting Spray"},
		effects:     []string{"Glow", "Matte", "Long-lasting", "Coverage", "Hydrating"},
	},
}

// weights per keyword kind: ingredient, formula, effect.
var platformWeights = map[string][3]float64{
	"Amazon":    {1.2, 1.0, 0.8},
	"YouTube":   {1.0, 0.9, 1.3},
	"Instagram": {0.9, 1.1, 1.2},
}

// SimulatedPlatformKeywords draws values for the category keyword pool,
// weighted by the platform's affinity per keyword kind, and returns the top five.
func SimulatedPlatformKeywords(platform, category string, rng *rand.Rand) []model.KeywordValue {
	pool, ok := categoryPools[category]
	if !ok {
		pool = categoryPools[types.DefaultCategory]
	}
	w, ok := platformWeights[platform]
	if !ok {
		w = [3]float64{1, 1, 1}
	}
	groups := []struct {
		names  []string
		kind   string
		weight float64
	}{
		{pool.ingredients, "ingredient", w[0]},
		{pool.formulas, "formula", w[1]},
		{pool.effects, "effect", w[2]},
	}
	var out []model.KeywordValue
	for _, g := range groups {
		for _, name := range g.names {
			out = append(out, model.KeywordValue{
				Name:       name,
				KoreanName: name,
				Value:      math.Floor((70 + rng.Float64()*30) * g.weight),
				Change:     float64(rng.IntN(15) - 3),
				Type:       g.kind,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out[:platformTopN]
}
