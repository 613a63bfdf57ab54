package catalog

import (
	"sort"
	"strings"
)

const (
	summaryNewProducts  = 10
	summaryBestSellers  = 5
	topStats            = 10
	sampleNewProducts   = 100
	sampleBestSellerCap = 50
)

// BrandProducts is the normalized catalog of one brand.
type BrandProducts struct {
	Brand    string
	Products []Product
}

// ProductBrief is the product excerpt sent to the trend analysis model.
type ProductBrief struct {
	Name           string   `json:"name"`
	KeyIngredients []string `json:"keyIngredients"`
	Concerns       []string `json:"concerns"`
	Benefits       []string `json:"benefits,omitempty"`
	Description    string   `json:"description,omitempty"`
}

// BrandSummary counts a brand's new and best-selling products.
type BrandSummary struct {
	Brand       string         `json:"brand"`
	NewProducts []ProductBrief `json:"newProducts"`
	BestSellers []ProductBrief `json:"bestSellers"`
	NewCount    int            `json:"newCount"`
	BestCount   int            `json:"bestCount"`
}

// Stat counts how often a term appears in new and best-selling products.
type Stat struct {
	Name  string `json:"name"`
	New   int    `json:"new"`
	Best  int    `json:"best"`
	Total int    `json:"total"`
}

// Summary holds catalog-wide counts.
type Summary struct {
	TotalProducts int `json:"totalProducts"`
	NewProducts   int `json:"newProducts"`
	BestSellers   int `json:"bestSellers"`
}

// TrendStats groups the top ingredient, concern and benefit stats.
type TrendStats struct {
	Ingredients []Stat `json:"ingredients"`
	Concerns    []Stat `json:"concerns"`
	Benefits    []Stat `json:"benefits"`
}

// TrendsReport is the aggregate the K-beauty trend view and its AI analysis consume.
type TrendsReport struct {
	Category          string         `json:"category"`
	Summary           Summary        `json:"summary"`
	BrandSummaries    []BrandSummary `json:"brandSummaries"`
	Trends            TrendStats     `json:"trends"`
	SampleNewProducts []Product      `json:"sampleNewProducts"`
	SampleBestSellers []Product      `json:"sampleBestSellers"`
}

// TrendsData summarizes the brand catalogs. Brand summaries cover every
// brand; the remaining figures cover products whose category contains
// category, case-insensitively, or all products when category is empty.
func TrendsData(brands []BrandProducts, category string) TrendsReport {
	summaries := make([]BrandSummary, 0, len(brands))
	var all []Product
	for _, b := range brands {
		newP, best := split(b.Products)
		s := BrandSummary{
			Brand:       b.Brand,
			NewProducts: make([]ProductBrief, 0, min(len(newP), summaryNewProducts)),
			BestSellers: make([]ProductBrief, 0, min(len(best), summaryBestSellers)),
			NewCount:    len(newP),
			BestCount:   len(best),
		}
		for _, p := range head(newP, summaryNewProducts) {
			s.NewProducts = append(s.NewProducts, ProductBrief{
				Name: p.Name, KeyIngredients: p.KeyIngredients, Concerns: p.Concerns,
				Benefits: p.Benefits, Description: p.Description,
			})
		}
		for _, p := range head(best, summaryBestSellers) {
			s.BestSellers = append(s.BestSellers, ProductBrief{Name: p.Name, KeyIngredients: p.KeyIngredients, Concerns: p.Concerns})
		}
		summaries = append(summaries, s)
		all = append(all, b.Products...)
	}

	filtered := all
	if category != "" {
		needle := strings.ToLower(category)
		filtered = make([]Product, 0, len(all))
		for _, p := range all {
			if p.Category != "" && strings.Contains(strings.ToLower(p.Category), needle) {
				filtered = append(filtered, p)
			}
		}
	}
	newP, best := split(filtered)

	ingredients := newTally()
	concerns := newTally()
	benefits := newTally()
	for _, p := range newP {
		ingredients.add(p.KeyIngredients, true)
		concerns.add(p.Concerns, true)
		benefits.add(p.Benefits, true)
	}
	for _, p := range best {
		ingredients.add(p.KeyIngredients, false)
	}

	label := category
	if label == "" {
		label = "All"
	}
	return TrendsReport{
		Category: label,
		Summary: Summary{
			TotalProducts: len(filtered),
			NewProducts:   len(newP),
			BestSellers:   len(best),
		},
		BrandSummaries: summaries,
		Trends: TrendStats{
			Ingredients: ingredients.top(topStats),
			Concerns:    concerns.top(topStats),
			Benefits:    benefits.top(topStats),
		},
		SampleNewProducts: head(newP, sampleNewProducts),
		SampleBestSellers: head(best, sampleBestSellerCap),
	}
}

func split(products []Product) (newP, best []Product) {
	newP, best = []Product{}, []Product{}
	for _, p := range products {
		if p.IsNew {
			newP = append(newP, p)
		}
		if p.IsBestSeller {
			best = append(best, p)
		}
	}
	return newP, best
}

func head[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}

type tally struct {
	stats map[string]*Stat
	order []string
}

func newTally() *tally { return &tally{stats: map[string]*Stat{}} }

func (t *tally) add(terms []string, isNew bool) {
	for _, term := range terms {
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		s, ok := t.stats[key]
		if !ok {
			s = &Stat{Name: key}
			t.stats[key] = s
			t.order = append(t.order, key)
		}
		if isNew {
			s.New++
		} else {
			s.Best++
		}
	}
}

func (t *tally) top(n int) []Stat {
	out := make([]Stat, 0, len(t.order))
	for _, k := range t.order {
		s := *t.stats[k]
		s.Total = s.New + s.Best
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return head(out, n)
}
