// Package catalog normalizes the K-beauty brand catalogs and builds the
// product-facing views of the dashboard.
package catalog

import (
	"strings"
)

// Brand pairs a K-beauty brand with the collection holding its catalog.
type Brand struct {
	Name       string
	Collection string
}

// Brands lists the tracked brand catalogs in display order.
var Brands = []Brand{
	{Name: "TIRTIR", Collection: "raw_tirtir_products"},
	{Name: "Medicube", Collection: "raw_medicube_products"},
	{Name: "Beauty of Joseon", Collection: "raw_beautyofjoseon_products"},
	{Name: "Laneige", Collection: "raw_laneige_products"},
	{Name: "COSRX", Collection: "raw_cosrx_products"},
	{Name: "SKIN1004", Collection: "raw_skin1004_products"},
	{Name: "BIODANCE", Collection: "raw_biodance_products"},
}

var concernTerms = map[string][]string{
	"sensitivity": {"sensitive", "sensitivity", "redness", "irritation", "calming", "soothing"},
	"dryness":     {"dryness", "dry", "hydrating", "hydration", "moisture", "moisturizing"},
	"aging":       {"anti-aging", "aging", "wrinkle", "fine lines", "firming", "elasticity"},
	"acne":        {"acne", "blemish", "breakout", "pimple", "trouble"},
	"pores":       {"pore", "pores", "oily", "sebum", "blackhead"},
	"dullness":    {"dullness", "dull", "brightening", "radiance", "glow", "tone"},
	"dark_spots":  {"dark spots", "hyperpigmentation", "pigmentation", "spots", "melasma"},
}

// ConcernTerms expands a skin concern into the terms searched for it.
// Unknown concerns search for themselves.
func ConcernTerms(concern string) []string {
	key := strings.ToLower(strings.TrimSpace(concern))
	if terms, ok := concernTerms[key]; ok {
		out := make([]string, len(terms))
		copy(out, terms)
		return out
	}
	return []string{key}
}
