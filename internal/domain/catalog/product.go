package catalog

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a brand catalog product with the per-brand field names unified.
type Product struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Brand           string   `json:"brand"`
	Price           any      `json:"price"`
	Category        string   `json:"category"`
	ImageURL        string   `json:"imageUrl"`
	ProductURL      string   `json:"productUrl"`
	Description     string   `json:"description"`
	KeyIngredients  []string `json:"keyIngredients"`
	FullIngredients any      `json:"fullIngredients"`
	Concerns        []string `json:"concerns"`
	Benefits        []string `json:"benefits"`
	Formulation     any      `json:"formulation"`
	SkinType        any      `json:"skinType"`
	MarketingPoints any      `json:"marketingPoints"`
	Tags            any      `json:"tags"`
	IsNew           bool     `json:"isNew"`
	IsBestSeller    bool     `json:"isBestSeller"`
	BestSellingRank any      `json:"bestSellingRank"`
	CreatedAt       any      `json:"createdAt"`
}

// NormalizeProduct maps a raw brand catalog document onto Product.
func NormalizeProduct(doc bson.M, brand string) Product {
	return Product{
		ID:              productID(doc),
		Name:            firstString(doc, "Unknown Product", "product_name", "name"),
		Brand:           brand,
		Price:           firstValue(doc, "", "price"),
		Category:        productCategory(doc),
		ImageURL:        imageURL(doc),
		ProductURL:      firstString(doc, "", "product_url"),
		Description:     firstString(doc, "", "description", "short_description", "meta_description"),
		KeyIngredients:  firstList(doc, "key_ingredients", "featured_ingredients"),
		FullIngredients: firstValue(doc, "", "full_ingredients"),
		Concerns:        firstList(doc, "concerns", "skin_concerns"),
		Benefits:        firstList(doc, "key_benefits", "product_benefits"),
		Formulation:     firstValue(doc, "", "formulation"),
		SkinType:        firstValue(doc, []any{}, "skin_type", "skin_types"),
		MarketingPoints: firstValue(doc, []any{}, "marketing_points", "marketing_highlights", "marketing_headlines"),
		Tags:            firstValue(doc, []any{}, "raw_tags"),
		IsNew:           doc["is_new"] == true,
		IsBestSeller:    doc["is_best_selling"] == true,
		BestSellingRank: firstValue(doc, nil, "best_selling_rank"),
		CreatedAt:       createdAt(doc),
	}
}

func productID(doc bson.M) string {
	switch id := doc["_id"].(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		if id != "" {
			return id
		}
	case nil:
	default:
		return fmt.Sprint(id)
	}
	s, _ := doc["product_id"].(string)
	return s
}

func productCategory(doc bson.M) string {
	if v, ok := doc["category"]; ok && truthy(v) {
		if list := stringList(v); len(list) > 0 {
			return list[0]
		}
	}
	for _, key := range []string{"categories", "product_lines"} {
		if list := stringList(doc[key]); len(list) > 0 {
			return list[0]
		}
	}
	return "Skincare"
}

func imageURL(doc bson.M) string {
	if s, ok := doc["image_url"].(string); ok && s != "" {
		return s
	}
	if list := stringList(doc["all_images"]); len(list) > 0 {
		return list[0]
	}
	return ""
}

func createdAt(doc bson.M) any {
	switch v := doc["created_at"].(type) {
	case primitive.DateTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	case nil:
		return nil
	default:
		if !truthy(v) {
			return nil
		}
		return v
	}
}

// firstString returns the first non-empty string value among keys.
func firstString(doc bson.M, fallback string, keys ...string) string {
	for _, k := range keys {
		if s, ok := doc[k].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// firstValue returns the first truthy value among keys.
func firstValue(doc bson.M, fallback any, keys ...string) any {
	for _, k := range keys {
		if v, ok := doc[k]; ok && truthy(v) {
			return v
		}
	}
	return fallback
}

// firstList takes the first present key, wraps a scalar into a list and
// keeps only non-empty strings.
func firstList(doc bson.M, keys ...string) []string {
	for _, k := range keys {
		if v, ok := doc[k]; ok && truthy(v) {
			return stringList(v)
		}
	}
	return []string{}
}

func stringList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case string:
		if t != "" {
			out = append(out, t)
		}
	case primitive.A:
		for _, x := range t {
			if s, ok := x.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, x := range t {
			if s, ok := x.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range t {
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case int32:
		return t != 0
	case int64:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}

// DedupeNew keeps the first product per (name, brand) and drops products not flagged new.
func DedupeNew(products []Product) []Product {
	type key struct{ name, brand string }
	seen := make(map[key]struct{}, len(products))
	out := []Product{}
	for _, p := range products {
		k := key{p.Name, p.Brand}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if p.IsNew {
			out = append(out, p)
		}
	}
	return out
}
