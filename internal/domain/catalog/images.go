package catalog

import (
	"strings"

	"github.com/amore/clue/internal/domain/model"
)

// DefaultImage is used when neither the product, its brand nor the keyword suggests one.
const DefaultImage = "https://m.media-amazon.com/images/I/61S7BrCBj7L._SL1000_.jpg"

type imageRule struct {
	match string
	url   string
}

var brandImages = []imageRule{
	{"cerave", "https://m.media-amazon.com/images/I/61S7BrCBj7L._SL1000_.jpg"},
	{"la roche-posay", "https://m.media-amazon.com/images/I/61bZ8F09sWL._SL1500_.jpg"},
	{"neutrogena", "https://m.media-amazon.com/images/I/71RMIHB4DnL._SL1500_.jpg"},
	{"olay", "https://m.media-amazon.com/images/I/71r0h4SBJHL._SL1500_.jpg"},
	{"the ordinary", "https://m.media-amazon.com/images/I/51EaHYCsqiL._SL1500_.jpg"},
	{"paula's choice", "https://m.media-amazon.com/images/I/61wOXQKsjGL._SL1500_.jpg"},
	{"cosrx", "https://m.media-amazon.com/images/I/61sWWCVUWqL._SL1500_.jpg"},
	{"innisfree", "https://m.media-amazon.com/images/I/61e+M1GjZOL._SL1500_.jpg"},
	{"beauty of joseon", "https://m.media-amazon.com/images/I/61jx9r8E-qL._SL1500_.jpg"},
	{"anua", "https://m.media-amazon.com/images/I/61Wbcv-SSAL._SL1500_.jpg"},
	{"tirtir", "https://m.media-amazon.com/images/I/61SjIlYqOxL._SL1500_.jpg"},
	{"skin1004", "https://m.media-amazon.com/images/I/61YXQGMPDVL._SL1500_.jpg"},
	{"isntree", "https://m.media-amazon.com/images/I/61fYqBQQPeL._SL1500_.jpg"},
	{"medicube", "https://m.media-amazon.com/images/I/61GRkqpuBZL._SL1500_.jpg"},
	{"heimish", "https://m.media-amazon.com/images/I/61z7L0kkzJL._SL1500_.jpg"},
	{"numbuzin", "https://m.media-amazon.com/images/I/71qnLVf-UPL._SL1500_.jpg"},
	{"torriden", "https://m.media-amazon.com/images/I/51BxkFkB26L._SL1500_.jpg"},
	{"some by mi", "https://m.media-amazon.com/images/I/71dXSdxJmRL._SL1500_.jpg"},
	{"missha", "https://m.media-amazon.com/images/I/61nLIHQhWYL._SL1500_.jpg"},
	{"laneige", "https://m.media-amazon.com/images/I/61Q08AYWJAL._SL1500_.jpg"},
	{"dr. jart+", "https://m.media-amazon.com/images/I/61Ru8kQBwNL._SL1500_.jpg"},
	{"sulwhasoo", "https://m.media-amazon.com/images/I/61j8Km4qFLL._SL1500_.jpg"},
	{"amorepacific", "https://m.media-amazon.com/images/I/61Ts7BNVbeL._SL1500_.jpg"},
	{"iunik", "https://m.media-amazon.com/images/I/61kHQyMiXPL._SL1500_.jpg"},
	{"purito", "https://m.media-amazon.com/images/I/61NLcVhXTfL._SL1500_.jpg"},
	{"klairs", "https://m.media-amazon.com/images/I/61pCpq8AAFL._SL1500_.jpg"},
	{"round lab", "https://m.media-amazon.com/images/I/61H4EQKRJXL._SL1500_.jpg"},
}

var keywordImages = []imageRule{
	{"retinol", "https://m.media-amazon.com/images/I/51EaHYCsqiL._SL1500_.jpg"},
	{"niacinamide", "https://m.media-amazon.com/images/I/61fYqBQQPeL._SL1500_.jpg"},
	{"hyaluronic", "https://m.media-amazon.com/images/I/51BxkFkB26L._SL1500_.jpg"},
	{"vitamin c", "https://m.media-amazon.com/images/I/61jx9r8E-qL._SL1500_.jpg"},
	{"sunscreen", "https://m.media-amazon.com/images/I/61bZ8F09sWL._SL1500_.jpg"},
	{"moisturizer", "https://m.media-amazon.com/images/I/61S7BrCBj7L._SL1000_.jpg"},
	{"serum", "https://m.media-amazon.com/images/I/61Wbcv-SSAL._SL1500_.jpg"},
	{"cleanser", "https://m.media-amazon.com/images/I/61z7L0kkzJL._SL1500_.jpg"},
	{"toner", "https://m.media-amazon.com/images/I/61YXQGMPDVL._SL1500_.jpg"},
	{"cream", "https://m.media-amazon.com/images/I/71r0h4SBJHL._SL1500_.jpg"},
	{"essence", "https://m.media-amazon.com/images/I/61sWWCVUWqL._SL1500_.jpg"},
	{"snail", "https://m.media-amazon.com/images/I/61sWWCVUWqL._SL1500_.jpg"},
	{"cica", "https://m.media-amazon.com/images/I/61Ru8kQBwNL._SL1500_.jpg"},
	{"centella", "https://m.media-amazon.com/images/I/61YXQGMPDVL._SL1500_.jpg"},
}

// ResolveImage picks a product image: the stored URL unless it is a
// placeholder, then the brand's image, then an image for a keyword found in
// the product name or search keyword, then DefaultImage.
func ResolveImage(p model.Product, keyword string) string {
	for _, u := range []string{p.ImageURL, p.ImageURLAlt} {
		if u != "" && !strings.Contains(u, "placeholder") {
			return u
		}
	}
	brand := strings.ToLower(p.Brand)
	for _, r := range brandImages {
		if strings.Contains(brand, r.match) {
			return r.url
		}
	}
	name := strings.ToLower(p.DisplayName())
	kw := strings.ToLower(keyword)
	for _, r := range keywordImages {
		if strings.Contains(name, r.match) || (kw != "" && strings.Contains(kw, r.match)) {
			return r.url
		}
	}
	return DefaultImage
}

// ProductCards maps keyword search results to cards and pads the list to
// two entries with simulated products.
func ProductCards(products []model.Product, keyword string) []model.ProductCard {
	cards := make([]model.ProductCard, 0, max(len(products), 2))
	for _, p := range products {
		name := p.DisplayName()
		if name == "" {
			name = "Unknown Product"
		}
		rating := p.AvgRating
		if rating == 0 {
			rating = p.Rating
		}
		if rating == 0 {
			rating = 4.5
		}
		reviews := p.ReviewCount
		if reviews == 0 {
			reviews = 100
		}
		score := p.Score
		if score == 0 {
			score = 80
		}
		id := ""
		if !p.ID.IsZero() {
			id = p.ID.Hex()
		}
		cards = append(cards, model.ProductCard{
			ID:          id,
			Name:        name,
			Brand:       p.Brand,
			Category:    p.Category,
			ImageURL:    ResolveImage(p, keyword),
			ProductURL:  p.ProductURL,
			Rating:      rating,
			ReviewCount: reviews,
			Score:       score,
			SalesRank:   p.SalesRank,
			Keywords:    p.Keywords,
		})
	}
	simulated := []model.ProductCard{
		{Name: keyword + " Advanced Treatment", Brand: "COSRX", ImageURL: "https://m.media-amazon.com/images/I/61sWWCVUWqL._SL1500_.jpg",
			Rating: 4.6, ReviewCount: 3500, Score: 85, Simulated: true},
		{Name: keyword + " Intensive Care Serum", Brand: "Beauty of Joseon", ImageURL: "https://m.media-amazon.com/images/I/61jx9r8E-qL._SL1500_.jpg",
			Rating: 4.7, ReviewCount: 2800, Score: 82, Simulated: true},
	}
	for i := 0; len(cards) < 2; i++ {
		cards = append(cards, simulated[i])
	}
	return cards
}
