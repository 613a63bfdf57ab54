package catalog

import (
	"fmt"
	"strconv"
)

// FallbackBrand is the part of a brand summary the fallback narrative reads.
type FallbackBrand struct {
	Brand    string  `json:"brand"`
	NewCount float64 `json:"newCount"`
}

// FallbackStat is the part of a trend stat the fallback narrative reads.
type FallbackStat struct {
	Name string  `json:"name"`
	New  float64 `json:"new"`
}

// KBeautyRequest is the body of a K-beauty trend analysis request.
type KBeautyRequest struct {
	Category       string          `json:"category"`
	BrandSummaries []FallbackBrand `json:"brandSummaries"`
	Trends         struct {
		Ingredients []FallbackStat `json:"ingredients"`
		Concerns    []FallbackStat `json:"concerns"`
	} `json:"trends"`
}

// KBeautyAnalysis is the narrative returned when the analysis model is unreachable.
type KBeautyAnalysis struct {
	Success          bool     `json:"success"`
	Category         string   `json:"category"`
	BrandStrategies  []string `json:"brandStrategies"`
	IngredientTrends []string `json:"ingredientTrends"`
	FunctionTrends   []string `json:"functionTrends"`
	ComparisonPoints []string `json:"comparisonPoints"`
	MarketOutlook    string   `json:"marketOutlook"`
	Fallback         bool     `json:"fallback"`
}

// KBeautyFallback builds a canned narrative from the request's own figures.
func KBeautyFallback(req KBeautyRequest) KBeautyAnalysis {
	out := KBeautyAnalysis{
		Success:          true,
		Category:         req.Category,
		BrandStrategies:  []string{},
		IngredientTrends: []string{},
		FunctionTrends:   []string{},
		ComparisonPoints: []string{
			"각 브랜드별 차별화된 성분 전략 보유",
			"기능성 중심의 제품 라인업 강화",
			"글로벌 시장 타겟 제품 확대",
		},
		MarketOutlook: "K-Beauty 시장은 혁신적인 성분과 기능성 제품이 주도하고 있습니다. (LLM 서버 연결 대기 중)",
		Fallback:      true,
	}
	for _, b := range head(req.BrandSummaries, 4) {
		out.BrandStrategies = append(out.BrandStrategies, fmt.Sprintf("%s: %s개 신제품 출시, 글로벌 시장 확대 전략", b.Brand, num(b.NewCount)))
	}
	for _, s := range head(req.Trends.Ingredients, 3) {
		out.IngredientTrends = append(out.IngredientTrends, fmt.Sprintf("%s: 신제품 %s개에서 사용, K-Beauty 핵심 성분", s.Name, num(s.New)))
	}
	for _, s := range head(req.Trends.Concerns, 3) {
		out.FunctionTrends = append(out.FunctionTrends, fmt.Sprintf("%s: %s개 제품이 타겟, 소비자 관심 증가", s.Name, num(s.New)))
	}
	return out
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
