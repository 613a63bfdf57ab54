package catalog

// IngredientInfo is the static description shown in the ingredient popup.
type IngredientInfo struct {
	Description string   `json:"description"`
	Effects     []string `json:"effects"`
	SkinTypes   []string `json:"skinTypes"`
	Usage       string   `json:"usage"`
}

var ingredients = map[string]IngredientInfo{
	"Hyaluronic Acid": {"피부 수분을 1000배 끌어당기는 강력한 보습 성분", []string{"보습", "수분 유지", "탄력"}, []string{"모든 피부"}, "토너 후 세럼 단계에서 사용"},
	"Niacinamide":     {"멜라닌 생성을 억제하고 피부 톤을 균일하게", []string{"미백", "모공 케어", "피지 조절"}, []string{"지성", "복합성"}, "아침저녁 세럼으로 사용"},
	"Retinol":         {"검증된 안티에이징 성분의 대표주자", []string{"주름 개선", "탄력", "세포 재생"}, []string{"노화 피부"}, "저녁에만 사용, 자외선 차단 필수"},
	"Centella":        {"피부 진정과 재생에 효과적인 전통 성분", []string{"진정", "재생", "장벽 강화"}, []string{"민감성", "트러블"}, "자극받은 피부에 집중 사용"},
	"Vitamin C":       {"강력한 항산화와 브라이트닝 효과", []string{"미백", "항산화", "콜라겐 생성"}, []string{"칙칙한 피부"}, "아침 세럼으로 사용"},
}

// IngredientDetail looks an ingredient up by exact name and falls back to a generic entry.
func IngredientDetail(name string) IngredientInfo {
	if info, ok := ingredients[name]; ok {
		return info
	}
	return IngredientInfo{
		Description: name + "은(는) 스킨케어에서 중요한 역할을 하는 성분입니다.",
		Effects:     []string{"피부 개선"},
		SkinTypes:   []string{"모든 피부"},
		Usage:       "제품 설명서에 따라 사용",
	}
}
