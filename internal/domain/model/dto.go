package model

// LeaderboardItem is one ranked keyword on the dashboard leaderboard.
type LeaderboardItem struct {
	Rank        int                 `json:"rank"`
	Keyword     string              `json:"keyword"`
	KoreanName  string              `json:"koreanName,omitempty"`
	Description string              `json:"description"`
	Score       int                 `json:"score"`
	Change      int                 `json:"change"`
	TrendLevel  string              `json:"trendLevel,omitempty"`
	Metadata    LeaderboardMetadata `json:"metadata"`
}

// LeaderboardMetadata carries the counts behind a leaderboard score.
type LeaderboardMetadata struct {
	ProductCount int      `json:"productCount,omitempty"`
	TrendCount   int      `json:"trendCount,omitempty"`
	Count        int      `json:"count,omitempty"`
	AvgRank      int      `json:"avgRank,omitempty"`
	Effects      []string `json:"effects,omitempty"`
}

// Signals are the three evidence scores of a combination.
type Signals struct {
	SNS    int `json:"SNS"`
	Retail int `json:"Retail"`
	Review int `json:"Review"`
}

// Combination is a ranked keyword combination ("꿀조합").
type Combination struct {
	Rank         int      `json:"rank"`
	Combination  string   `json:"combination"`
	Ingredients  []string `json:"ingredients"`
	Formulas     []string `json:"formulas"`
	Effects      []string `json:"effects"`
	Moods        []string `json:"moods"`
	Score        int      `json:"score"`
	AvgRank      int      `json:"avgRank"`
	AvgReviews   int      `json:"avgReviews"`
	ProductCount int      `json:"productCount"`
	TrendLevel   string   `json:"trendLevel"`
	Signals      Signals  `json:"signals"`
	SynergyScore float64  `json:"synergyScore"`
}

// KeywordValue is a keyword as displayed on a platform card.
type KeywordValue struct {
	Name       string  `json:"name"`
	KoreanName string  `json:"koreanName"`
	Value      float64 `json:"value"`
	Change     float64 `json:"change"`
	Type       string  `json:"type"`
}

// PlatformKeywords is the keyword list of one platform card.
type PlatformKeywords struct {
	Platform string         `json:"platform"`
	Keywords []KeywordValue `json:"keywords"`
}

// WeekPoint is one week of trend evidence.
type WeekPoint struct {
	Week   string `json:"week"`
	Review int    `json:"Review"`
	SNS    int    `json:"SNS"`
	Retail int    `json:"Retail"`
}

// PLCPoint is one month of a product life cycle projection.
type PLCPoint struct {
	Month string `json:"month"`
	Value int    `json:"value"`
	Phase string `json:"phase"`
}

// NamedCount is a labelled bar value.
type NamedCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ReviewTypeCount is one bar of the review type chart.
type ReviewTypeCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
	Type    string `json:"type"`
}

// ReviewCard is a review sentence as shown in the review popup.
type ReviewCard struct {
	Keyword   string  `json:"keyword"`
	Sentiment string  `json:"sentiment"`
	Content   string  `json:"content"`
	ContentKr string  `json:"contentKr,omitempty"`
	Product   string  `json:"product"`
	Brand     string  `json:"brand"`
	Rating    float64 `json:"rating"`
	PostedAt  string  `json:"postedAt"`
	Source    string  `json:"source"`
}

// ProductCard is a product as shown next to a keyword.
type ProductCard struct {
	ID          string   `json:"_id,omitempty"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category,omitempty"`
	ImageURL    string   `json:"imageUrl"`
	ProductURL  string   `json:"productUrl,omitempty"`
	Rating      float64  `json:"rating"`
	ReviewCount float64  `json:"reviewCount"`
	Score       float64  `json:"score"`
	SalesRank   float64  `json:"salesRank,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Simulated   bool     `json:"simulated,omitempty"`
}
