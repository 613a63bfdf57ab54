// Package types contains the small vocabulary shared by the trend and catalog packages.
package types

// Trend levels as stored in processed_keywords and shown on the dashboard.
const (
	LevelEarly      = "Early"
	LevelGrowing    = "Growing"
	LevelActionable = "Actionable"
	LevelAll        = "All"
)

// Leaderboard item types as sent by the dashboard.
const (
	ItemIngredients = "Ingredients"
	ItemTexture     = "Texture"
	ItemEffects     = "Effects"
	ItemVisualMood  = "Visual/Mood"
)

// Keyword types stored in processed_keywords.keywordType.
const (
	KeywordIngredient = "ingredient"
	KeywordFormulas   = "formulas"
	KeywordEffects    = "effects"
	KeywordMood       = "mood"
)

// Sentiments stored on reviews and review sentences.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
)

// Query defaults shared by the read routes.
const (
	DefaultCountry  = "usa"
	DefaultCategory = "Skincare"
	CategoryAll     = "all"
)
