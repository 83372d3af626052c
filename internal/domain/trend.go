package domain

import (
	"strings"
	"time"
)

// Category classifies a trend.
type Category string

const (
	CategorySkincare       Category = "skincare"
	CategoryMakeup         Category = "makeup"
	CategoryHair           Category = "hair"
	CategoryFragrance      Category = "fragrance"
	CategoryTools          Category = "tools"
	CategoryIngredients    Category = "ingredients"
	CategoryPackaging      Category = "packaging"
	CategorySustainability Category = "sustainability"
	CategoryTechnology     Category = "technology"
	CategoryGeneral        Category = "general"
)

var categories = map[Category]struct{}{
	CategorySkincare:       {},
	CategoryMakeup:         {},
	CategoryHair:           {},
	CategoryFragrance:      {},
	CategoryTools:          {},
	CategoryIngredients:    {},
	CategoryPackaging:      {},
	CategorySustainability: {},
	CategoryTechnology:     {},
	CategoryGeneral:        {},
}

// ParseCategory normalizes free text into a Category, falling back to general.
func ParseCategory(value string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(value)))
	switch c {
	case "skin_care", "skin care":
		return CategorySkincare
	}
	if _, ok := categories[c]; ok {
		return c
	}
	return CategoryGeneral
}

// BusinessImpact grades how much a trend matters commercially.
type BusinessImpact string

const (
	ImpactLow      BusinessImpact = "low"
	ImpactMedium   BusinessImpact = "medium"
	ImpactHigh     BusinessImpact = "high"
	ImpactCritical BusinessImpact = "critical"
)

// ParseBusinessImpact normalizes free text into a BusinessImpact, falling back to low.
func ParseBusinessImpact(value string) BusinessImpact {
	switch i := BusinessImpact(strings.ToLower(strings.TrimSpace(value))); i {
	case ImpactLow, ImpactMedium, ImpactHigh, ImpactCritical:
		return i
	default:
		return ImpactLow
	}
}

// Trend is a named pattern identified by the extraction step.
type Trend struct {
	Name           string         `json:"trend_name"`
	Description    string         `json:"description"`
	Confidence     float64        `json:"confidence"`
	Category       Category       `json:"category"`
	BusinessImpact BusinessImpact `json:"business_impact"`
	Sources        []string       `json:"sources"`
	Keywords       []string       `json:"keywords"`
}

// TrendAnalysis is the extractor output for one run.
type TrendAnalysis struct {
	Trends             []Trend   `json:"trends"`
	AnalysisDate       time.Time `json:"analysis_date"`
	TotalPostsAnalyzed int       `json:"total_posts_analyzed"`
	ConfidenceScore    float64   `json:"confidence_score"`
}

// ClampConfidence keeps a score inside [0,1].
func ClampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
