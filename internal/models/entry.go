package models

import (
	"strings"
	"time"
)

// Category is the declared type of a health entry.
type Category string

const (
	CategoryBreakfast Category = "breakfast"
	CategoryLunch     Category = "lunch"
	CategoryDinner    Category = "dinner"
	CategorySnack     Category = "snack"
	CategoryDrinks    Category = "drinks"

	CategorySymptoms Category = "symptoms"
	CategoryGas      Category = "gas"
	CategoryBowel    Category = "bowel"
	CategoryMood     Category = "mood"
	CategoryEnergy   Category = "energy"

	CategoryOther Category = "other"
)

// ParseCategory normalizes a raw category tag. Unknown tags are kept as-is.
func ParseCategory(raw string) Category {
	return Category(strings.ToLower(strings.TrimSpace(raw)))
}

// IsMealType reports whether c names a meal slot.
func (c Category) IsMealType() bool {
	switch c {
	case CategoryBreakfast, CategoryLunch, CategoryDinner, CategorySnack, CategoryDrinks:
		return true
	}
	return false
}

// RiskLevel is the coarse severity attached to an analysed entry.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is one of the three known levels.
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// HealthEntry is a classified, user-submitted observation. Entries are append-only.
type HealthEntry struct {
	ID               string     `json:"id" db:"id"`
	UserID           string     `json:"userId" db:"user_id"`
	Category         Category   `json:"category" db:"category"`
	Description      string     `json:"description" db:"description"`
	Timestamp        time.Time  `json:"timestamp" db:"timestamp"`
	AIFlags          StringList `json:"aiFlags" db:"ai_flags"`
	RiskLevel        RiskLevel  `json:"riskLevel" db:"risk_level"`
	ConfidenceScore  float64    `json:"confidenceScore" db:"confidence_score"`
	Insights         StringList `json:"insights" db:"insights"`
	AnalysisFallback bool       `json:"analysisFallback" db:"analysis_fallback"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
}

// CreateEntryInput is the body of POST /api/entries.
type CreateEntryInput struct {
	UserID      string     `json:"userId"`
	Category    string     `json:"category" binding:"required,notblank"`
	Description string     `json:"description" binding:"required,notblank"`
	Timestamp   *time.Time `json:"timestamp" binding:"required"`
}
