package analysis

import (
	"math"
	"strings"

	"stomatrack/internal/models"
)

const maxListItems = 10

const (
	defaultFoodConfidence    = 0.8
	defaultSymptomConfidence = 0.7
	defaultOtherConfidence   = 0.5
)

// Raw provider responses. Every field is optional; the normalizers below
// substitute defaults for anything missing.

type foodResponse struct {
	Flags      []string    `json:"flags"`
	RiskLevel  *string     `json:"riskLevel"`
	Confidence looseNumber `json:"confidence"`
	Insights   []string    `json:"insights"`
}

type symptomResponse struct {
	Flags      []string    `json:"flags"`
	Severity   *string     `json:"severity"`
	Confidence looseNumber `json:"confidence"`
	Insights   []string    `json:"insights"`

	LikelyTriggers  []string `json:"likelyTriggers"`
	Recommendations []string `json:"recommendations"`
	SeekCare        bool     `json:"seekCare"`
}

type ingredientsResponse struct {
	Ingredients []struct {
		Name      string  `json:"name"`
		RiskLevel *string `json:"riskLevel"`
		Reason    string  `json:"reason"`
	} `json:"ingredients"`
	OverallRisk  *string     `json:"overallRisk"`
	Flags        []string    `json:"flags"`
	Confidence   looseNumber `json:"confidence"`
	Insights     []string    `json:"insights"`
	Alternatives []string    `json:"alternatives"`
}

type imageResponse struct {
	DetectedFoods     []string    `json:"detectedFoods"`
	Description       string      `json:"description"`
	SuggestedMealType *string     `json:"suggestedMealType"`
	EstimatedPortion  *string     `json:"estimatedPortion"`
	RiskLevel         *string     `json:"riskLevel"`
	Flags             []string    `json:"flags"`
	Confidence        looseNumber `json:"confidence"`
	Insights          []string    `json:"insights"`
}

func normalizeFood(resp foodResponse) models.AnalysisResult {
	return models.AnalysisResult{
		Flags:      cleanList(resp.Flags, true),
		RiskLevel:  parseRiskLevel(resp.RiskLevel),
		Confidence: normalizeConfidence(resp.Confidence, defaultFoodConfidence),
		Insights:   cleanList(resp.Insights, false),
	}
}

func normalizeSymptom(resp symptomResponse) models.AnalysisResult {
	return models.AnalysisResult{
		Flags:      cleanList(resp.Flags, true),
		RiskLevel:  parseSeverity(resp.Severity),
		Confidence: normalizeConfidence(resp.Confidence, defaultSymptomConfidence),
		Insights:   cleanList(resp.Insights, false),
	}
}

// normalizeIngredients derives the overall risk from the riskiest ingredient
// when the provider omits overallRisk.
func normalizeIngredients(resp ingredientsResponse) models.IngredientAnalysis {
	out := models.IngredientAnalysis{
		Ingredients:  make([]models.IngredientRisk, 0, len(resp.Ingredients)),
		Alternatives: cleanList(resp.Alternatives, false),
	}

	worst := models.RiskLow
	for _, ing := range resp.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		level := parseRiskLevel(ing.RiskLevel)
		if riskRank[level] > riskRank[worst] {
			worst = level
		}
		out.Ingredients = append(out.Ingredients, models.IngredientRisk{
			Name:      name,
			RiskLevel: level,
			Reason:    strings.TrimSpace(ing.Reason),
		})
	}

	overall := worst
	if resp.OverallRisk != nil {
		overall = parseRiskLevel(resp.OverallRisk)
	}

	out.AnalysisResult = models.AnalysisResult{
		Flags:      cleanList(resp.Flags, true),
		RiskLevel:  overall,
		Confidence: normalizeConfidence(resp.Confidence, defaultFoodConfidence),
		Insights:   cleanList(resp.Insights, false),
	}
	return out
}

func normalizeImage(resp imageResponse, declared models.Category) models.ImageAnalysis {
	out := models.ImageAnalysis{
		DetectedFoods: cleanList(resp.DetectedFoods, false),
		Description:   strings.TrimSpace(resp.Description),
		AnalysisResult: models.AnalysisResult{
			Flags:      cleanList(resp.Flags, true),
			RiskLevel:  parseRiskLevel(resp.RiskLevel),
			Confidence: normalizeConfidence(resp.Confidence, defaultFoodConfidence),
			Insights:   cleanList(resp.Insights, false),
		},
	}

	switch {
	case declared.IsMealType():
		out.SuggestedMealType = declared
	case resp.SuggestedMealType != nil && models.ParseCategory(*resp.SuggestedMealType).IsMealType():
		out.SuggestedMealType = models.ParseCategory(*resp.SuggestedMealType)
	}

	if resp.EstimatedPortion != nil {
		if p, ok := parsePortion(*resp.EstimatedPortion); ok {
			out.EstimatedPortion = p
		}
	}
	return out
}

var riskRank = map[models.RiskLevel]int{
	models.RiskLow:    0,
	models.RiskMedium: 1,
	models.RiskHigh:   2,
}

// parseRiskLevel accepts only the three literal levels; anything else is low.
func parseRiskLevel(raw *string) models.RiskLevel {
	if raw == nil {
		return models.RiskLow
	}
	level := models.RiskLevel(strings.ToLower(strings.TrimSpace(*raw)))
	if !level.Valid() {
		return models.RiskLow
	}
	return level
}

var severityLevels = map[string]models.RiskLevel{
	"mild":     models.RiskLow,
	"low":      models.RiskLow,
	"moderate": models.RiskMedium,
	"medium":   models.RiskMedium,
	"severe":   models.RiskHigh,
	"high":     models.RiskHigh,
}

// parseSeverity maps the symptom scale onto risk levels.
func parseSeverity(raw *string) models.RiskLevel {
	if raw == nil {
		return models.RiskLow
	}
	if level, ok := severityLevels[strings.ToLower(strings.TrimSpace(*raw))]; ok {
		return level
	}
	return models.RiskLow
}

// normalizeConfidence reads values in (1, 100] as percentages and clamps to [0, 1].
func normalizeConfidence(n looseNumber, def float64) float64 {
	if !n.Set || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return def
	}
	v := n.Value
	if v > 1 && v <= 100 {
		v /= 100
	}
	return math.Max(0, math.Min(1, v))
}

// cleanList trims, drops blanks and duplicates, optionally lower-cases and
// caps the list. The result is never nil.
func cleanList(items []string, lower bool) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if lower {
			item = strings.ToLower(item)
		}
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
		if len(out) == maxListItems {
			break
		}
	}
	return out
}

func parsePortion(raw string) (models.PortionSize, bool) {
	switch p := models.PortionSize(strings.ToLower(strings.TrimSpace(raw))); p {
	case models.PortionSmall, models.PortionMedium, models.PortionLarge:
		return p, true
	}
	return "", false
}
