package models

import "time"

// AnalysisResult is the fixed internal shape every analyzer normalizes into.
type AnalysisResult struct {
	Flags      []string  `json:"flags"`
	RiskLevel  RiskLevel `json:"riskLevel"`
	Confidence float64   `json:"confidence"`
	Insights   []string  `json:"insights"`
}

// DefaultAnalysis is returned for uncategorised entries and whenever analysis fails.
func DefaultAnalysis() AnalysisResult {
	return AnalysisResult{
		Flags:      []string{},
		RiskLevel:  RiskLow,
		Confidence: 0.5,
		Insights:   []string{},
	}
}

// MultiCategoryExtraction holds the drafts detected in one free-text description.
// Categories that were not mentioned are nil and omitted from JSON.
type MultiCategoryExtraction struct {
	Timestamp  time.Time        `json:"timestamp"`
	Meal       *MealDraft       `json:"meal,omitempty"`
	Gas        *GasDraft        `json:"gas,omitempty"`
	Output     *OutputDraft     `json:"output,omitempty"`
	Irrigation *IrrigationDraft `json:"irrigation,omitempty"`
	Symptom    *SymptomDraft    `json:"symptom,omitempty"`
}

// Categories lists the detected category names in a stable order.
func (m *MultiCategoryExtraction) Categories() []string {
	var out []string
	if m.Meal != nil {
		out = append(out, "meal")
	}
	if m.Gas != nil {
		out = append(out, "gas")
	}
	if m.Output != nil {
		out = append(out, "output")
	}
	if m.Irrigation != nil {
		out = append(out, "irrigation")
	}
	if m.Symptom != nil {
		out = append(out, "symptom")
	}
	return out
}

// Empty reports whether nothing loggable was found.
func (m *MultiCategoryExtraction) Empty() bool {
	return len(m.Categories()) == 0
}

type MealDraft struct {
	MealType    Category    `json:"mealType"`
	Description string      `json:"description"`
	Ingredients []string    `json:"ingredients"`
	PortionSize PortionSize `json:"portionSize,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

type GasDraft struct {
	Intensity         int       `json:"intensity"`
	DurationMinutes   int       `json:"durationMinutes"`
	SuspectedTriggers []string  `json:"suspectedTriggers"`
	Notes             string    `json:"notes,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

type OutputDraft struct {
	Consistency Consistency `json:"consistency"`
	Volume      Volume      `json:"volume"`
	Color       string      `json:"color,omitempty"`
	PainLevel   *int        `json:"painLevel,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

type IrrigationDraft struct {
	Quality         IrrigationQuality `json:"quality"`
	Completeness    int               `json:"completeness"`
	Comfort         int               `json:"comfort"`
	DurationMinutes int               `json:"durationMinutes"`
	Notes           string            `json:"notes,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
}

type SymptomDraft struct {
	Symptoms    []string  `json:"symptoms"`
	Severity    RiskLevel `json:"severity"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}
