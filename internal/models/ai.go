package models

import "time"

// AIRequest is one prompt sent to a generative provider.
type AIRequest struct {
	System    string
	Prompt    string
	Images    []ImageInput
	JSON      bool
	MaxTokens int
}

type ImageInput struct {
	MIMEType string
	Data     []byte
}

// ImageAnalysis is the result of analysing a meal photo.
type ImageAnalysis struct {
	DetectedFoods     []string    `json:"detectedFoods"`
	Description       string      `json:"description"`
	SuggestedMealType Category    `json:"suggestedMealType,omitempty"`
	EstimatedPortion  PortionSize `json:"estimatedPortion,omitempty"`
	ImageURL          string      `json:"imageUrl,omitempty"`
	AnalysisResult
}

type IngredientRisk struct {
	Name      string    `json:"name"`
	RiskLevel RiskLevel `json:"riskLevel"`
	Reason    string    `json:"reason,omitempty"`
}

type IngredientAnalysis struct {
	Ingredients  []IngredientRisk `json:"ingredients"`
	Alternatives []string         `json:"alternatives"`
	AnalysisResult
}

type SymptomAnalysis struct {
	LikelyTriggers  []string `json:"likelyTriggers"`
	Recommendations []string `json:"recommendations"`
	SeekCare        bool     `json:"seekCare"`
	AnalysisResult
}

type PlannedMeal struct {
	MealType    Category `json:"mealType"`
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Notes       string   `json:"notes,omitempty"`
}

type MealPlanDay struct {
	Day   int           `json:"day"`
	Meals []PlannedMeal `json:"meals"`
}

type MealPlan struct {
	Days  []MealPlanDay `json:"days"`
	Notes []string      `json:"notes"`
}

type Recommendation struct {
	Title    string    `json:"title"`
	Detail   string    `json:"detail"`
	Priority RiskLevel `json:"priority"`
}

type Recommendations struct {
	Summary         string           `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

// Request bodies for the /api/ai routes.

type ParseMultiEntryInput struct {
	UserID      string     `json:"userId"`
	Description string     `json:"description" binding:"required"`
	Timestamp   *time.Time `json:"timestamp"`
	Save        bool       `json:"save"`
}

type AnalyzeImageInput struct {
	UserID   string `json:"userId"`
	Image    string `json:"image" binding:"required"`
	MIMEType string `json:"mimeType"`
	MealType string `json:"mealType" binding:"omitempty,oneof=breakfast lunch dinner snack drinks"`
}

type AnalyzeIngredientsInput struct {
	UserID      string   `json:"userId"`
	Ingredients []string `json:"ingredients" binding:"required,min=1,dive,notblank"`
}

type AnalyzeSymptomsInput struct {
	UserID      string   `json:"userId"`
	Symptoms    []string `json:"symptoms" binding:"required,min=1,dive,notblank"`
	Description string   `json:"description"`
}

type MealPlanInput struct {
	UserID       string   `json:"userId"`
	Days         int      `json:"days" binding:"required,min=1,max=7"`
	Preferences  []string `json:"preferences"`
	Restrictions []string `json:"restrictions"`
}

type RecommendationsInput struct {
	UserID string `json:"userId"`
}

// ParseMultiEntryResult is returned by parse-multi-entry. Saved is set only when the request asked to persist.
type ParseMultiEntryResult struct {
	Extraction *MultiCategoryExtraction `json:"extraction"`
	Categories []string                 `json:"categories"`
	Saved      *SavedDrafts             `json:"saved,omitempty"`
}

type SavedDrafts struct {
	Meal       *Meal        `json:"meal,omitempty"`
	Gas        *GasSession  `json:"gas,omitempty"`
	Output     *Output      `json:"output,omitempty"`
	Irrigation *Irrigation  `json:"irrigation,omitempty"`
	Symptom    *HealthEntry `json:"symptom,omitempty"`
}
