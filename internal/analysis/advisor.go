package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stomatrack/internal/models"

	"go.uber.org/zap"
)

// RecentData is the slice of a user's history the recommendation prompt sees.
type RecentData struct {
	Entries []models.HealthEntry
	Meals   []models.Meal
	Gas     []models.GasSession
	Outputs []models.Output
}

// Advisor runs the direct, request-scoped AI strategies. Every failure is
// returned wrapped in ErrAnalysisFailed.
type Advisor struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewAdvisor(provider Provider, timeout time.Duration, logger *zap.Logger) *Advisor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Advisor{provider: provider, timeout: timeout, logger: logger, now: time.Now}
}

func (a *Advisor) run(ctx context.Context, op string, req models.AIRequest, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if req.System == "" {
		req.System = systemInstruction
	}
	if err := generateJSON(ctx, a.provider, req, out); err != nil {
		a.logger.Error("AI request failed", zap.String("operation", op), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrAnalysisFailed, op, err)
	}
	return nil
}

// AnalyzeImage identifies the food in a meal photo.
func (a *Advisor) AnalyzeImage(ctx context.Context, image models.ImageInput, mealType models.Category) (*models.ImageAnalysis, error) {
	var resp imageResponse
	err := a.run(ctx, "analyze-image", models.AIRequest{
		Prompt:    buildImagePrompt(mealType),
		Images:    []models.ImageInput{image},
		MaxTokens: 800,
	}, &resp)
	if err != nil {
		return nil, err
	}
	result := normalizeImage(resp, mealType)
	return &result, nil
}

// AnalyzeIngredients rates each ingredient for ostomy-specific risk.
func (a *Advisor) AnalyzeIngredients(ctx context.Context, ingredients []string) (*models.IngredientAnalysis, error) {
	ingredients = cleanList(ingredients, false)
	if len(ingredients) == 0 {
		return nil, ErrEmptyDescription
	}

	var resp ingredientsResponse
	err := a.run(ctx, "analyze-ingredients", models.AIRequest{
		Prompt:    buildIngredientsPrompt(ingredients),
		MaxTokens: 800,
	}, &resp)
	if err != nil {
		return nil, err
	}
	result := normalizeIngredients(resp)
	return &result, nil
}

// AnalyzeSymptoms relates reported symptoms to the meals eaten beforehand.
func (a *Advisor) AnalyzeSymptoms(ctx context.Context, symptoms []string, description string, recentMeals []models.Meal) (*models.SymptomAnalysis, error) {
	symptoms = cleanList(symptoms, false)
	if len(symptoms) == 0 {
		return nil, ErrEmptyDescription
	}

	var resp symptomResponse
	err := a.run(ctx, "analyze-symptoms", models.AIRequest{
		Prompt:    buildSymptomAnalysisPrompt(symptoms, strings.TrimSpace(description), recentMeals),
		MaxTokens: 800,
	}, &resp)
	if err != nil {
		return nil, err
	}

	result := normalizeSymptom(resp)
	return &models.SymptomAnalysis{
		LikelyTriggers:  cleanList(resp.LikelyTriggers, false),
		Recommendations: cleanList(resp.Recommendations, false),
		SeekCare:        resp.SeekCare || result.RiskLevel == models.RiskHigh,
		AnalysisResult:  result,
	}, nil
}

type mealPlanResponse struct {
	Days []struct {
		Day   looseNumber `json:"day"`
		Meals []struct {
			MealType    *string  `json:"mealType"`
			Name        string   `json:"name"`
			Ingredients []string `json:"ingredients"`
			Notes       string   `json:"notes"`
		} `json:"meals"`
	} `json:"days"`
	Notes []string `json:"notes"`
}

// MealPlan builds a plan of 1 to 7 days.
func (a *Advisor) MealPlan(ctx context.Context, days int, preferences, restrictions []string) (*models.MealPlan, error) {
	if days < 1 || days > 7 {
		return nil, fmt.Errorf("days must be between 1 and 7, got %d", days)
	}

	var resp mealPlanResponse
	err := a.run(ctx, "meal-plan", models.AIRequest{
		Prompt:    buildMealPlanPrompt(days, cleanList(preferences, false), cleanList(restrictions, false)),
		MaxTokens: 2048,
	}, &resp)
	if err != nil {
		return nil, err
	}

	plan := &models.MealPlan{
		Days:  make([]models.MealPlanDay, 0, days),
		Notes: cleanList(resp.Notes, false),
	}
	for i, d := range resp.Days {
		if len(plan.Days) == days {
			break
		}
		day := models.MealPlanDay{Day: scale(d.Day, i+1, 1, days)}
		for _, m := range d.Meals {
			name := strings.TrimSpace(m.Name)
			if name == "" {
				continue
			}
			mealType := models.CategorySnack
			if m.MealType != nil && models.ParseCategory(*m.MealType).IsMealType() {
				mealType = models.ParseCategory(*m.MealType)
			}
			day.Meals = append(day.Meals, models.PlannedMeal{
				MealType:    mealType,
				Name:        name,
				Ingredients: cleanList(m.Ingredients, false),
				Notes:       strings.TrimSpace(m.Notes),
			})
		}
		if len(day.Meals) > 0 {
			plan.Days = append(plan.Days, day)
		}
	}
	if len(plan.Days) == 0 {
		return nil, fmt.Errorf("%w: meal-plan: provider returned no meals", ErrAnalysisFailed)
	}
	return plan, nil
}

type recommendationsResponse struct {
	Summary         string `json:"summary"`
	Recommendations []struct {
		Title    string  `json:"title"`
		Detail   string  `json:"detail"`
		Priority *string `json:"priority"`
	} `json:"recommendations"`
}

// Recommendations produces personalised advice from the user's recent history.
func (a *Advisor) Recommendations(ctx context.Context, data RecentData) (*models.Recommendations, error) {
	var resp recommendationsResponse
	err := a.run(ctx, "recommendations", models.AIRequest{
		Prompt:    buildRecommendationsPrompt(data),
		MaxTokens: 1200,
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := &models.Recommendations{
		Summary:         strings.TrimSpace(resp.Summary),
		Recommendations: make([]models.Recommendation, 0, len(resp.Recommendations)),
		GeneratedAt:     a.now().UTC(),
	}
	for _, r := range resp.Recommendations {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		out.Recommendations = append(out.Recommendations, models.Recommendation{
			Title:    title,
			Detail:   strings.TrimSpace(r.Detail),
			Priority: parseRiskLevel(r.Priority),
		})
		if len(out.Recommendations) == maxListItems {
			break
		}
	}
	return out, nil
}
