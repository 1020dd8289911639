package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stomatrack/internal/analysis"
	"stomatrack/internal/imagestore"
	"stomatrack/internal/models"
	"stomatrack/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	symptomMealWindow    = 24 * time.Hour
	recommendationWindow = 14 * 24 * time.Hour
	recommendationRows   = 20
)

// Parser extracts multi-category drafts from free text.
type Parser interface {
	Parse(ctx context.Context, description string, base time.Time) (*models.MultiCategoryExtraction, error)
}

// Advisor runs the direct AI strategies.
type Advisor interface {
	AnalyzeImage(ctx context.Context, image models.ImageInput, mealType models.Category) (*models.ImageAnalysis, error)
	AnalyzeIngredients(ctx context.Context, ingredients []string) (*models.IngredientAnalysis, error)
	AnalyzeSymptoms(ctx context.Context, symptoms []string, description string, recentMeals []models.Meal) (*models.SymptomAnalysis, error)
	MealPlan(ctx context.Context, days int, preferences, restrictions []string) (*models.MealPlan, error)
	Recommendations(ctx context.Context, data analysis.RecentData) (*models.Recommendations, error)
}

type AIService interface {
	ParseMultiEntry(ctx context.Context, userID string, input models.ParseMultiEntryInput) (*models.ParseMultiEntryResult, error)
	AnalyzeImage(ctx context.Context, userID string, input models.AnalyzeImageInput) (*models.ImageAnalysis, error)
	AnalyzeIngredients(ctx context.Context, input models.AnalyzeIngredientsInput) (*models.IngredientAnalysis, error)
	AnalyzeSymptoms(ctx context.Context, userID string, input models.AnalyzeSymptomsInput) (*models.SymptomAnalysis, error)
	MealPlan(ctx context.Context, input models.MealPlanInput) (*models.MealPlan, error)
	Recommendations(ctx context.Context, userID string) (*models.Recommendations, error)
}

type aiService struct {
	parser    Parser
	advisor   Advisor
	entries   EntryService
	entryRepo repository.EntryRepository
	tracking  repository.TrackingRepository
	images    imagestore.Store
	logger    *zap.Logger
	now       func() time.Time
}

func NewAIService(
	parser Parser,
	advisor Advisor,
	entries EntryService,
	entryRepo repository.EntryRepository,
	tracking repository.TrackingRepository,
	images imagestore.Store,
	logger *zap.Logger,
) AIService {
	if images == nil {
		images = imagestore.Nop{}
	}
	return &aiService{
		parser:    parser,
		advisor:   advisor,
		entries:   entries,
		entryRepo: entryRepo,
		tracking:  tracking,
		images:    images,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *aiService) ParseMultiEntry(ctx context.Context, userID string, input models.ParseMultiEntryInput) (*models.ParseMultiEntryResult, error) {
	base := s.now().UTC()
	if input.Timestamp != nil {
		base = input.Timestamp.UTC()
	}

	extraction, err := s.parser.Parse(ctx, input.Description, base)
	if err != nil {
		return nil, err
	}

	result := &models.ParseMultiEntryResult{
		Extraction: extraction,
		Categories: extraction.Categories(),
	}
	if result.Categories == nil {
		result.Categories = []string{}
	}

	if input.Save && !extraction.Empty() {
		saved, err := s.saveDrafts(ctx, userID, extraction)
		if err != nil {
			return nil, err
		}
		result.Saved = saved
	}
	return result, nil
}

// saveDrafts persists each detected draft in a fixed order and stops at the first failure.
func (s *aiService) saveDrafts(ctx context.Context, userID string, ex *models.MultiCategoryExtraction) (*models.SavedDrafts, error) {
	saved := &models.SavedDrafts{}
	now := storedTime(s.now())

	if d := ex.Meal; d != nil {
		meal := &models.Meal{
			ID:          uuid.NewString(),
			UserID:      userID,
			MealType:    d.MealType,
			Description: d.Description,
			Ingredients: trimList(d.Ingredients),
			PortionSize: d.PortionSize,
			Timestamp:   storedTime(d.Timestamp),
			CreatedAt:   now,
		}
		if err := s.tracking.CreateMeal(ctx, meal); err != nil {
			return nil, s.saveFailed("meal", userID, err)
		}
		saved.Meal = meal
	}

	if d := ex.Gas; d != nil {
		gas := &models.GasSession{
			ID:                uuid.NewString(),
			UserID:            userID,
			Intensity:         d.Intensity,
			DurationMinutes:   d.DurationMinutes,
			SuspectedTriggers: trimList(d.SuspectedTriggers),
			Notes:             d.Notes,
			Timestamp:         storedTime(d.Timestamp),
			CreatedAt:         now,
		}
		if err := s.tracking.CreateGasSession(ctx, gas); err != nil {
			return nil, s.saveFailed("gas session", userID, err)
		}
		saved.Gas = gas
	}

	if d := ex.Output; d != nil {
		output := &models.Output{
			ID:          uuid.NewString(),
			UserID:      userID,
			Consistency: d.Consistency,
			Volume:      d.Volume,
			Color:       d.Color,
			PainLevel:   d.PainLevel,
			Notes:       d.Notes,
			Timestamp:   storedTime(d.Timestamp),
			CreatedAt:   now,
		}
		if err := s.tracking.CreateOutput(ctx, output); err != nil {
			return nil, s.saveFailed("output", userID, err)
		}
		saved.Output = output
	}

	if d := ex.Irrigation; d != nil {
		irrigation := &models.Irrigation{
			ID:              uuid.NewString(),
			UserID:          userID,
			Quality:         d.Quality,
			Completeness:    d.Completeness,
			Comfort:         d.Comfort,
			DurationMinutes: d.DurationMinutes,
			Notes:           d.Notes,
			Timestamp:       storedTime(d.Timestamp),
			CreatedAt:       now,
		}
		if err := s.tracking.CreateIrrigation(ctx, irrigation); err != nil {
			return nil, s.saveFailed("irrigation", userID, err)
		}
		saved.Irrigation = irrigation
	}

	if d := ex.Symptom; d != nil {
		description := d.Description
		if description == "" {
			description = strings.Join(d.Symptoms, ", ")
		}
		ts := d.Timestamp
		entry, err := s.entries.CreateEntry(ctx, userID, models.CreateEntryInput{
			UserID:      userID,
			Category:    string(models.CategorySymptoms),
			Description: description,
			Timestamp:   &ts,
		})
		if err != nil {
			return nil, s.saveFailed("symptom entry", userID, err)
		}
		saved.Symptom = entry
	}

	s.logger.Info("Parsed drafts saved", zap.String("user_id", userID), zap.Strings("categories", ex.Categories()))
	return saved, nil
}

func (s *aiService) saveFailed(kind, userID string, err error) error {
	s.logger.Error("Failed to save parsed draft", zap.String("kind", kind), zap.String("user_id", userID), zap.Error(err))
	return fmt.Errorf("failed to save %s draft: %w", kind, err)
}

// AnalyzeImage decodes the upload, analyses it and archives it. Archive
// failures are logged and leave ImageURL empty.
func (s *aiService) AnalyzeImage(ctx context.Context, userID string, input models.AnalyzeImageInput) (*models.ImageAnalysis, error) {
	img, err := imagestore.DecodeImage(input.Image, input.MIMEType)
	if err != nil {
		return nil, err
	}

	result, err := s.advisor.AnalyzeImage(ctx, img, models.ParseCategory(input.MealType))
	if err != nil {
		return nil, err
	}

	url, err := s.images.Put(ctx, userID, img)
	if err != nil {
		s.logger.Warn("Failed to archive meal photo", zap.String("user_id", userID), zap.Error(err))
	} else {
		result.ImageURL = url
	}
	return result, nil
}

func (s *aiService) AnalyzeIngredients(ctx context.Context, input models.AnalyzeIngredientsInput) (*models.IngredientAnalysis, error) {
	return s.advisor.AnalyzeIngredients(ctx, input.Ingredients)
}

// AnalyzeSymptoms adds the user's meals from the last 24 hours as context.
func (s *aiService) AnalyzeSymptoms(ctx context.Context, userID string, input models.AnalyzeSymptomsInput) (*models.SymptomAnalysis, error) {
	meals, err := s.tracking.ListMealsSince(ctx, userID, s.now().UTC().Add(-symptomMealWindow))
	if err != nil {
		s.logger.Error("Failed to load recent meals", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to load recent meals: %w", err)
	}
	return s.advisor.AnalyzeSymptoms(ctx, input.Symptoms, input.Description, meals)
}

func (s *aiService) MealPlan(ctx context.Context, input models.MealPlanInput) (*models.MealPlan, error) {
	return s.advisor.MealPlan(ctx, input.Days, input.Preferences, input.Restrictions)
}

func (s *aiService) Recommendations(ctx context.Context, userID string) (*models.Recommendations, error) {
	data, err := s.recentData(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load recent history", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to load recent history: %w", err)
	}
	return s.advisor.Recommendations(ctx, data)
}

func (s *aiService) recentData(ctx context.Context, userID string) (analysis.RecentData, error) {
	var data analysis.RecentData
	var err error

	since := s.now().UTC().Add(-recommendationWindow)
	if data.Entries, err = s.entryRepo.ListEntriesSince(ctx, userID, since); err != nil {
		return data, err
	}
	if len(data.Entries) > recommendationRows {
		data.Entries = data.Entries[:recommendationRows]
	}
	if data.Meals, err = s.tracking.ListMeals(ctx, userID, recommendationRows); err != nil {
		return data, err
	}
	if data.Gas, err = s.tracking.ListGasSessions(ctx, userID, recommendationRows); err != nil {
		return data, err
	}
	if data.Outputs, err = s.tracking.ListOutputs(ctx, userID, recommendationRows); err != nil {
		return data, err
	}
	return data, nil
}
