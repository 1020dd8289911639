package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stomatrack/internal/models"
	"stomatrack/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrackingService records meals, gas sessions, outputs and irrigations.
type TrackingService interface {
	CreateMeal(ctx context.Context, userID string, input models.CreateMealInput) (*models.Meal, error)
	ListMeals(ctx context.Context, userID string, limit int) ([]models.Meal, error)
	CreateGasSession(ctx context.Context, userID string, input models.CreateGasInput) (*models.GasSession, error)
	ListGasSessions(ctx context.Context, userID string, limit int) ([]models.GasSession, error)
	CreateOutput(ctx context.Context, userID string, input models.CreateOutputInput) (*models.Output, error)
	ListOutputs(ctx context.Context, userID string, limit int) ([]models.Output, error)
	CreateIrrigation(ctx context.Context, userID string, input models.CreateIrrigationInput) (*models.Irrigation, error)
	ListIrrigations(ctx context.Context, userID string, limit int) ([]models.Irrigation, error)
}

type trackingService struct {
	repo   repository.TrackingRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewTrackingService(repo repository.TrackingRepository, logger *zap.Logger) TrackingService {
	return &trackingService{repo: repo, logger: logger, now: time.Now}
}

func (s *trackingService) CreateMeal(ctx context.Context, userID string, input models.CreateMealInput) (*models.Meal, error) {
	meal := &models.Meal{
		ID:          uuid.NewString(),
		UserID:      userID,
		MealType:    models.ParseCategory(input.MealType),
		Description: strings.TrimSpace(input.Description),
		Ingredients: trimList(input.Ingredients),
		PortionSize: models.PortionSize(input.PortionSize),
		Notes:       input.Notes,
		Timestamp:   storedTime(*input.Timestamp),
		CreatedAt:   storedTime(s.now()),
	}
	if err := s.repo.CreateMeal(ctx, meal); err != nil {
		return nil, s.fail("store meal", userID, err)
	}
	s.logger.Info("Meal logged", zap.String("meal_id", meal.ID), zap.String("meal_type", string(meal.MealType)))
	return meal, nil
}

func (s *trackingService) ListMeals(ctx context.Context, userID string, limit int) ([]models.Meal, error) {
	meals, err := s.repo.ListMeals(ctx, userID, limit)
	if err != nil {
		return nil, s.fail("list meals", userID, err)
	}
	return meals, nil
}

func (s *trackingService) CreateGasSession(ctx context.Context, userID string, input models.CreateGasInput) (*models.GasSession, error) {
	session := &models.GasSession{
		ID:                uuid.NewString(),
		UserID:            userID,
		Intensity:         *input.Intensity,
		DurationMinutes:   *input.DurationMinutes,
		SuspectedTriggers: trimList(input.SuspectedTriggers),
		Notes:             input.Notes,
		Timestamp:         storedTime(*input.Timestamp),
		CreatedAt:         storedTime(s.now()),
	}
	if err := s.repo.CreateGasSession(ctx, session); err != nil {
		return nil, s.fail("store gas session", userID, err)
	}
	s.logger.Info("Gas session logged", zap.String("gas_id", session.ID), zap.Int("intensity", session.Intensity))
	return session, nil
}

func (s *trackingService) ListGasSessions(ctx context.Context, userID string, limit int) ([]models.GasSession, error) {
	sessions, err := s.repo.ListGasSessions(ctx, userID, limit)
	if err != nil {
		return nil, s.fail("list gas sessions", userID, err)
	}
	return sessions, nil
}

func (s *trackingService) CreateOutput(ctx context.Context, userID string, input models.CreateOutputInput) (*models.Output, error) {
	output := &models.Output{
		ID:          uuid.NewString(),
		UserID:      userID,
		Consistency: models.Consistency(input.Consistency),
		Volume:      models.Volume(input.Volume),
		Color:       strings.TrimSpace(input.Color),
		PainLevel:   input.PainLevel,
		Notes:       input.Notes,
		Timestamp:   storedTime(*input.Timestamp),
		CreatedAt:   storedTime(s.now()),
	}
	if err := s.repo.CreateOutput(ctx, output); err != nil {
		return nil, s.fail("store output", userID, err)
	}
	s.logger.Info("Output logged", zap.String("output_id", output.ID), zap.String("consistency", string(output.Consistency)))
	return output, nil
}

func (s *trackingService) ListOutputs(ctx context.Context, userID string, limit int) ([]models.Output, error) {
	outputs, err := s.repo.ListOutputs(ctx, userID, limit)
	if err != nil {
		return nil, s.fail("list outputs", userID, err)
	}
	return outputs, nil
}

func (s *trackingService) CreateIrrigation(ctx context.Context, userID string, input models.CreateIrrigationInput) (*models.Irrigation, error) {
	irrigation := &models.Irrigation{
		ID:              uuid.NewString(),
		UserID:          userID,
		Quality:         models.IrrigationQuality(input.Quality),
		Completeness:    *input.Completeness,
		Comfort:         *input.Comfort,
		DurationMinutes: input.DurationMinutes,
		WaterVolumeML:   input.WaterVolumeML,
		Notes:           input.Notes,
		Timestamp:       storedTime(*input.Timestamp),
		CreatedAt:       storedTime(s.now()),
	}
	if err := s.repo.CreateIrrigation(ctx, irrigation); err != nil {
		return nil, s.fail("store irrigation", userID, err)
	}
	s.logger.Info("Irrigation logged", zap.String("irrigation_id", irrigation.ID), zap.String("quality", string(irrigation.Quality)))
	return irrigation, nil
}

func (s *trackingService) ListIrrigations(ctx context.Context, userID string, limit int) ([]models.Irrigation, error) {
	irrigations, err := s.repo.ListIrrigations(ctx, userID, limit)
	if err != nil {
		return nil, s.fail("list irrigations", userID, err)
	}
	return irrigations, nil
}

func (s *trackingService) fail(op, userID string, err error) error {
	s.logger.Error("Failed to "+op, zap.String("user_id", userID), zap.Error(err))
	return fmt.Errorf("failed to %s: %w", op, err)
}

// trimList drops blank items and always returns a non-nil slice.
func trimList(items []string) models.StringList {
	out := make(models.StringList, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// storedTime is t in UTC at the microsecond precision both databases keep.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
