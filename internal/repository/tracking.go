package repository

import (
	"context"
	"time"

	"stomatrack/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// TrackingRepository stores the category-specific logs: meals, gas sessions,
// stoma output and irrigations.
type TrackingRepository interface {
	CreateMeal(ctx context.Context, meal *models.Meal) error
	ListMeals(ctx context.Context, userID string, limit int) ([]models.Meal, error)
	ListMealsSince(ctx context.Context, userID string, since time.Time) ([]models.Meal, error)

	CreateGasSession(ctx context.Context, gas *models.GasSession) error
	ListGasSessions(ctx context.Context, userID string, limit int) ([]models.GasSession, error)

	CreateOutput(ctx context.Context, output *models.Output) error
	ListOutputs(ctx context.Context, userID string, limit int) ([]models.Output, error)

	CreateIrrigation(ctx context.Context, irrigation *models.Irrigation) error
	ListIrrigations(ctx context.Context, userID string, limit int) ([]models.Irrigation, error)
}

type trackingRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewTrackingRepository(db *sqlx.DB, logger *zap.Logger) TrackingRepository {
	return &trackingRepository{db: db, logger: logger}
}

const (
	mealColumns       = `id, user_id, meal_type, description, ingredients, portion_size, notes, timestamp, created_at`
	gasColumns        = `id, user_id, intensity, duration_minutes, suspected_triggers, notes, timestamp, created_at`
	outputColumns     = `id, user_id, consistency, volume, color, pain_level, notes, timestamp, created_at`
	irrigationColumns = `id, user_id, quality, completeness, comfort, duration_minutes, water_volume_ml, notes, timestamp, created_at`
)

func (r *trackingRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return translateError(err)
}

func (r *trackingRepository) CreateMeal(ctx context.Context, m *models.Meal) error {
	return r.exec(ctx, `INSERT INTO meals (`+mealColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.MealType, m.Description, m.Ingredients, m.PortionSize, m.Notes, m.Timestamp, m.CreatedAt)
}

func (r *trackingRepository) ListMeals(ctx context.Context, userID string, limit int) ([]models.Meal, error) {
	return selectList[models.Meal](ctx, r.db,
		`SELECT `+mealColumns+` FROM meals WHERE user_id = ? ORDER BY timestamp DESC, created_at DESC LIMIT ?`,
		userID, limit)
}

func (r *trackingRepository) ListMealsSince(ctx context.Context, userID string, since time.Time) ([]models.Meal, error) {
	return selectList[models.Meal](ctx, r.db,
		`SELECT `+mealColumns+` FROM meals WHERE user_id = ? AND timestamp >= ? ORDER BY timestamp DESC, created_at DESC`,
		userID, since)
}

func (r *trackingRepository) CreateGasSession(ctx context.Context, g *models.GasSession) error {
	return r.exec(ctx, `INSERT INTO gas_sessions (`+gasColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Intensity, g.DurationMinutes, g.SuspectedTriggers, g.Notes, g.Timestamp, g.CreatedAt)
}

func (r *trackingRepository) ListGasSessions(ctx context.Context, userID string, limit int) ([]models.GasSession, error) {
	return selectList[models.GasSession](ctx, r.db,
		`SELECT `+gasColumns+` FROM gas_sessions WHERE user_id = ? ORDER BY timestamp DESC, created_at DESC LIMIT ?`,
		userID, limit)
}

func (r *trackingRepository) CreateOutput(ctx context.Context, o *models.Output) error {
	return r.exec(ctx, `INSERT INTO outputs (`+outputColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.Consistency, o.Volume, o.Color, o.PainLevel, o.Notes, o.Timestamp, o.CreatedAt)
}

func (r *trackingRepository) ListOutputs(ctx context.Context, userID string, limit int) ([]models.Output, error) {
	return selectList[models.Output](ctx, r.db,
		`SELECT `+outputColumns+` FROM outputs WHERE user_id = ? ORDER BY timestamp DESC, created_at DESC LIMIT ?`,
		userID, limit)
}

func (r *trackingRepository) CreateIrrigation(ctx context.Context, i *models.Irrigation) error {
	return r.exec(ctx, `INSERT INTO irrigations (`+irrigationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.UserID, i.Quality, i.Completeness, i.Comfort, i.DurationMinutes, i.WaterVolumeML, i.Notes, i.Timestamp, i.CreatedAt)
}

func (r *trackingRepository) ListIrrigations(ctx context.Context, userID string, limit int) ([]models.Irrigation, error) {
	return selectList[models.Irrigation](ctx, r.db,
		`SELECT `+irrigationColumns+` FROM irrigations WHERE user_id = ? ORDER BY timestamp DESC, created_at DESC LIMIT ?`,
		userID, limit)
}
