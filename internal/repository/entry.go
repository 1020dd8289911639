package repository

import (
	"context"
	"time"

	"stomatrack/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const entryColumns = `id, user_id, category, description, timestamp, ai_flags, risk_level,
	confidence_score, insights, analysis_fallback, created_at`

// EntryRepository stores classified health entries. Entries are append-only.
type EntryRepository interface {
	CreateEntry(ctx context.Context, entry *models.HealthEntry) error
	ListEntries(ctx context.Context, userID string, limit int) ([]models.HealthEntry, error)
	ListEntriesSince(ctx context.Context, userID string, since time.Time) ([]models.HealthEntry, error)
}

type entryRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewEntryRepository(db *sqlx.DB, logger *zap.Logger) EntryRepository {
	return &entryRepository{db: db, logger: logger}
}

func (r *entryRepository) CreateEntry(ctx context.Context, e *models.HealthEntry) error {
	query := `INSERT INTO health_entries (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		e.ID, e.UserID, e.Category, e.Description, e.Timestamp, e.AIFlags, e.RiskLevel,
		e.ConfidenceScore, e.Insights, e.AnalysisFallback, e.CreatedAt)
	return translateError(err)
}

func (r *entryRepository) ListEntries(ctx context.Context, userID string, limit int) ([]models.HealthEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM health_entries
		WHERE user_id = ? ORDER BY timestamp DESC, created_at DESC LIMIT ?`
	return selectList[models.HealthEntry](ctx, r.db, query, userID, limit)
}

func (r *entryRepository) ListEntriesSince(ctx context.Context, userID string, since time.Time) ([]models.HealthEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM health_entries
		WHERE user_id = ? AND timestamp >= ? ORDER BY timestamp DESC, created_at DESC`
	return selectList[models.HealthEntry](ctx, r.db, query, userID, since)
}
