package repository

import (
	"context"
	"fmt"
	"time"

	"stomatrack/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// DashboardRepository runs the aggregate queries behind /api/dashboard/stats.
type DashboardRepository interface {
	GetStats(ctx context.Context, userID string, since time.Time) (*models.DashboardStats, error)
}

type dashboardRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewDashboardRepository(db *sqlx.DB, logger *zap.Logger) DashboardRepository {
	return &dashboardRepository{db: db, logger: logger}
}

type countAvg struct {
	Count int     `db:"count"`
	Avg   float64 `db:"avg"`
}

type bucket struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}

func (r *dashboardRepository) countAvg(ctx context.Context, table, avgColumn, userID string, since time.Time) (countAvg, error) {
	avg := "0"
	if avgColumn != "" {
		avg = "COALESCE(AVG(" + avgColumn + "), 0)"
	}
	query := fmt.Sprintf(`SELECT COUNT(*) AS count, %s AS avg FROM %s WHERE user_id = ? AND timestamp >= ?`, avg, table)

	var out countAvg
	err := r.db.GetContext(ctx, &out, r.db.Rebind(query), userID, since)
	return out, err
}

func (r *dashboardRepository) buckets(ctx context.Context, table, column, userID string, since time.Time) ([]bucket, error) {
	query := fmt.Sprintf(`SELECT %[1]s AS key, COUNT(*) AS count FROM %[2]s
		WHERE user_id = ? AND timestamp >= ? GROUP BY %[1]s`, column, table)
	return selectList[bucket](ctx, r.db, query, userID, since)
}

func (r *dashboardRepository) GetStats(ctx context.Context, userID string, since time.Time) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{
		Since:                   since,
		RiskDistribution:        map[models.RiskLevel]int{models.RiskLow: 0, models.RiskMedium: 0, models.RiskHigh: 0},
		ConsistencyDistribution: map[models.Consistency]int{},
	}

	meals, err := r.countAvg(ctx, "meals", "", userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count meals: %w", err)
	}
	stats.MealCount = meals.Count

	gas, err := r.countAvg(ctx, "gas_sessions", "intensity", userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate gas sessions: %w", err)
	}
	stats.GasCount, stats.AvgGasIntensity = gas.Count, gas.Avg

	outputs, err := r.countAvg(ctx, "outputs", "", userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count outputs: %w", err)
	}
	stats.OutputCount = outputs.Count

	irrigations, err := r.countAvg(ctx, "irrigations", "comfort", userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate irrigations: %w", err)
	}
	stats.IrrigationCount, stats.AvgIrrigationComfort = irrigations.Count, irrigations.Avg

	entries, err := r.countAvg(ctx, "health_entries", "", userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	stats.EntryCount = entries.Count

	risks, err := r.buckets(ctx, "health_entries", "risk_level", userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to group entries by risk: %w", err)
	}
	for _, b := range risks {
		stats.RiskDistribution[models.RiskLevel(b.Key)] = b.Count
	}

	consistencies, err := r.buckets(ctx, "outputs", "consistency", userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to group outputs by consistency: %w", err)
	}
	for _, b := range consistencies {
		stats.ConsistencyDistribution[models.Consistency(b.Key)] = b.Count
	}

	return stats, nil
}
