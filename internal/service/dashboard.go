package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stomatrack/internal/models"
	"stomatrack/internal/repository"

	"go.uber.org/zap"
)

const defaultStatsDays = 7

type DashboardService interface {
	Stats(ctx context.Context, userID string, days int) (*models.DashboardStats, error)
	Activity(ctx context.Context, userID string, limit int) ([]models.ActivityItem, error)
}

type dashboardService struct {
	stats    repository.DashboardRepository
	entries  repository.EntryRepository
	tracking repository.TrackingRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewDashboardService(stats repository.DashboardRepository, entries repository.EntryRepository, tracking repository.TrackingRepository, logger *zap.Logger) DashboardService {
	return &dashboardService{
		stats:    stats,
		entries:  entries,
		tracking: tracking,
		logger:   logger,
		now:      time.Now,
	}
}

// Stats aggregates the trailing window of days ending now.
func (s *dashboardService) Stats(ctx context.Context, userID string, days int) (*models.DashboardStats, error) {
	if days <= 0 {
		days = defaultStatsDays
	}
	since := s.now().UTC().AddDate(0, 0, -days)

	stats, err := s.stats.GetStats(ctx, userID, since)
	if err != nil {
		s.logger.Error("Failed to compute dashboard stats", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	stats.Days = days
	stats.Since = since
	return stats, nil
}

// Activity merges the newest records of every kind into one feed, newest first.
func (s *dashboardService) Activity(ctx context.Context, userID string, limit int) ([]models.ActivityItem, error) {
	items, err := s.collect(ctx, userID, limit)
	if err != nil {
		s.logger.Error("Failed to load recent activity", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *dashboardService) collect(ctx context.Context, userID string, limit int) ([]models.ActivityItem, error) {
	items := make([]models.ActivityItem, 0, limit*5)

	entries, err := s.entries.ListEntries(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		items = append(items, models.ActivityItem{
			ID:        e.ID,
			Kind:      "entry",
			Summary:   fmt.Sprintf("%s: %s (%s risk)", e.Category, e.Description, e.RiskLevel),
			Timestamp: e.Timestamp,
		})
	}

	meals, err := s.tracking.ListMeals(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for _, m := range meals {
		items = append(items, models.ActivityItem{
			ID:        m.ID,
			Kind:      "meal",
			Summary:   fmt.Sprintf("%s: %s", m.MealType, m.Description),
			Timestamp: m.Timestamp,
		})
	}

	gas, err := s.tracking.ListGasSessions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for _, g := range gas {
		items = append(items, models.ActivityItem{
			ID:        g.ID,
			Kind:      "gas",
			Summary:   fmt.Sprintf("Gas intensity %d/10 for %d min", g.Intensity, g.DurationMinutes),
			Timestamp: g.Timestamp,
		})
	}

	outputs, err := s.tracking.ListOutputs(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for _, o := range outputs {
		items = append(items, models.ActivityItem{
			ID:        o.ID,
			Kind:      "output",
			Summary:   fmt.Sprintf("Output %s, %s volume", o.Consistency, o.Volume),
			Timestamp: o.Timestamp,
		})
	}

	irrigations, err := s.tracking.ListIrrigations(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for _, i := range irrigations {
		items = append(items, models.ActivityItem{
			ID:        i.ID,
			Kind:      "irrigation",
			Summary:   fmt.Sprintf("Irrigation %s, comfort %d/10", i.Quality, i.Comfort),
			Timestamp: i.Timestamp,
		})
	}

	return items, nil
}
