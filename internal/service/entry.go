package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stomatrack/internal/analysis"
	"stomatrack/internal/models"
	"stomatrack/internal/notify"
	"stomatrack/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Classifier scores a single-category entry.
type Classifier interface {
	Classify(ctx context.Context, category, description string) analysis.Outcome
}

type EntryService interface {
	CreateEntry(ctx context.Context, userID string, input models.CreateEntryInput) (*models.HealthEntry, error)
	ListEntries(ctx context.Context, userID string, limit int) ([]models.HealthEntry, error)
}

type entryService struct {
	repo       repository.EntryRepository
	classifier Classifier
	notifier   notify.Notifier
	logger     *zap.Logger
	now        func() time.Time
}

func NewEntryService(repo repository.EntryRepository, classifier Classifier, notifier notify.Notifier, logger *zap.Logger) EntryService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &entryService{
		repo:       repo,
		classifier: classifier,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateEntry classifies the description, then persists it. Analysis
// failures never block the write.
func (s *entryService) CreateEntry(ctx context.Context, userID string, input models.CreateEntryInput) (*models.HealthEntry, error) {
	category := models.ParseCategory(input.Category)
	description := strings.TrimSpace(input.Description)

	outcome := s.classifier.Classify(ctx, string(category), description)

	entry := &models.HealthEntry{
		ID:               uuid.NewString(),
		UserID:           userID,
		Category:         category,
		Description:      description,
		Timestamp:        storedTime(*input.Timestamp),
		AIFlags:          outcome.Result.Flags,
		RiskLevel:        outcome.Result.RiskLevel,
		ConfidenceScore:  outcome.Result.Confidence,
		Insights:         outcome.Result.Insights,
		AnalysisFallback: outcome.Fallback,
		CreatedAt:        storedTime(s.now()),
	}

	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		s.logger.Error("Failed to store entry", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to store entry: %w", err)
	}

	s.logger.Info("Entry created",
		zap.String("entry_id", entry.ID),
		zap.String("category", string(entry.Category)),
		zap.String("risk_level", string(entry.RiskLevel)),
		zap.Bool("fallback", entry.AnalysisFallback))

	if entry.RiskLevel == models.RiskHigh {
		if err := s.notifier.NotifyHighRisk(ctx, entry); err != nil {
			s.logger.Warn("Failed to send high risk alert", zap.String("entry_id", entry.ID), zap.Error(err))
		}
	}

	return entry, nil
}

func (s *entryService) ListEntries(ctx context.Context, userID string, limit int) ([]models.HealthEntry, error) {
	entries, err := s.repo.ListEntries(ctx, userID, limit)
	if err != nil {
		s.logger.Error("Failed to list entries", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}
