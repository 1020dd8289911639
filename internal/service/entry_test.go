package service

import (
	"context"
	"errors"
	"testing"

	"stomatrack/internal/analysis"
	"stomatrack/internal/models"
	"stomatrack/internal/repository"

	"go.uber.org/zap"
)

func TestEntryService_CreateEntry(t *testing.T) {
	highRisk := analysis.Outcome{Result: models.AnalysisResult{
		Flags:      []string{"blockage"},
		RiskLevel:  models.RiskHigh,
		Confidence: 0.9,
		Insights:   []string{"Contact your stoma nurse"},
	}}
	fallback := analysis.Outcome{Result: models.DefaultAnalysis(), Fallback: true, Err: errors.New("timeout")}

	tests := []struct {
		name         string
		category     string
		outcome      analysis.Outcome
		notifyErr    error
		wantRisk     models.RiskLevel
		wantFallback bool
		wantNotified int
	}{
		{
			name:         "Given a high risk result When stored Then the notifier is called",
			category:     "symptoms",
			outcome:      highRisk,
			wantRisk:     models.RiskHigh,
			wantNotified: 1,
		},
		{
			name:         "Given the notifier fails When stored Then the entry is still returned",
			category:     "bowel",
			outcome:      highRisk,
			notifyErr:    errors.New("telegram down"),
			wantRisk:     models.RiskHigh,
			wantNotified: 1,
		},
		{
			name:         "Given analysis fell back When stored Then the fallback flag is persisted",
			category:     "Lunch",
			outcome:      fallback,
			wantRisk:     models.RiskLow,
			wantFallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupDB(t)
			userID := seedUser(t, db)
			repo := repository.NewEntryRepository(db, zap.NewNop())
			classifier := &MockClassifier{ClassifyFunc: func(context.Context, string, string) analysis.Outcome { return tt.outcome }}
			notifier := &MockNotifier{Err: tt.notifyErr}
			svc := NewEntryService(repo, classifier, notifier, zap.NewNop())

			entry, err := svc.CreateEntry(context.Background(), userID, models.CreateEntryInput{
				Category:    tt.category,
				Description: "  cramping after lunch ",
				Timestamp:   ptr(t0),
			})
			if err != nil {
				t.Fatalf("CreateEntry() error = %v", err)
			}
			if entry.RiskLevel != tt.wantRisk || entry.AnalysisFallback != tt.wantFallback {
				t.Errorf("entry = %+v", entry)
			}
			if entry.Description != "cramping after lunch" {
				t.Errorf("description = %q, want trimmed", entry.Description)
			}
			if entry.Category != models.ParseCategory(tt.category) {
				t.Errorf("category = %q", entry.Category)
			}
			if notifier.CallCount != tt.wantNotified {
				t.Errorf("notifier calls = %d, want %d", notifier.CallCount, tt.wantNotified)
			}

			stored, err := svc.ListEntries(context.Background(), userID, 10)
			if err != nil {
				t.Fatalf("ListEntries() error = %v", err)
			}
			if len(stored) != 1 || stored[0].AnalysisFallback != tt.wantFallback || stored[0].RiskLevel != tt.wantRisk {
				t.Errorf("stored = %+v", stored)
			}
		})
	}
}

func TestEntryService_UnknownCategoryIsStoredVerbatim(t *testing.T) {
	db := setupDB(t)
	userID := seedUser(t, db)
	classifier := analysis.NewClassifier(nil, 0, zap.NewNop())
	svc := NewEntryService(repository.NewEntryRepository(db, zap.NewNop()), classifier, nil, zap.NewNop())

	entry, err := svc.CreateEntry(context.Background(), userID, models.CreateEntryInput{
		Category:    "sleep",
		Description: "slept badly",
		Timestamp:   ptr(t0),
	})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	if entry.Category != "sleep" || entry.AnalysisFallback || entry.ConfidenceScore != 0.5 || entry.RiskLevel != models.RiskLow {
		t.Errorf("entry = %+v, want the static default under category sleep", entry)
	}
}
