package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"stomatrack/internal/analysis"
	"stomatrack/internal/models"
	"stomatrack/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var t0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	logger := zap.NewNop()
	db, err := repository.NewDB(repository.DriverSQLite, filepath.Join(t.TempDir(), "service.db"), logger)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := repository.MigrateDB(db, repository.DriverSQLite, logger); err != nil {
		t.Fatalf("MigrateDB() error = %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *sqlx.DB) string {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), Email: uuid.NewString() + "@example.com", PasswordHash: "hash", CreatedAt: t0}
	if err := repository.NewUserRepository(db, zap.NewNop()).CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u.ID
}

func ptr[T any](v T) *T { return &v }

type MockClassifier struct {
	ClassifyFunc func(ctx context.Context, category, description string) analysis.Outcome
	CallCount    int
}

func (m *MockClassifier) Classify(ctx context.Context, category, description string) analysis.Outcome {
	m.CallCount++
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, category, description)
	}
	return analysis.Outcome{Result: models.DefaultAnalysis()}
}

type MockNotifier struct {
	mu        sync.Mutex
	Err       error
	Notified  []*models.HealthEntry
	CallCount int
}

func (m *MockNotifier) NotifyHighRisk(_ context.Context, entry *models.HealthEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	m.Notified = append(m.Notified, entry)
	return m.Err
}

type MockParser struct {
	ParseFunc func(ctx context.Context, description string, base time.Time) (*models.MultiCategoryExtraction, error)
	CallCount int
	LastBase  time.Time
}

func (m *MockParser) Parse(ctx context.Context, description string, base time.Time) (*models.MultiCategoryExtraction, error) {
	m.CallCount++
	m.LastBase = base
	return m.ParseFunc(ctx, description, base)
}

// MockAdvisor records the arguments of the calls the tests inspect.
type MockAdvisor struct {
	ImageFunc   func(ctx context.Context, image models.ImageInput, mealType models.Category) (*models.ImageAnalysis, error)
	Err         error
	RecentMeals []models.Meal
	Recent      analysis.RecentData
	CallCount   int
}

func (m *MockAdvisor) AnalyzeImage(ctx context.Context, image models.ImageInput, mealType models.Category) (*models.ImageAnalysis, error) {
	m.CallCount++
	if m.ImageFunc != nil {
		return m.ImageFunc(ctx, image, mealType)
	}
	return &models.ImageAnalysis{AnalysisResult: models.DefaultAnalysis()}, m.Err
}

func (m *MockAdvisor) AnalyzeIngredients(context.Context, []string) (*models.IngredientAnalysis, error) {
	m.CallCount++
	return &models.IngredientAnalysis{AnalysisResult: models.DefaultAnalysis()}, m.Err
}

func (m *MockAdvisor) AnalyzeSymptoms(_ context.Context, _ []string, _ string, recentMeals []models.Meal) (*models.SymptomAnalysis, error) {
	m.CallCount++
	m.RecentMeals = recentMeals
	return &models.SymptomAnalysis{AnalysisResult: models.DefaultAnalysis()}, m.Err
}

func (m *MockAdvisor) MealPlan(context.Context, int, []string, []string) (*models.MealPlan, error) {
	m.CallCount++
	return &models.MealPlan{}, m.Err
}

func (m *MockAdvisor) Recommendations(_ context.Context, data analysis.RecentData) (*models.Recommendations, error) {
	m.CallCount++
	m.Recent = data
	return &models.Recommendations{}, m.Err
}

type MockImageStore struct {
	URL       string
	Err       error
	CallCount int
}

func (m *MockImageStore) Put(context.Context, string, models.ImageInput) (string, error) {
	m.CallCount++
	return m.URL, m.Err
}
