package repository

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"stomatrack/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var t0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	logger := zap.NewNop()
	db, err := NewDB(DriverSQLite, filepath.Join(t.TempDir(), "data", "test.db"), logger)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := MigrateDB(db, DriverSQLite, logger); err != nil {
		t.Fatalf("MigrateDB() error = %v", err)
	}
	return db
}

func createUser(t *testing.T, repo UserRepository, email string) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), Email: email, PasswordHash: "hash", CreatedAt: t0}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u
}

func TestMigrateDB_IsIdempotent(t *testing.T) {
	db := setupDB(t)
	if err := MigrateDB(db, DriverSQLite, zap.NewNop()); err != nil {
		t.Fatalf("second MigrateDB() error = %v", err)
	}
}

func TestUserRepository(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db, zap.NewNop())
	ctx := context.Background()

	u := createUser(t, repo, "ada@example.com")

	dup := &models.User{ID: uuid.NewString(), Email: "ada@example.com", PasswordHash: "x", CreatedAt: t0}
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email error = %v, want ErrDuplicate", err)
	}

	got, err := repo.GetUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ID != u.ID || !got.CreatedAt.Equal(t0) {
		t.Errorf("user = %+v, want %+v", got, u)
	}

	if _, err := repo.GetUserByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}
}

func TestEntryRepository_ListIsScopedOrderedAndLimited(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db, zap.NewNop())
	repo := NewEntryRepository(db, zap.NewNop())
	ctx := context.Background()

	alice := createUser(t, users, "alice@example.com")
	bob := createUser(t, users, "bob@example.com")

	for i := 0; i < 8; i++ {
		owner := alice.ID
		if i%3 == 0 {
			owner = bob.ID
		}
		e := &models.HealthEntry{
			ID:              uuid.NewString(),
			UserID:          owner,
			Category:        models.CategoryLunch,
			Description:     "entry",
			Timestamp:       t0.Add(time.Duration(i*7%8) * time.Hour),
			AIFlags:         models.StringList{"dairy"},
			RiskLevel:       models.RiskLow,
			ConfidenceScore: 0.8,
			Insights:        models.StringList{},
			CreatedAt:       t0,
		}
		if err := repo.CreateEntry(ctx, e); err != nil {
			t.Fatalf("CreateEntry() error = %v", err)
		}
	}

	got, err := repo.ListEntries(ctx, alice.ID, 3)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, e := range got {
		if e.UserID != alice.ID {
			t.Errorf("entry %d belongs to %s", i, e.UserID)
		}
		if i > 0 && e.Timestamp.After(got[i-1].Timestamp) {
			t.Errorf("entries not newest-first: %v after %v", e.Timestamp, got[i-1].Timestamp)
		}
	}

	none, err := repo.ListEntries(ctx, "nobody", 10)
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("unknown user = (%v, %v), want empty non-nil slice", none, err)
	}
}

func TestEntryRepository_RoundTrip(t *testing.T) {
	db := setupDB(t)
	u := createUser(t, NewUserRepository(db, zap.NewNop()), "rt@example.com")
	repo := NewEntryRepository(db, zap.NewNop())
	ctx := context.Background()

	want := models.HealthEntry{
		ID:               uuid.NewString(),
		UserID:           u.ID,
		Category:         models.Category("sleep"),
		Description:      "restless night",
		Timestamp:        t0.Add(90*time.Minute + 250*time.Millisecond),
		AIFlags:          models.StringList{"high-fiber", "gas-producing"},
		RiskLevel:        models.RiskMedium,
		ConfidenceScore:  0.65,
		Insights:         models.StringList{"Chew slowly."},
		AnalysisFallback: true,
		CreatedAt:        t0,
	}
	if err := repo.CreateEntry(ctx, &want); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	got, err := repo.ListEntries(ctx, u.ID, 1)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListEntries() = (%v, %v)", got, err)
	}
	e := got[0]
	if !e.Timestamp.Equal(want.Timestamp) || !e.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("timestamps = %v/%v, want %v/%v", e.Timestamp, e.CreatedAt, want.Timestamp, want.CreatedAt)
	}
	e.Timestamp, e.CreatedAt = want.Timestamp, want.CreatedAt
	if !reflect.DeepEqual(e, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", e, want)
	}
}

func TestTrackingRepository(t *testing.T) {
	db := setupDB(t)
	u := createUser(t, NewUserRepository(db, zap.NewNop()), "track@example.com")
	repo := NewTrackingRepository(db, zap.NewNop())
	ctx := context.Background()

	pain := 3
	steps := []func() error{
		func() error {
			return repo.CreateMeal(ctx, &models.Meal{ID: uuid.NewString(), UserID: u.ID, MealType: models.CategoryBreakfast,
				Description: "porridge", Ingredients: models.StringList{"oats"}, Timestamp: t0, CreatedAt: t0})
		},
		func() error {
			return repo.CreateMeal(ctx, &models.Meal{ID: uuid.NewString(), UserID: u.ID, MealType: models.CategoryDinner,
				Description: "old dinner", Timestamp: t0.Add(-48 * time.Hour), CreatedAt: t0})
		},
		func() error {
			return repo.CreateGasSession(ctx, &models.GasSession{ID: uuid.NewString(), UserID: u.ID, Intensity: 6,
				DurationMinutes: 15, Timestamp: t0, CreatedAt: t0})
		},
		func() error {
			return repo.CreateOutput(ctx, &models.Output{ID: uuid.NewString(), UserID: u.ID, Consistency: models.ConsistencyLoose,
				Volume: models.VolumeLarge, PainLevel: &pain, Timestamp: t0, CreatedAt: t0})
		},
		func() error {
			return repo.CreateOutput(ctx, &models.Output{ID: uuid.NewString(), UserID: u.ID, Consistency: models.ConsistencyFormed,
				Volume: models.VolumeSmall, Timestamp: t0.Add(time.Hour), CreatedAt: t0})
		},
		func() error {
			return repo.CreateIrrigation(ctx, &models.Irrigation{ID: uuid.NewString(), UserID: u.ID, Quality: models.QualityGood,
				Completeness: 8, Comfort: 7, DurationMinutes: 45, WaterVolumeML: 1000, Timestamp: t0, CreatedAt: t0})
		},
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	recent, err := repo.ListMealsSince(ctx, u.ID, t0.Add(-24*time.Hour))
	if err != nil || len(recent) != 1 || recent[0].Description != "porridge" {
		t.Fatalf("ListMealsSince() = (%+v, %v), want only porridge", recent, err)
	}
	if recent[0].Ingredients[0] != "oats" {
		t.Errorf("ingredients = %v", recent[0].Ingredients)
	}

	outputs, err := repo.ListOutputs(ctx, u.ID, 10)
	if err != nil || len(outputs) != 2 {
		t.Fatalf("ListOutputs() = (%v, %v)", outputs, err)
	}
	if outputs[0].PainLevel != nil || outputs[1].PainLevel == nil || *outputs[1].PainLevel != 3 {
		t.Errorf("pain levels not preserved: %+v", outputs)
	}

	gas, _ := repo.ListGasSessions(ctx, u.ID, 10)
	if len(gas) != 1 || gas[0].SuspectedTriggers == nil {
		t.Errorf("gas sessions = %+v, want one with empty trigger list", gas)
	}

	irr, _ := repo.ListIrrigations(ctx, u.ID, 10)
	if len(irr) != 1 || irr[0].WaterVolumeML != 1000 {
		t.Errorf("irrigations = %+v", irr)
	}

	stats, err := NewDashboardRepository(db, zap.NewNop()).GetStats(ctx, u.ID, t0.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.MealCount != 1 || stats.GasCount != 1 || stats.OutputCount != 2 || stats.IrrigationCount != 1 {
		t.Errorf("counts = %+v", stats)
	}
	if stats.AvgGasIntensity != 6 || stats.AvgIrrigationComfort != 7 {
		t.Errorf("averages = %v/%v", stats.AvgGasIntensity, stats.AvgIrrigationComfort)
	}
	if stats.ConsistencyDistribution[models.ConsistencyLoose] != 1 || stats.RiskDistribution[models.RiskHigh] != 0 {
		t.Errorf("distributions = %v / %v", stats.ConsistencyDistribution, stats.RiskDistribution)
	}
}
