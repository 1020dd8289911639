package service

import (
	"context"
	"testing"
	"time"

	"stomatrack/internal/models"
	"stomatrack/internal/repository"

	"go.uber.org/zap"
)

func TestStoredTime(t *testing.T) {
	in := time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.FixedZone("CEST", 2*60*60))
	got := storedTime(in)

	if got.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", got.Location())
	}
	if want := time.Date(2024, 5, 1, 8, 0, 0, 123456000, time.UTC); !got.Equal(want) {
		t.Errorf("storedTime() = %v, want %v", got, want)
	}
}

func TestTrackingService_ReturnedTimesMatchStored(t *testing.T) {
	db := setupDB(t)
	userID := seedUser(t, db)
	ctx := context.Background()
	logger := zap.NewNop()

	clock := time.Date(2024, 5, 1, 12, 0, 0, 987654321, time.UTC)
	ts := time.Date(2024, 5, 1, 11, 30, 15, 555555555, time.UTC)

	tracking := NewTrackingService(repository.NewTrackingRepository(db, logger), logger)
	tracking.(*trackingService).now = func() time.Time { return clock }

	meal, err := tracking.CreateMeal(ctx, userID, models.CreateMealInput{MealType: "lunch", Description: "soup", Timestamp: ptr(ts)})
	if err != nil {
		t.Fatalf("CreateMeal() error = %v", err)
	}
	if meal.Timestamp.Nanosecond()%1000 != 0 || meal.CreatedAt.Nanosecond()%1000 != 0 {
		t.Errorf("meal times not truncated to microseconds: %v / %v", meal.Timestamp, meal.CreatedAt)
	}

	meals, err := tracking.ListMeals(ctx, userID, 1)
	if err != nil || len(meals) != 1 {
		t.Fatalf("ListMeals() = %v, %v", meals, err)
	}
	if !meals[0].Timestamp.Equal(meal.Timestamp) || !meals[0].CreatedAt.Equal(meal.CreatedAt) {
		t.Errorf("stored meal times %v / %v differ from returned %v / %v",
			meals[0].Timestamp, meals[0].CreatedAt, meal.Timestamp, meal.CreatedAt)
	}

	entries := NewEntryService(repository.NewEntryRepository(db, logger), &MockClassifier{}, nil, logger)
	entries.(*entryService).now = func() time.Time { return clock }

	entry, err := entries.CreateEntry(ctx, userID, models.CreateEntryInput{Category: "gas", Description: "bloated", Timestamp: ptr(ts)})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	if want := ts.Truncate(time.Microsecond); !entry.Timestamp.Equal(want) {
		t.Errorf("entry timestamp = %v, want %v", entry.Timestamp, want)
	}
	stored, err := entries.ListEntries(ctx, userID, 1)
	if err != nil || len(stored) != 1 {
		t.Fatalf("ListEntries() = %v, %v", stored, err)
	}
	if !stored[0].Timestamp.Equal(entry.Timestamp) || !stored[0].CreatedAt.Equal(entry.CreatedAt) {
		t.Errorf("stored entry times differ from returned: %+v vs %+v", stored[0], entry)
	}
}
