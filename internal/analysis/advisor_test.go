package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"stomatrack/internal/models"

	"go.uber.org/zap"
)

func newTestAdvisor(p Provider) *Advisor {
	a := NewAdvisor(p, time.Second, zap.NewNop())
	a.now = func() time.Time { return base }
	return a
}

func TestAnalyzeImage_SendsImageAndHonoursDeclaredMealType(t *testing.T) {
	mock := respondWith(`{"detectedFoods":["salad","Salad","nuts"],"suggestedMealType":"dinner","estimatedPortion":"LARGE","riskLevel":"medium","confidence":0.6}`)
	img := models.ImageInput{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}

	got, err := newTestAdvisor(mock).AnalyzeImage(context.Background(), img, models.CategoryLunch)
	if err != nil {
		t.Fatalf("AnalyzeImage() error = %v", err)
	}

	if len(mock.Requests[0].Images) != 1 || mock.Requests[0].Images[0].MIMEType != "image/jpeg" {
		t.Errorf("image not forwarded: %+v", mock.Requests[0].Images)
	}
	if got.SuggestedMealType != models.CategoryLunch {
		t.Errorf("meal type = %q, want declared lunch", got.SuggestedMealType)
	}
	if got.EstimatedPortion != models.PortionLarge {
		t.Errorf("portion = %q, want large", got.EstimatedPortion)
	}
	if len(got.DetectedFoods) != 2 {
		t.Errorf("detected foods = %v, want de-duplicated", got.DetectedFoods)
	}
	if got.RiskLevel != models.RiskMedium {
		t.Errorf("risk = %q", got.RiskLevel)
	}
}

func TestAnalyzeSymptoms_IncludesRecentMeals(t *testing.T) {
	mock := respondWith(`{"severity":"severe","likelyTriggers":["popcorn"],"recommendations":["call your stoma nurse"]}`)
	meals := []models.Meal{{MealType: models.CategorySnack, Description: "popcorn at the cinema", Timestamp: base.Add(-3 * time.Hour)}}

	got, err := newTestAdvisor(mock).AnalyzeSymptoms(context.Background(), []string{"cramping", "no output"}, "since lunch", meals)
	if err != nil {
		t.Fatalf("AnalyzeSymptoms() error = %v", err)
	}
	if got.RiskLevel != models.RiskHigh || !got.SeekCare {
		t.Errorf("result = %+v, want high risk with seekCare", got)
	}
	if prompt := mock.Requests[0].Prompt; !containsAll(prompt, "popcorn at the cinema", "cramping", "since lunch") {
		t.Errorf("prompt missing context:\n%s", prompt)
	}
}

func TestMealPlan_TrimsToRequestedDays(t *testing.T) {
	mock := respondWith(`{"days":[
		{"day":1,"meals":[{"mealType":"breakfast","name":"Porridge"},{"mealType":"brunch","name":"Eggs"}]},
		{"day":2,"meals":[{"mealType":"lunch","name":""}]},
		{"day":3,"meals":[{"mealType":"dinner","name":"Fish pie"}]},
		{"day":4,"meals":[{"mealType":"dinner","name":"Extra"}]}
	],"notes":["chew well"]}`)

	got, err := newTestAdvisor(mock).MealPlan(context.Background(), 2, nil, []string{"nuts"})
	if err != nil {
		t.Fatalf("MealPlan() error = %v", err)
	}
	if len(got.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(got.Days))
	}
	if got.Days[0].Meals[1].MealType != models.CategorySnack {
		t.Errorf("unknown meal type = %q, want snack", got.Days[0].Meals[1].MealType)
	}
	if got.Days[1].Meals[0].Name != "Fish pie" {
		t.Errorf("day without named meals should be skipped: %+v", got.Days)
	}
}

func TestMealPlan_NonFiniteDayFallsBackToPosition(t *testing.T) {
	mock := respondWith(`{"days":[
		{"day":"NaN","meals":[{"mealType":"lunch","name":"Rice"}]},
		{"day":"Inf","meals":[{"mealType":"dinner","name":"Soup"}]}
	]}`)

	got, err := newTestAdvisor(mock).MealPlan(context.Background(), 2, nil, nil)
	if err != nil {
		t.Fatalf("MealPlan() error = %v", err)
	}
	if len(got.Days) != 2 || got.Days[0].Day != 1 || got.Days[1].Day != 2 {
		t.Errorf("days = %+v, want days numbered 1 and 2", got.Days)
	}
}

func TestMealPlan_RejectsOutOfRangeDays(t *testing.T) {
	mock := respondWith(`{}`)
	for _, days := range []int{0, 8} {
		if _, err := newTestAdvisor(mock).MealPlan(context.Background(), days, nil, nil); err == nil {
			t.Errorf("days=%d: expected error", days)
		}
	}
	if mock.CallCount != 0 {
		t.Errorf("provider called for invalid input")
	}
}

func TestRecommendations(t *testing.T) {
	mock := respondWith(`{"summary":"Gas follows beans.","recommendations":[{"title":"Cut beans","detail":"Try lentils","priority":"urgent"},{"title":""}]}`)
	data := RecentData{
		Gas:     []models.GasSession{{Intensity: 8, DurationMinutes: 30, SuspectedTriggers: models.StringList{"beans"}, Timestamp: base}},
		Entries: []models.HealthEntry{{Category: models.CategoryDinner, RiskLevel: models.RiskHigh, Description: "chilli beans", Timestamp: base}},
	}

	got, err := newTestAdvisor(mock).Recommendations(context.Background(), data)
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	if len(got.Recommendations) != 1 || got.Recommendations[0].Priority != models.RiskLow {
		t.Errorf("recommendations = %+v", got.Recommendations)
	}
	if !got.GeneratedAt.Equal(base) {
		t.Errorf("generatedAt = %v", got.GeneratedAt)
	}
	if !containsAll(mock.Requests[0].Prompt, "intensity 8/10", "chilli beans") {
		t.Errorf("prompt missing history:\n%s", mock.Requests[0].Prompt)
	}
}

func TestAdvisor_WrapsProviderErrors(t *testing.T) {
	a := newTestAdvisor(failWith(errors.New("quota exceeded")))
	if _, err := a.AnalyzeIngredients(context.Background(), []string{"bran"}); !errors.Is(err, ErrAnalysisFailed) {
		t.Errorf("error = %v, want ErrAnalysisFailed", err)
	}
	if _, err := a.AnalyzeIngredients(context.Background(), []string{" "}); !errors.Is(err, ErrEmptyDescription) {
		t.Errorf("blank ingredients error = %v, want ErrEmptyDescription", err)
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
