package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"stomatrack/internal/models"

	"go.uber.org/zap"
)

var base = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestParser(p Provider) *Parser {
	return NewParser(p, time.Second, zap.NewNop())
}

func TestParse_EmptyDescription(t *testing.T) {
	for _, desc := range []string{"", "   \n\t"} {
		mock := respondWith(`{}`)
		_, err := newTestParser(mock).Parse(context.Background(), desc, base)
		if !errors.Is(err, ErrEmptyDescription) {
			t.Errorf("Parse(%q) error = %v, want ErrEmptyDescription", desc, err)
		}
		if mock.CallCount != 0 {
			t.Errorf("provider called for empty description")
		}
	}
}

func TestParse_ProviderFailurePropagates(t *testing.T) {
	cause := errors.New("connection refused")
	_, err := newTestParser(failWith(cause)).Parse(context.Background(), "ate toast", base)
	if !errors.Is(err, ErrAnalysisFailed) || !errors.Is(err, cause) {
		t.Fatalf("error = %v, want ErrAnalysisFailed wrapping cause", err)
	}
}

func TestParse_UnparseableOutputPropagates(t *testing.T) {
	_, err := newTestParser(respondWith("I think you ate toast.")).Parse(context.Background(), "ate toast", base)
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("error = %v, want ErrAnalysisFailed", err)
	}
}

func TestParse_MealAndSymptomFromOneSentence(t *testing.T) {
	mock := respondWith("```json\n" + `{
		"meal": {"mealType": "breakfast", "description": "toast", "ingredients": ["toast", "butter"], "offsetMinutes": -45},
		"symptom": {"symptoms": ["Bloating"], "severity": "mild", "offsetMinutes": -15}
	}` + "\n```")

	got, err := newTestParser(mock).Parse(context.Background(), "ate toast, felt bloated after", base)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got.Meal == nil || got.Symptom == nil {
		t.Fatalf("categories = %v, want meal and symptom", got.Categories())
	}
	if got.Gas != nil || got.Output != nil || got.Irrigation != nil {
		t.Errorf("unexpected categories: %v", got.Categories())
	}
	if !got.Timestamp.Equal(base) {
		t.Errorf("baseline = %v, want %v", got.Timestamp, base)
	}
	if want := base.Add(-45 * time.Minute); !got.Meal.Timestamp.Equal(want) {
		t.Errorf("meal timestamp = %v, want %v", got.Meal.Timestamp, want)
	}
	if want := base.Add(-15 * time.Minute); !got.Symptom.Timestamp.Equal(want) {
		t.Errorf("symptom timestamp = %v, want %v", got.Symptom.Timestamp, want)
	}
	if got.Symptom.Severity != models.RiskLow || got.Symptom.Symptoms[0] != "bloating" {
		t.Errorf("symptom draft = %+v", got.Symptom)
	}

	prompt := mock.Requests[0].Prompt
	if !strings.Contains(prompt, "ate toast, felt bloated after") || !strings.Contains(prompt, base.Format(time.RFC3339)) {
		t.Errorf("prompt missing description or reference time:\n%s", prompt)
	}
	if !mock.Requests[0].JSON {
		t.Error("parser should request JSON output")
	}

	// Absent categories are omitted from the wire format.
	raw, _ := json.Marshal(got)
	if strings.Contains(string(raw), `"gas"`) {
		t.Errorf("json contains absent category: %s", raw)
	}
}

func TestParse_NormalizesDrafts(t *testing.T) {
	mock := respondWith(`{
		"meal": {"mealType": "elevenses"},
		"gas": {"intensity": 14, "durationMinutes": "20", "offsetMinutes": 60},
		"output": {"consistency": "watery", "volume": "huge", "painLevel": -3},
		"irrigation": {"quality": "meh", "completeness": 0, "comfort": 7.6},
		"symptom": {"severity": "unbearable"}
	}`)
	evening := time.Date(2024, 3, 10, 19, 0, 0, 0, time.UTC)

	got, err := newTestParser(mock).Parse(context.Background(), "long day", evening)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got.Meal.MealType != models.CategoryDinner {
		t.Errorf("meal type = %q, want inferred dinner", got.Meal.MealType)
	}
	if got.Meal.Description != "long day" {
		t.Errorf("meal description = %q, want the full description", got.Meal.Description)
	}
	if got.Gas.Intensity != 10 || got.Gas.DurationMinutes != 20 {
		t.Errorf("gas = %+v, want intensity 10 and 20 minutes", got.Gas)
	}
	if !got.Gas.Timestamp.Equal(evening.Add(time.Hour)) {
		t.Errorf("gas timestamp = %v", got.Gas.Timestamp)
	}
	if got.Output.Consistency != models.ConsistencySoft || got.Output.Volume != models.VolumeMedium {
		t.Errorf("output enums = %q/%q, want soft/medium", got.Output.Consistency, got.Output.Volume)
	}
	if got.Output.PainLevel == nil || *got.Output.PainLevel != 0 {
		t.Errorf("pain level = %v, want clamped 0", got.Output.PainLevel)
	}
	if got.Irrigation.Quality != models.QualityGood || got.Irrigation.Completeness != 1 || got.Irrigation.Comfort != 8 {
		t.Errorf("irrigation = %+v", got.Irrigation)
	}
	if got.Symptom.Severity != models.RiskLow {
		t.Errorf("severity = %q, want low", got.Symptom.Severity)
	}
}

func TestParse_NonFiniteNumbersUseDefaults(t *testing.T) {
	mock := respondWith(`{
		"gas": {"intensity": "NaN", "durationMinutes": "NaN", "offsetMinutes": "Inf"},
		"output": {"consistency": "loose", "volume": "small", "painLevel": "nan"},
		"irrigation": {"completeness": "nan", "comfort": "NaN", "durationMinutes": "-Inf"}
	}`)

	got, err := newTestParser(mock).Parse(context.Background(), "rough evening", base)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got.Gas.Intensity != 5 || got.Gas.DurationMinutes != 0 {
		t.Errorf("gas = %+v, want default intensity 5 and 0 minutes", got.Gas)
	}
	if !got.Gas.Timestamp.Equal(base) {
		t.Errorf("gas timestamp = %v, want base %v", got.Gas.Timestamp, base)
	}
	if got.Output.PainLevel != nil {
		t.Errorf("pain level = %v, want absent", *got.Output.PainLevel)
	}
	if got.Irrigation.Completeness != 5 || got.Irrigation.Comfort != 5 || got.Irrigation.DurationMinutes != 0 {
		t.Errorf("irrigation = %+v, want defaults", got.Irrigation)
	}
}

func TestParse_NothingDetected(t *testing.T) {
	got, err := newTestParser(respondWith(`{}`)).Parse(context.Background(), "hello there", base)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !got.Empty() {
		t.Errorf("categories = %v, want none", got.Categories())
	}
}

func TestInferMealType(t *testing.T) {
	tests := []struct {
		hour int
		want models.Category
	}{
		{6, models.CategoryBreakfast},
		{10, models.CategoryBreakfast},
		{11, models.CategoryLunch},
		{15, models.CategoryLunch},
		{16, models.CategoryDinner},
		{20, models.CategoryDinner},
		{21, models.CategorySnack},
		{23, models.CategorySnack},
	}
	for _, tt := range tests {
		ts := time.Date(2024, 1, 1, tt.hour, 0, 0, 0, time.UTC)
		if got := inferMealType(nil, ts); got != tt.want {
			t.Errorf("hour %d: got %q, want %q", tt.hour, got, tt.want)
		}
	}
}
