package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"stomatrack/internal/models"

	"go.uber.org/zap"
)

// Offsets outside this window are treated as hallucinated and clamped.
const (
	minOffsetMinutes = -7 * 24 * 60
	maxOffsetMinutes = 24 * 60
)

type multiEntryResponse struct {
	Meal *struct {
		MealType      *string     `json:"mealType"`
		Description   string      `json:"description"`
		Ingredients   []string    `json:"ingredients"`
		PortionSize   *string     `json:"portionSize"`
		OffsetMinutes looseNumber `json:"offsetMinutes"`
	} `json:"meal"`
	Gas *struct {
		Intensity         looseNumber `json:"intensity"`
		DurationMinutes   looseNumber `json:"durationMinutes"`
		SuspectedTriggers []string    `json:"suspectedTriggers"`
		Notes             string      `json:"notes"`
		OffsetMinutes     looseNumber `json:"offsetMinutes"`
	} `json:"gas"`
	Output *struct {
		Consistency   *string     `json:"consistency"`
		Volume        *string     `json:"volume"`
		Color         string      `json:"color"`
		PainLevel     looseNumber `json:"painLevel"`
		Notes         string      `json:"notes"`
		OffsetMinutes looseNumber `json:"offsetMinutes"`
	} `json:"output"`
	Irrigation *struct {
		Quality         *string     `json:"quality"`
		Completeness    looseNumber `json:"completeness"`
		Comfort         looseNumber `json:"comfort"`
		DurationMinutes looseNumber `json:"durationMinutes"`
		Notes           string      `json:"notes"`
		OffsetMinutes   looseNumber `json:"offsetMinutes"`
	} `json:"irrigation"`
	Symptom *struct {
		Symptoms      []string    `json:"symptoms"`
		Severity      *string     `json:"severity"`
		Description   string      `json:"description"`
		OffsetMinutes looseNumber `json:"offsetMinutes"`
	} `json:"symptom"`
}

// Parser extracts every loggable category from one free-text description.
// Unlike the Classifier it reports provider failures to the caller.
type Parser struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
}

func NewParser(provider Provider, timeout time.Duration, logger *zap.Logger) *Parser {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Parser{provider: provider, timeout: timeout, logger: logger}
}

// Parse returns the drafts found in description, each anchored to base plus
// the offset the provider inferred. Categories not mentioned are nil.
func (p *Parser) Parse(ctx context.Context, description string, base time.Time) (*models.MultiCategoryExtraction, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var resp multiEntryResponse
	err := generateJSON(ctx, p.provider, models.AIRequest{
		System:    systemInstruction,
		Prompt:    buildMultiEntryPrompt(description, base),
		MaxTokens: 1024,
	}, &resp)
	if err != nil {
		p.logger.Error("Multi-entry parse failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	extraction := normalizeExtraction(resp, description, base)

	p.logger.Debug("Multi-entry parsed",
		zap.Strings("categories", extraction.Categories()))

	return extraction, nil
}

func normalizeExtraction(resp multiEntryResponse, description string, base time.Time) *models.MultiCategoryExtraction {
	out := &models.MultiCategoryExtraction{Timestamp: base}

	if m := resp.Meal; m != nil {
		ts := offsetTime(base, m.OffsetMinutes)
		draft := &models.MealDraft{
			MealType:    inferMealType(m.MealType, ts),
			Description: firstNonEmpty(m.Description, description),
			Ingredients: cleanList(m.Ingredients, false),
			Timestamp:   ts,
		}
		if m.PortionSize != nil {
			if portion, ok := parsePortion(*m.PortionSize); ok {
				draft.PortionSize = portion
			}
		}
		out.Meal = draft
	}

	if g := resp.Gas; g != nil {
		out.Gas = &models.GasDraft{
			Intensity:         scale(g.Intensity, 5, 1, 10),
			DurationMinutes:   scale(g.DurationMinutes, 0, 0, 24*60),
			SuspectedTriggers: cleanList(g.SuspectedTriggers, false),
			Notes:             strings.TrimSpace(g.Notes),
			Timestamp:         offsetTime(base, g.OffsetMinutes),
		}
	}

	if o := resp.Output; o != nil {
		draft := &models.OutputDraft{
			Consistency: parseConsistency(o.Consistency),
			Volume:      parseVolume(o.Volume),
			Color:       strings.TrimSpace(o.Color),
			Notes:       strings.TrimSpace(o.Notes),
			Timestamp:   offsetTime(base, o.OffsetMinutes),
		}
		if o.PainLevel.Set {
			pain := scale(o.PainLevel, 0, 0, 10)
			draft.PainLevel = &pain
		}
		out.Output = draft
	}

	if i := resp.Irrigation; i != nil {
		out.Irrigation = &models.IrrigationDraft{
			Quality:         parseQuality(i.Quality),
			Completeness:    scale(i.Completeness, 5, 1, 10),
			Comfort:         scale(i.Comfort, 5, 1, 10),
			DurationMinutes: scale(i.DurationMinutes, 0, 0, 24*60),
			Notes:           strings.TrimSpace(i.Notes),
			Timestamp:       offsetTime(base, i.OffsetMinutes),
		}
	}

	if s := resp.Symptom; s != nil {
		out.Symptom = &models.SymptomDraft{
			Symptoms:    cleanList(s.Symptoms, true),
			Severity:    parseSeverity(s.Severity),
			Description: firstNonEmpty(s.Description, description),
			Timestamp:   offsetTime(base, s.OffsetMinutes),
		}
	}

	return out
}

func offsetTime(base time.Time, offset looseNumber) time.Time {
	if !offset.Set {
		return base
	}
	minutes := math.Max(minOffsetMinutes, math.Min(maxOffsetMinutes, offset.Value))
	return base.Add(time.Duration(minutes) * time.Minute)
}

// scale rounds n into [lo, hi], or returns def when n is absent.
func scale(n looseNumber, def, lo, hi int) int {
	if !n.Set {
		return def
	}
	v := math.Max(float64(lo), math.Min(float64(hi), math.Round(n.Value)))
	return int(v)
}

// inferMealType keeps a valid provider value, otherwise guesses from the hour.
func inferMealType(raw *string, ts time.Time) models.Category {
	if raw != nil {
		if c := models.ParseCategory(*raw); c.IsMealType() {
			return c
		}
	}
	switch h := ts.Hour(); {
	case h < 11:
		return models.CategoryBreakfast
	case h < 16:
		return models.CategoryLunch
	case h < 21:
		return models.CategoryDinner
	default:
		return models.CategorySnack
	}
}

func parseConsistency(raw *string) models.Consistency {
	if raw != nil {
		switch c := models.Consistency(strings.ToLower(strings.TrimSpace(*raw))); c {
		case models.ConsistencyLiquid, models.ConsistencyLoose, models.ConsistencySoft,
			models.ConsistencyFormed, models.ConsistencyHard:
			return c
		}
	}
	return models.ConsistencySoft
}

func parseVolume(raw *string) models.Volume {
	if raw != nil {
		switch v := models.Volume(strings.ToLower(strings.TrimSpace(*raw))); v {
		case models.VolumeSmall, models.VolumeMedium, models.VolumeLarge:
			return v
		}
	}
	return models.VolumeMedium
}

func parseQuality(raw *string) models.IrrigationQuality {
	if raw != nil {
		switch q := models.IrrigationQuality(strings.ToLower(strings.TrimSpace(*raw))); q {
		case models.QualityExcellent, models.QualityGood, models.QualityFair, models.QualityPoor:
			return q
		}
	}
	return models.QualityGood
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
