// Package analysis turns free-text health log entries into structured,
// risk-scored results using a generative AI provider.
package analysis

import (
	"context"
	"time"

	"stomatrack/internal/models"

	"go.uber.org/zap"
)

const defaultTimeout = 20 * time.Second

type analyzerKind int

const (
	analyzerOther analyzerKind = iota
	analyzerFood
	analyzerSymptom
)

func (k analyzerKind) String() string {
	switch k {
	case analyzerFood:
		return "food"
	case analyzerSymptom:
		return "symptom"
	}
	return "other"
}

// categoryAnalyzers maps each known category to its analyzer. Missing keys
// fall through to analyzerOther.
var categoryAnalyzers = map[models.Category]analyzerKind{
	models.CategoryBreakfast: analyzerFood,
	models.CategoryLunch:     analyzerFood,
	models.CategoryDinner:    analyzerFood,
	models.CategorySnack:     analyzerFood,
	models.CategoryDrinks:    analyzerFood,

	models.CategorySymptoms: analyzerSymptom,
	models.CategoryGas:      analyzerSymptom,
	models.CategoryBowel:    analyzerSymptom,
	models.CategoryMood:     analyzerSymptom,
	models.CategoryEnergy:   analyzerSymptom,
}

// Outcome is the result of classifying one entry. When Fallback is set the
// Result is the static default and Err holds the cause.
type Outcome struct {
	Result   models.AnalysisResult
	Fallback bool
	Err      error
}

type strategy func(ctx context.Context, category models.Category, description string) (models.AnalysisResult, error)

// Classifier scores single-category entries. It never returns an error.
type Classifier struct {
	provider   Provider
	timeout    time.Duration
	logger     *zap.Logger
	strategies map[analyzerKind]strategy
}

// NewClassifier creates a classifier. A nil provider makes every AI-backed
// category fall back to the default result.
func NewClassifier(provider Provider, timeout time.Duration, logger *zap.Logger) *Classifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Classifier{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
	c.strategies = map[analyzerKind]strategy{
		analyzerFood:    c.analyzeFood,
		analyzerSymptom: c.analyzeSymptom,
	}
	return c
}

// Classify routes the entry to the analyzer for its category.
func (c *Classifier) Classify(ctx context.Context, category, description string) Outcome {
	cat := models.ParseCategory(category)
	kind := categoryAnalyzers[cat]

	analyze, ok := c.strategies[kind]
	if !ok {
		return Outcome{Result: models.DefaultAnalysis()}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := analyze(ctx, cat, description)
	if err != nil {
		c.logger.Warn("Entry analysis failed, using default result",
			zap.String("category", string(cat)),
			zap.String("analyzer", kind.String()),
			zap.Error(err))
		return Outcome{Result: models.DefaultAnalysis(), Fallback: true, Err: err}
	}

	c.logger.Debug("Entry analysed",
		zap.String("category", string(cat)),
		zap.String("risk_level", string(result.RiskLevel)),
		zap.Float64("confidence", result.Confidence))

	return Outcome{Result: result}
}
