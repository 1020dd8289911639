package analysis

import (
	"context"

	"stomatrack/internal/models"
)

func (c *Classifier) analyzeFood(ctx context.Context, category models.Category, description string) (models.AnalysisResult, error) {
	var resp foodResponse
	err := generateJSON(ctx, c.provider, models.AIRequest{
		System:    systemInstruction,
		Prompt:    buildFoodPrompt(category, description),
		MaxTokens: 500,
	}, &resp)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return normalizeFood(resp), nil
}

func (c *Classifier) analyzeSymptom(ctx context.Context, category models.Category, description string) (models.AnalysisResult, error) {
	var resp symptomResponse
	err := generateJSON(ctx, c.provider, models.AIRequest{
		System:    systemInstruction,
		Prompt:    buildSymptomPrompt(category, description),
		MaxTokens: 500,
	}, &resp)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return normalizeSymptom(resp), nil
}
