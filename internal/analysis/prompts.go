package analysis

import (
	"fmt"
	"strings"
	"time"

	"stomatrack/internal/models"
)

const systemInstruction = `You are a clinical nutrition assistant for people living with a colostomy or ileostomy.
You assess foods and symptoms for ostomy-specific concerns: blockage risk, gas production,
output thickening or loosening, odour, dehydration and skin irritation.
Always answer with a single JSON object and nothing else. Never give a diagnosis.`

const foodPrompt = `Analyse this %s entry from an ostomy patient's food diary.

Entry: %q

Return JSON:
{
  "flags": ["short lowercase tags such as high-fiber, gas-producing, blockage-risk, spicy, dairy, dehydrating"],
  "riskLevel": "low" | "medium" | "high",
  "confidence": number between 0 and 1,
  "insights": ["one or two short practical observations"]
}`

const symptomPrompt = `Analyse this %s entry from an ostomy patient's health log.

Entry: %q

Return JSON:
{
  "flags": ["short lowercase tags such as cramping, bloating, high-output, dehydration-signs, skin-irritation"],
  "severity": "mild" | "moderate" | "severe",
  "confidence": number between 0 and 1,
  "insights": ["one or two short practical observations"]
}
Use "severe" only for signs that need prompt medical attention (no output with pain and vomiting,
bleeding, signs of dehydration).`

const multiEntryPrompt = `Split this free-text ostomy log into structured records.

Reference time: %s (%s, local hour %d). Relative expressions ("this morning", "an hour later")
are offsets from the reference time in minutes; negative means before it.

Text: %q

Include a key ONLY for categories the text actually mentions. Omit the others entirely.
{
  "meal": {"mealType": "breakfast|lunch|dinner|snack|drinks", "description": "...", "ingredients": ["..."], "portionSize": "small|medium|large", "offsetMinutes": 0},
  "gas": {"intensity": 1-10, "durationMinutes": 0, "suspectedTriggers": ["..."], "notes": "...", "offsetMinutes": 0},
  "output": {"consistency": "liquid|loose|soft|formed|hard", "volume": "small|medium|large", "color": "...", "painLevel": 0-10, "notes": "...", "offsetMinutes": 0},
  "irrigation": {"quality": "excellent|good|fair|poor", "completeness": 1-10, "comfort": 1-10, "durationMinutes": 0, "notes": "...", "offsetMinutes": 0},
  "symptom": {"symptoms": ["..."], "severity": "mild|moderate|severe", "description": "...", "offsetMinutes": 0}
}`

const imagePrompt = `Identify the food in this photo for an ostomy patient's meal log.%s

Return JSON:
{
  "detectedFoods": ["..."],
  "description": "one sentence",
  "suggestedMealType": "breakfast|lunch|dinner|snack|drinks",
  "estimatedPortion": "small|medium|large",
  "riskLevel": "low" | "medium" | "high",
  "flags": ["short lowercase tags"],
  "confidence": number between 0 and 1,
  "insights": ["..."]
}`

const ingredientsPrompt = `Assess each ingredient for an ostomy patient.

Ingredients: %s

Return JSON:
{
  "ingredients": [{"name": "...", "riskLevel": "low|medium|high", "reason": "..."}],
  "overallRisk": "low" | "medium" | "high",
  "flags": ["short lowercase tags"],
  "confidence": number between 0 and 1,
  "insights": ["..."],
  "alternatives": ["safer substitutes"]
}`

const symptomAnalysisPrompt = `An ostomy patient reports these symptoms: %s.
%s
Meals in the previous 24 hours:
%s

Return JSON:
{
  "severity": "mild" | "moderate" | "severe",
  "likelyTriggers": ["foods or habits from the list above"],
  "recommendations": ["..."],
  "seekCare": true | false,
  "flags": ["short lowercase tags"],
  "confidence": number between 0 and 1,
  "insights": ["..."]
}`

const mealPlanPrompt = `Create a %d-day ostomy-friendly meal plan.
Preferences: %s
Restrictions: %s

Return JSON:
{
  "days": [{"day": 1, "meals": [{"mealType": "breakfast|lunch|dinner|snack|drinks", "name": "...", "ingredients": ["..."], "notes": "..."}]}],
  "notes": ["general guidance"]
}`

const recommendationsPrompt = `Review this ostomy patient's recent log and give personalised advice.

Recent meals:
%s
Recent gas episodes:
%s
Recent outputs:
%s
Recent flagged entries:
%s

Return JSON:
{
  "summary": "two sentences",
  "recommendations": [{"title": "...", "detail": "...", "priority": "low|medium|high"}]
}`

func buildFoodPrompt(category models.Category, description string) string {
	return fmt.Sprintf(foodPrompt, category, description)
}

func buildSymptomPrompt(category models.Category, description string) string {
	return fmt.Sprintf(symptomPrompt, category, description)
}

func buildMultiEntryPrompt(description string, base time.Time) string {
	return fmt.Sprintf(multiEntryPrompt, base.Format(time.RFC3339), base.Weekday(), base.Hour(), description)
}

func buildImagePrompt(mealType models.Category) string {
	hint := ""
	if mealType != "" {
		hint = fmt.Sprintf(" The user logged it as %s.", mealType)
	}
	return fmt.Sprintf(imagePrompt, hint)
}

func buildIngredientsPrompt(ingredients []string) string {
	return fmt.Sprintf(ingredientsPrompt, strings.Join(ingredients, ", "))
}

func buildSymptomAnalysisPrompt(symptoms []string, description string, meals []models.Meal) string {
	extra := ""
	if description != "" {
		extra = fmt.Sprintf("Details: %q\n", description)
	}
	return fmt.Sprintf(symptomAnalysisPrompt, strings.Join(symptoms, ", "), extra, formatMeals(meals))
}

func buildMealPlanPrompt(days int, preferences, restrictions []string) string {
	return fmt.Sprintf(mealPlanPrompt, days, joinOrNone(preferences), joinOrNone(restrictions))
}

func buildRecommendationsPrompt(data RecentData) string {
	var gas, outputs, entries []string
	for _, g := range data.Gas {
		gas = append(gas, fmt.Sprintf("- %s intensity %d/10, %d min, triggers: %s",
			g.Timestamp.Format(time.RFC3339), g.Intensity, g.DurationMinutes, joinOrNone(g.SuspectedTriggers)))
	}
	for _, o := range data.Outputs {
		outputs = append(outputs, fmt.Sprintf("- %s %s, %s volume", o.Timestamp.Format(time.RFC3339), o.Consistency, o.Volume))
	}
	for _, e := range data.Entries {
		if e.RiskLevel == models.RiskLow {
			continue
		}
		entries = append(entries, fmt.Sprintf("- %s [%s/%s] %s", e.Timestamp.Format(time.RFC3339), e.Category, e.RiskLevel, e.Description))
	}
	return fmt.Sprintf(recommendationsPrompt, formatMeals(data.Meals), linesOrNone(gas), linesOrNone(outputs), linesOrNone(entries))
}

func formatMeals(meals []models.Meal) string {
	lines := make([]string, 0, len(meals))
	for _, m := range meals {
		lines = append(lines, fmt.Sprintf("- %s %s: %s", m.Timestamp.Format(time.RFC3339), m.MealType, m.Description))
	}
	return linesOrNone(lines)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func linesOrNone(lines []string) string {
	if len(lines) == 0 {
		return "none"
	}
	return strings.Join(lines, "\n")
}
