package handler

import (
	"errors"
	"io"
	"net/http"

	"stomatrack/internal/analysis"
	"stomatrack/internal/imagestore"
	"stomatrack/internal/middleware"
	"stomatrack/internal/models"
	"stomatrack/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxImageRequestBytes bounds the analyze-image body: the base64 image plus room for the JSON envelope.
const maxImageRequestBytes = int64(imagestore.MaxImageBytes)/3*4 + 64<<10

type AIHandler interface {
	ParseMultiEntry(c *gin.Context)
	AnalyzeImage(c *gin.Context)
	AnalyzeIngredients(c *gin.Context)
	AnalyzeSymptoms(c *gin.Context)
	MealPlan(c *gin.Context)
	Recommendations(c *gin.Context)
}

type aiHandler struct {
	ai     service.AIService
	logger *zap.Logger
}

func NewAIHandler(ai service.AIService, logger *zap.Logger) AIHandler {
	return &aiHandler{ai: ai, logger: logger}
}

// fail maps AI pipeline errors: bad input is 400, anything else a generic 500.
func (h *aiHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, analysis.ErrEmptyDescription), errors.Is(err, imagestore.ErrInvalidImage):
		badRequest(c, err)
	default:
		h.logger.Error("AI request failed", zap.String("operation", op), zap.String("user_id", middleware.UserID(c)), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "AI analysis failed", "Please try again later")
	}
}

// ParseMultiEntry handles POST /api/ai/parse-multi-entry
func (h *aiHandler) ParseMultiEntry(c *gin.Context) {
	var req models.ParseMultiEntryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	userID, ok := authorizedUser(c, req.UserID)
	if !ok {
		return
	}

	result, err := h.ai.ParseMultiEntry(c.Request.Context(), userID, req)
	if err != nil {
		h.fail(c, "parse-multi-entry", err)
		return
	}
	respondOK(c, result)
}

// AnalyzeImage handles POST /api/ai/analyze-image
func (h *aiHandler) AnalyzeImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageRequestBytes)
	var req models.AnalyzeImageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	userID, ok := authorizedUser(c, req.UserID)
	if !ok {
		return
	}

	result, err := h.ai.AnalyzeImage(c.Request.Context(), userID, req)
	if err != nil {
		h.fail(c, "analyze-image", err)
		return
	}
	respondOK(c, result)
}

// AnalyzeIngredients handles POST /api/ai/analyze-ingredients
func (h *aiHandler) AnalyzeIngredients(c *gin.Context) {
	var req models.AnalyzeIngredientsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := authorizedUser(c, req.UserID); !ok {
		return
	}

	result, err := h.ai.AnalyzeIngredients(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "analyze-ingredients", err)
		return
	}
	respondOK(c, result)
}

// AnalyzeSymptoms handles POST /api/ai/analyze-symptoms
func (h *aiHandler) AnalyzeSymptoms(c *gin.Context) {
	var req models.AnalyzeSymptomsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	userID, ok := authorizedUser(c, req.UserID)
	if !ok {
		return
	}

	result, err := h.ai.AnalyzeSymptoms(c.Request.Context(), userID, req)
	if err != nil {
		h.fail(c, "analyze-symptoms", err)
		return
	}
	respondOK(c, result)
}

// MealPlan handles POST /api/ai/meal-plan
func (h *aiHandler) MealPlan(c *gin.Context) {
	var req models.MealPlanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := authorizedUser(c, req.UserID); !ok {
		return
	}

	result, err := h.ai.MealPlan(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "meal-plan", err)
		return
	}
	respondOK(c, result)
}

// Recommendations handles POST /api/ai/recommendations. The body is optional.
func (h *aiHandler) Recommendations(c *gin.Context) {
	var req models.RecommendationsInput
	// io.EOF means no body at all, including chunked requests.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	userID, ok := authorizedUser(c, req.UserID)
	if !ok {
		return
	}

	result, err := h.ai.Recommendations(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "recommendations", err)
		return
	}
	respondOK(c, result)
}
