package handler

import (
	"context"
	"net/http"

	"stomatrack/internal/models"
	"stomatrack/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultTrackingLimit   = 20
	defaultIrrigationLimit = 10
)

type TrackingHandler interface {
	CreateMeal(c *gin.Context)
	ListMeals(c *gin.Context)
	CreateGasSession(c *gin.Context)
	ListGasSessions(c *gin.Context)
	CreateOutput(c *gin.Context)
	ListOutputs(c *gin.Context)
	CreateIrrigation(c *gin.Context)
	ListIrrigations(c *gin.Context)
}

type trackingHandler struct {
	tracking service.TrackingService
	logger   *zap.Logger
}

func NewTrackingHandler(tracking service.TrackingService, logger *zap.Logger) TrackingHandler {
	return &trackingHandler{tracking: tracking, logger: logger}
}

// create binds the body, checks ownership and stores the record.
func create[In any, Out any](c *gin.Context, logger *zap.Logger, kind string, ownerOf func(*In) string,
	store func(ctx context.Context, userID string, in In) (Out, error)) {
	var req In
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	userID, ok := authorizedUser(c, ownerOf(&req))
	if !ok {
		return
	}

	out, err := store(c.Request.Context(), userID, req)
	if err != nil {
		logger.Error("Failed to create "+kind, zap.String("user_id", userID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to create "+kind, "")
		return
	}
	respondOK(c, out)
}

func list[Out any](c *gin.Context, logger *zap.Logger, kind string, defaultLimit int,
	load func(ctx context.Context, userID string, limit int) ([]Out, error)) {
	userID, limit, ok := listQuery(c, defaultLimit)
	if !ok {
		return
	}

	out, err := load(c.Request.Context(), userID, limit)
	if err != nil {
		logger.Error("Failed to list "+kind, zap.String("user_id", userID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to retrieve "+kind, "")
		return
	}
	respondOK(c, out)
}

// CreateMeal handles POST /api/meals
func (h *trackingHandler) CreateMeal(c *gin.Context) {
	create(c, h.logger, "meal", func(in *models.CreateMealInput) string { return in.UserID }, h.tracking.CreateMeal)
}

// ListMeals handles GET /api/meals
func (h *trackingHandler) ListMeals(c *gin.Context) {
	list(c, h.logger, "meals", defaultTrackingLimit, h.tracking.ListMeals)
}

// CreateGasSession handles POST /api/gas
func (h *trackingHandler) CreateGasSession(c *gin.Context) {
	create(c, h.logger, "gas session", func(in *models.CreateGasInput) string { return in.UserID }, h.tracking.CreateGasSession)
}

// ListGasSessions handles GET /api/gas
func (h *trackingHandler) ListGasSessions(c *gin.Context) {
	list(c, h.logger, "gas sessions", defaultTrackingLimit, h.tracking.ListGasSessions)
}

// CreateOutput handles POST /api/outputs
func (h *trackingHandler) CreateOutput(c *gin.Context) {
	create(c, h.logger, "output", func(in *models.CreateOutputInput) string { return in.UserID }, h.tracking.CreateOutput)
}

// ListOutputs handles GET /api/outputs
func (h *trackingHandler) ListOutputs(c *gin.Context) {
	list(c, h.logger, "outputs", defaultTrackingLimit, h.tracking.ListOutputs)
}

// CreateIrrigation handles POST /api/irrigations
func (h *trackingHandler) CreateIrrigation(c *gin.Context) {
	create(c, h.logger, "irrigation", func(in *models.CreateIrrigationInput) string { return in.UserID }, h.tracking.CreateIrrigation)
}

// ListIrrigations handles GET /api/irrigations
func (h *trackingHandler) ListIrrigations(c *gin.Context) {
	list(c, h.logger, "irrigations", defaultIrrigationLimit, h.tracking.ListIrrigations)
}
