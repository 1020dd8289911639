package handler

import (
	"errors"
	"net/http"
	"strconv"

	"stomatrack/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultActivityLimit = 10
	defaultStatsDays     = 7
	maxStatsDays         = 365
)

var errInvalidDays = errors.New("days must be an integer between 1 and 365")

type DashboardHandler interface {
	Stats(c *gin.Context)
	Activity(c *gin.Context)
}

type dashboardHandler struct {
	dashboard service.DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard service.DashboardService, logger *zap.Logger) DashboardHandler {
	return &dashboardHandler{dashboard: dashboard, logger: logger}
}

// Stats handles GET /api/dashboard/stats?days=
func (h *dashboardHandler) Stats(c *gin.Context) {
	userID, ok := authorizedUser(c, c.Query("userId"))
	if !ok {
		return
	}

	days := defaultStatsDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxStatsDays {
			badRequest(c, errInvalidDays)
			return
		}
		days = n
	}

	stats, err := h.dashboard.Stats(c.Request.Context(), userID, days)
	if err != nil {
		h.logger.Error("Failed to load dashboard stats", zap.String("user_id", userID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to retrieve stats", "")
		return
	}
	respondOK(c, stats)
}

// Activity handles GET /api/dashboard/activity?limit=
func (h *dashboardHandler) Activity(c *gin.Context) {
	userID, limit, ok := listQuery(c, defaultActivityLimit)
	if !ok {
		return
	}

	items, err := h.dashboard.Activity(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("Failed to load activity", zap.String("user_id", userID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to retrieve activity", "")
		return
	}
	respondOK(c, items)
}
