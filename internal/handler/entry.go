package handler

import (
	"net/http"

	"stomatrack/internal/models"
	"stomatrack/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultEntryLimit = 20

type EntryHandler interface {
	CreateEntry(c *gin.Context)
	ListEntries(c *gin.Context)
}

type entryHandler struct {
	entryService service.EntryService
	logger       *zap.Logger
}

func NewEntryHandler(entryService service.EntryService, logger *zap.Logger) EntryHandler {
	return &entryHandler{entryService: entryService, logger: logger}
}

// CreateEntry handles POST /api/entries. The entry is stored even when AI
// analysis fails; analysisFallback marks that case.
func (h *entryHandler) CreateEntry(c *gin.Context) {
	var req models.CreateEntryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	userID, ok := authorizedUser(c, req.UserID)
	if !ok {
		return
	}

	entry, err := h.entryService.CreateEntry(c.Request.Context(), userID, req)
	if err != nil {
		h.logger.Error("Failed to create entry", zap.String("user_id", userID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to create entry", "")
		return
	}
	respondOK(c, entry)
}

// ListEntries handles GET /api/entries?userId=&limit=
func (h *entryHandler) ListEntries(c *gin.Context) {
	userID, limit, ok := listQuery(c, defaultEntryLimit)
	if !ok {
		return
	}

	entries, err := h.entryService.ListEntries(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("Failed to list entries", zap.String("user_id", userID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to retrieve entries", "")
		return
	}
	respondOK(c, entries)
}
