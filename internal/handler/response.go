package handler

import (
	"errors"
	"net/http"
	"strconv"

	"stomatrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

const maxLimit = 100

var errInvalidLimit = errors.New("limit must be a positive integer")

// Response is the envelope every /api route answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, msg string, detail string) {
	c.JSON(status, Response{Success: false, Error: msg, Message: detail})
}

func badRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "Invalid request", err.Error())
}

// authorizedUser returns the token's user id. A non-empty claimed id that
// differs from it answers 403 and returns false.
func authorizedUser(c *gin.Context, claimed string) (string, bool) {
	userID := middleware.UserID(c)
	if claimed != "" && claimed != userID {
		respondError(c, http.StatusForbidden, "Access denied", "userId does not match the authenticated user")
		return "", false
	}
	return userID, true
}

// parseLimit reads ?limit=, falling back to def and capping at maxLimit.
func parseLimit(c *gin.Context, def int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errInvalidLimit
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, nil
}

// listQuery resolves the user and limit of a GET list route. It writes the
// error response itself and returns false on failure.
func listQuery(c *gin.Context, defaultLimit int) (string, int, bool) {
	userID, ok := authorizedUser(c, c.Query("userId"))
	if !ok {
		return "", 0, false
	}
	limit, err := parseLimit(c, defaultLimit)
	if err != nil {
		badRequest(c, err)
		return "", 0, false
	}
	return userID, limit, true
}
