package handler

import (
	"errors"
	"net/http"

	"stomatrack/internal/models"
	"stomatrack/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, logger *zap.Logger) AuthHandler {
	return &authHandler{authService: authService, logger: logger}
}

func (h *authHandler) Register(c *gin.Context) {
	var req models.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			respondError(c, http.StatusConflict, err.Error(), "")
			return
		}
		h.logger.Error("Failed to register user", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to register user", "")
		return
	}

	respondOK(c, user)
}

func (h *authHandler) Login(c *gin.Context) {
	var req models.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "Invalid email or password", "")
			return
		}
		h.logger.Error("Failed to log in", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to log in", "")
		return
	}

	respondOK(c, token)
}
