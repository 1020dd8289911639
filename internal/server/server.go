package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"stomatrack/internal/analysis"
	"stomatrack/internal/config"
	"stomatrack/internal/handler"
	"stomatrack/internal/imagestore"
	"stomatrack/internal/middleware"
	"stomatrack/internal/notify"
	"stomatrack/internal/repository"
	"stomatrack/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ModelInfoSource reports the configured AI providers for /health.
type ModelInfoSource interface {
	GetProvidersInfo() []map[string]interface{}
}

// Dependencies are the long-lived resources built by the caller. Provider,
// Models, Notifier and Images may be nil.
type Dependencies struct {
	DB       *sqlx.DB
	Provider analysis.Provider
	Models   ModelInfoSource
	Notifier notify.Notifier
	Images   imagestore.Store
}

type Server struct {
	router     *gin.Engine
	cfg        *config.Config
	deps       Dependencies
	logger     *zap.Logger
	httpServer *http.Server
}

func NewServer(cfg *config.Config, deps Dependencies, logger *zap.Logger) *Server {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if err := handler.RegisterValidators(); err != nil {
		logger.Error("Failed to register request validators", zap.Error(err))
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), cors())

	s := &Server{
		router: router,
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}
	return s
}

func (s *Server) setupRoutes() {
	db := s.deps.DB

	userRepo := repository.NewUserRepository(db, s.logger)
	entryRepo := repository.NewEntryRepository(db, s.logger)
	trackingRepo := repository.NewTrackingRepository(db, s.logger)
	dashboardRepo := repository.NewDashboardRepository(db, s.logger)

	timeout := s.cfg.AI.Timeout
	classifier := analysis.NewClassifier(s.deps.Provider, timeout, s.logger)
	parser := analysis.NewParser(s.deps.Provider, timeout, s.logger)
	advisor := analysis.NewAdvisor(s.deps.Provider, timeout, s.logger)

	authService := service.NewAuthService(userRepo, s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL, s.logger)
	entryService := service.NewEntryService(entryRepo, classifier, s.deps.Notifier, s.logger)
	trackingService := service.NewTrackingService(trackingRepo, s.logger)
	dashboardService := service.NewDashboardService(dashboardRepo, entryRepo, trackingRepo, s.logger)
	aiService := service.NewAIService(parser, advisor, entryService, entryRepo, trackingRepo, s.deps.Images, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	entryHandler := handler.NewEntryHandler(entryService, s.logger)
	trackingHandler := handler.NewTrackingHandler(trackingService, s.logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, s.logger)
	aiHandler := handler.NewAIHandler(aiService, s.logger)

	s.router.GET("/health", s.health)

	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	api := s.router.Group("/api")
	api.Use(middleware.AuthMiddleware(authService, s.logger))
	{
		api.POST("/entries", entryHandler.CreateEntry)
		api.GET("/entries", entryHandler.ListEntries)

		api.POST("/meals", trackingHandler.CreateMeal)
		api.GET("/meals", trackingHandler.ListMeals)
		api.POST("/gas", trackingHandler.CreateGasSession)
		api.GET("/gas", trackingHandler.ListGasSessions)
		api.POST("/outputs", trackingHandler.CreateOutput)
		api.GET("/outputs", trackingHandler.ListOutputs)
		api.POST("/irrigations", trackingHandler.CreateIrrigation)
		api.GET("/irrigations", trackingHandler.ListIrrigations)

		api.GET("/dashboard/stats", dashboardHandler.Stats)
		api.GET("/dashboard/activity", dashboardHandler.Activity)

		ai := api.Group("/ai")
		ai.POST("/parse-multi-entry", aiHandler.ParseMultiEntry)
		ai.POST("/analyze-image", aiHandler.AnalyzeImage)
		ai.POST("/analyze-ingredients", aiHandler.AnalyzeIngredients)
		ai.POST("/analyze-symptoms", aiHandler.AnalyzeSymptoms)
		ai.POST("/meal-plan", aiHandler.MealPlan)
		ai.POST("/recommendations", aiHandler.Recommendations)
	}
}

// health reports liveness, database reachability and the AI providers.
func (s *Server) health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if err := s.deps.DB.PingContext(c.Request.Context()); err != nil {
		s.logger.Error("Database ping failed", zap.Error(err))
		status, code = "degraded", http.StatusServiceUnavailable
	}

	providers := []map[string]interface{}{}
	if s.deps.Models != nil {
		providers = s.deps.Models.GetProvidersInfo()
	}

	c.JSON(code, gin.H{
		"status":       status,
		"service":      "stomatrack",
		"ai_enabled":   s.deps.Provider != nil,
		"ai_providers": providers,
	})
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run blocks serving HTTP until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("Server starting", zap.String("address", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
