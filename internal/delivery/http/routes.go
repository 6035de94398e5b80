package http

import (
	"github.com/eirinkan/Desire-Hunter/config"
	"github.com/eirinkan/Desire-Hunter/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	api.Use(TimeoutMiddleware(cfg.Server.RequestTimeout))
	{
		api.POST("/hunt", handler.Hunt)
	}

	return router
}
