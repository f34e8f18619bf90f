package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pricelens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/extract", handler.ExtractProduct)
		v1.POST("/search", handler.SearchProduct)
		v1.POST("/search/image", handler.ReverseImageSearch)
		v1.GET("/settings", handler.GetSettings)
		v1.PUT("/settings", handler.UpdateSettings)
		v1.DELETE("/cache", handler.ClearCache)
	}

	// Unknown message kinds from the host resolve as failures, not hangs
	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "unknown route")
	})

	return router
}
