package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-agent-registry/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/registry-entries/query", middleware.Auth(authCfg), handler.QueryEntries)
	}
}
