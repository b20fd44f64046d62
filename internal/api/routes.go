package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/pods", handler.Upload)
		v1.GET("/pods/:record_id", handler.GetTransaction)

		admin := v1.Group("/admin")
		{
			admin.GET("/transactions/export", handler.ExportTransactions)
		}
	}
}
