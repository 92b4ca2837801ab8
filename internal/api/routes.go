package api

import "github.com/gin-gonic/gin"

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.POST("/analyze-property", handler.AnalyzeProperty)
		api.POST("/neighborhood-trends", handler.NeighborhoodTrends)
		api.GET("/health", handler.Health)
	}
}
