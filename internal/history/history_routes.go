package history

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	mw "github.com/DhavalSuthar-24/miow-forecast/internal/middleware"
	"github.com/DhavalSuthar-24/miow-forecast/pkg/rmiddleware"
)

// HistoryRoutes sets up the historical store routes. Reads need a token,
// ingestion needs an admin token.
func HistoryRoutes(router *gin.RouterGroup, db *gorm.DB, repo Repository, source *Source, jwtSecret string, logger zerolog.Logger) {
	historyController := NewHistoryController(repo, source, logger)

	authRoutes := router.Group("/history")
	authRoutes.Use(mw.AuthMiddleware(jwtSecret, db))
	{
		authRoutes.GET("/matches", historyController.GetMatches)
		authRoutes.GET("/matches/:id", historyController.GetMatchByID)
		authRoutes.GET("/universe", historyController.GetUniverse)
	}

	adminRoutes := router.Group("/history")
	adminRoutes.Use(mw.AuthMiddleware(jwtSecret, db))
	adminRoutes.Use(rmiddleware.AdminMiddleware())
	{
		adminRoutes.POST("/matches", historyController.IngestMatch)
	}
}
