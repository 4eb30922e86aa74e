package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/miow-forecast/config"
	"github.com/DhavalSuthar-24/miow-forecast/internal/middleware"
	"github.com/DhavalSuthar-24/miow-forecast/pkg/rmiddleware"
)

func RegisterAuthRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, logger zerolog.Logger) {
	authRepo := NewAuthRepository(db)
	authController := NewAuthController(authRepo, appConfig, logger)

	// Public routes
	authPublic := router.Group("/auth")
	{
		authPublic.POST("/token", authController.IssueToken)
	}

	authAdmin := router.Group("/auth")
	authAdmin.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	authAdmin.Use(rmiddleware.AdminMiddleware())
	{
		authAdmin.POST("/clients", authController.CreateClient)
	}
}
