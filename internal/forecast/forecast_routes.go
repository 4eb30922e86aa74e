package forecast

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	mw "github.com/DhavalSuthar-24/miow-forecast/internal/middleware"
)

// ForecastRoutes sets up all forecast routes behind bearer authentication.
func ForecastRoutes(router *gin.RouterGroup, db *gorm.DB, service *Service, jwtSecret string, logger zerolog.Logger) {
	forecastController := NewForecastController(service, logger)

	authRoutes := router.Group("/forecasts")
	authRoutes.Use(mw.AuthMiddleware(jwtSecret, db)) // Require authentication
	{
		authRoutes.POST("", forecastController.CreateForecast)
		authRoutes.GET("", forecastController.GetForecasts)
		authRoutes.GET("/:id", forecastController.GetForecast)
		authRoutes.GET("/:id/odds", forecastController.GetOdds)
		authRoutes.GET("/:id/fixtures", forecastController.GetFixtures)
		authRoutes.GET("/:id/standings", forecastController.GetStandings)
		authRoutes.GET("/:id/rewards", forecastController.GetRewards)
		authRoutes.GET("/:id/balls", forecastController.GetBalls)
	}
}
