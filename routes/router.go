package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/miow-forecast/config"
	"github.com/DhavalSuthar-24/miow-forecast/internal/auth"
	"github.com/DhavalSuthar-24/miow-forecast/internal/forecast"
	"github.com/DhavalSuthar-24/miow-forecast/internal/history"
	"github.com/DhavalSuthar-24/miow-forecast/pkg/logger"
)

// Services are the long-lived components the handlers share.
type Services struct {
	History  history.Repository
	Source   *history.Source
	Forecast *forecast.Service
}

func SetupRoutes(db *gorm.DB, cfg *config.Config, log zerolog.Logger, svc Services) *gin.Engine {
	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.GinLogger(log), gin.Recovery())
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	auth.RegisterAuthRoutes(api, db, cfg, log)
	history.HistoryRoutes(api, db, svc.History, svc.Source, cfg.JWT.AccessTokenSecret, log)
	forecast.ForecastRoutes(api, db, svc.Forecast, cfg.JWT.AccessTokenSecret, log)

	return r
}
