package main

import (
	"context"
	"os"
	"time"

	"github.com/DhavalSuthar-24/miow-forecast/config"
	_ "github.com/DhavalSuthar-24/miow-forecast/docs"
	"github.com/DhavalSuthar-24/miow-forecast/internal/auth"
	"github.com/DhavalSuthar-24/miow-forecast/internal/cache"
	"github.com/DhavalSuthar-24/miow-forecast/internal/forecast"
	"github.com/DhavalSuthar-24/miow-forecast/internal/history"
	"github.com/DhavalSuthar-24/miow-forecast/internal/reward"
	"github.com/DhavalSuthar-24/miow-forecast/pkg/logger"
	"github.com/DhavalSuthar-24/miow-forecast/routes"
)

// @title Miow Forecast REST API
// @version 1.0
// @description Monte-Carlo forecasts for a T20 league: title odds, simulated fixtures and fantasy points per player.
// @host localhost:8088
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logger.New(os.Getenv("APP_ENV"))

	if err := config.Initialize(log); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	cfg := config.GetConfig()
	log = logger.New(cfg.App.Env)

	err := config.DB.AutoMigrate(
		&history.Venue{}, &history.Team{}, &history.Player{},
		&history.HistoricalMatch{}, &history.Delivery{},
		&auth.Client{},
		&forecast.Run{}, &forecast.FixtureOutcome{}, &forecast.ScenarioStanding{},
		&forecast.PlayerReward{}, &forecast.BallLog{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("AutoMigrate failed")
	}
	log.Info().Msg("AutoMigrate successful")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := auth.Bootstrap(ctx, auth.NewAuthRepository(config.DB), cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap admin client")
	}

	// Redis is optional; without it every summary is rebuilt from Postgres.
	var summaries forecast.SummaryCache
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, summary cache disabled")
		} else {
			summaries = cache.NewStore(rdb, cfg.Redis.TTL)
		}
	}

	points := reward.DefaultPoints()
	if cfg.Simulation.PointsPath != "" {
		if points, err = reward.LoadPoints(cfg.Simulation.PointsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to load points table")
		}
	}

	historyRepo := history.NewGormRepository(config.DB)
	source := history.NewSource(historyRepo, cfg.Simulation.Smoothing, log)
	service := forecast.NewService(forecast.NewGormRepository(config.DB), source, summaries, points, forecast.Options{
		MaxScenarios:     cfg.Simulation.MaxScenarios,
		DefaultScenarios: cfg.Simulation.DefaultScenarios,
		Seed:             cfg.Simulation.Seed,
		Workers:          cfg.Simulation.Workers,
		TemplatePath:     cfg.Simulation.TemplatePath,
		PersistBalls:     cfg.Simulation.PersistBalls,
	}, log)

	r := routes.SetupRoutes(config.DB, cfg, log, routes.Services{
		History:  historyRepo,
		Source:   source,
		Forecast: service,
	})

	// Use port from loaded configuration
	log.Info().Str("port", cfg.App.Port).Str("env", cfg.App.Env).Msg("Starting server")
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to run server")
	}
}
