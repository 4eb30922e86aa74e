package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	App struct {
		Env  string `env:"APP_ENV" envDefault:"development"`
		Port string `env:"PORT"    envDefault:"8088"`
	}
	DB struct {
		Host     string `env:"DB_HOST"     envDefault:"localhost"`
		Port     string `env:"DB_PORT"     envDefault:"5432"`
		User     string `env:"DB_USER"     envDefault:"postgres"`
		Password string `env:"DB_PASSWORD" envDefault:"password"`
		Name     string `env:"DB_NAME"     envDefault:"forecast_db"`
		SSLMode  string `env:"DB_SSLMODE"  envDefault:"disable"`
	}
	JWT struct {
		AccessTokenSecret        string `env:"JWT_ACCESS_TOKEN_SECRET"  envDefault:"supersecret"`
		AccessTokenExpiryMinutes int    `env:"JWT_ACCESS_TOKEN_EXPIRY_MINUTES" envDefault:"60"`
	}
	Auth struct {
		// Bootstrap client created at startup when both are set.
		BootstrapClientID     string `env:"BOOTSTRAP_CLIENT_ID"`
		BootstrapClientSecret string `env:"BOOTSTRAP_CLIENT_SECRET"`
		BcryptCost            int    `env:"BCRYPT_COST" envDefault:"12"`
	}
	Redis struct {
		Addr     string        `env:"REDIS_ADDR"     envDefault:""`
		Password string        `env:"REDIS_PASSWORD" envDefault:""`
		DB       int           `env:"REDIS_DB"       envDefault:"0"`
		TTL      time.Duration `env:"REDIS_TTL"      envDefault:"24h"`
	}
	Simulation struct {
		MaxScenarios     int     `env:"SIM_MAX_SCENARIOS"     envDefault:"100"`
		DefaultScenarios int     `env:"SIM_DEFAULT_SCENARIOS" envDefault:"20"`
		Seed             uint64  `env:"SIM_SEED"              envDefault:"20240521"`
		Workers          int     `env:"SIM_WORKERS"           envDefault:"0"`
		Smoothing        float64 `env:"SIM_SMOOTHING"         envDefault:"0.5"`
		TemplatePath     string  `env:"SIM_TEMPLATE_PATH"     envDefault:"./data/template.yaml"`
		PointsPath       string  `env:"SIM_POINTS_PATH"       envDefault:""`
		PersistBalls     bool    `env:"SIM_PERSIST_BALLS"     envDefault:"true"`
	}
}

// Global DB instance, accessible after ConnectDB() is called via Initialize.
var DB *gorm.DB

var appConfig *Config
var once sync.Once // Used for singleton pattern to load config only once

// LoadConfig loads configuration from environment variables into the Config struct.
func LoadConfig(log zerolog.Logger) (*Config, error) {
	// It's okay if .env doesn't exist; production sets env vars directly.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, relying on system environment variables")
	}

	cfg := &Config{}
	var err error

	// --- App Configuration ---
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.Port = getEnv("PORT", "8088")

	// --- Database Configuration ---
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "password")
	cfg.DB.Name = getEnv("DB_NAME", "forecast_db")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	// --- JWT Configuration ---
	cfg.JWT.AccessTokenSecret = getEnv("JWT_ACCESS_TOKEN_SECRET", "your-very-strong-access-secret")
	cfg.JWT.AccessTokenExpiryMinutes, err = getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", 60)
	if err != nil {
		return nil, err
	}

	// --- Auth Configuration ---
	cfg.Auth.BootstrapClientID = getEnv("BOOTSTRAP_CLIENT_ID", "")
	cfg.Auth.BootstrapClientSecret = getEnv("BOOTSTRAP_CLIENT_SECRET", "")
	if cfg.Auth.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}

	// --- Redis Configuration ---
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	if cfg.Redis.DB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Redis.TTL, err = time.ParseDuration(getEnv("REDIS_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("env var REDIS_TTL: %w", err)
	}

	// --- Simulation Configuration ---
	if cfg.Simulation.MaxScenarios, err = getEnvAsInt("SIM_MAX_SCENARIOS", 100); err != nil {
		return nil, err
	}
	if cfg.Simulation.DefaultScenarios, err = getEnvAsInt("SIM_DEFAULT_SCENARIOS", 20); err != nil {
		return nil, err
	}
	if cfg.Simulation.Seed, err = strconv.ParseUint(getEnv("SIM_SEED", "20240521"), 10, 64); err != nil {
		return nil, fmt.Errorf("env var SIM_SEED: %w", err)
	}
	if cfg.Simulation.Workers, err = getEnvAsInt("SIM_WORKERS", 0); err != nil {
		return nil, err
	}
	if cfg.Simulation.Smoothing, err = strconv.ParseFloat(getEnv("SIM_SMOOTHING", "0.5"), 64); err != nil {
		return nil, fmt.Errorf("env var SIM_SMOOTHING: %w", err)
	}
	cfg.Simulation.TemplatePath = getEnv("SIM_TEMPLATE_PATH", "./data/template.yaml")
	cfg.Simulation.PointsPath = getEnv("SIM_POINTS_PATH", "")
	if cfg.Simulation.PersistBalls, err = strconv.ParseBool(getEnv("SIM_PERSIST_BALLS", "true")); err != nil {
		return nil, fmt.Errorf("env var SIM_PERSIST_BALLS: %w", err)
	}

	if cfg.Simulation.MaxScenarios < 1 {
		return nil, fmt.Errorf("SIM_MAX_SCENARIOS must be positive, got %d", cfg.Simulation.MaxScenarios)
	}
	if cfg.Simulation.DefaultScenarios < 1 || cfg.Simulation.DefaultScenarios > cfg.Simulation.MaxScenarios {
		cfg.Simulation.DefaultScenarios = cfg.Simulation.MaxScenarios
	}

	if cfg.JWT.AccessTokenSecret == "your-very-strong-access-secret" {
		log.Warn().Msg("Using default JWT secret. Set JWT_ACCESS_TOKEN_SECRET for production.")
	}
	if cfg.DB.Password == "password" && cfg.App.Env == "production" {
		log.Warn().Msg("Using default DB password in production. Set DB_PASSWORD.")
	}

	appConfig = cfg
	return cfg, nil
}

// ConnectDB establishes a connection to the database using the provided configuration.
func ConnectDB(dbCfg Config, log zerolog.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		dbCfg.DB.Host,
		dbCfg.DB.User,
		dbCfg.DB.Password,
		dbCfg.DB.Name,
		dbCfg.DB.Port,
		dbCfg.DB.SSLMode,
	)

	gormConfig := &gorm.Config{}
	if dbCfg.App.Env == "development" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info) // Log SQL queries in development
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	gormDB, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = gormDB
	log.Info().Str("host", dbCfg.DB.Host).Str("db", dbCfg.DB.Name).Msg("Successfully connected to database")
	return gormDB, nil
}

// Initialize loads all configurations and connects to the database.
// This should be called once at the start of the application.
func Initialize(log zerolog.Logger) error {
	var loadErr error
	once.Do(func() {
		loadedCfg, err := LoadConfig(log)
		if err != nil {
			loadErr = fmt.Errorf("failed to load configuration: %w", err)
			return
		}
		if _, err = ConnectDB(*loadedCfg, log); err != nil {
			loadErr = fmt.Errorf("failed to connect to database during initialization: %w", err)
			return
		}
	})
	return loadErr
}

// GetConfig returns the loaded application configuration, or nil before
// Initialize has succeeded.
func GetConfig() *Config {
	return appConfig
}

// Helper function to get an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get an environment variable as an integer or return a default value.
func getEnvAsInt(key string, fallback int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected integer, got '%s'", key, valueStr)
	}
	return value, nil
}
