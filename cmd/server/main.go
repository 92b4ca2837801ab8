package main

import (
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"homeanalyzer/server/config"
	"homeanalyzer/server/internal/alerts"
	"homeanalyzer/server/internal/api"
	"homeanalyzer/server/internal/comparables"
	"homeanalyzer/server/internal/database"
	"homeanalyzer/server/internal/geocoding"
	"homeanalyzer/server/internal/listing"
	"homeanalyzer/server/internal/market"
	"homeanalyzer/server/internal/models"
	"homeanalyzer/server/internal/scoring"
	"homeanalyzer/server/internal/valuation"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded environment from .env")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.Database.Path)
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		os.MkdirAll(dir, 0755)
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// The model handle stays usable when loading fails; analysis requests
	// surface the error until an artifact is calibrated.
	model, err := valuation.LoadModel(cfg.Model.ArtifactPath)
	if err != nil {
		logger.WithError(err).Warn("Valuation model artifact not loaded; run 'homectl calibrate' to create one")
	} else {
		logger.Infof("Loaded valuation model artifact from %s", cfg.Model.ArtifactPath)
	}

	cacheDir := filepath.Join(os.TempDir(), "homeanalyzer", "geocode_cache")
	geocoder := geocoding.NewGeocoder(logger, cacheDir)

	finder := comparables.NewFinder(db, geocoder, logger, cfg.Comparables.LookbackDays, cfg.Comparables.VelocityWindowDays)
	trendService := market.NewTrendService(db, logger)

	snapshot := market.NewSnapshot(db, logger, cfg.Comparables.VelocityWindowDays)
	if err := snapshot.Start(cfg.Market.SnapshotSchedule); err != nil {
		logger.WithError(err).Fatal("Failed to start market snapshot refresher")
	}
	defer snapshot.Stop()

	alertService := alerts.NewService(logger, &models.AlertConfig{
		IsEnabled: cfg.Alerts.Enabled,
		BotToken:  cfg.Alerts.BotToken,
		ChatID:    cfg.Alerts.ChatID,
		MinScore:  cfg.Alerts.MinScore,
	})
	alertService.SetDatabase(db)

	handler := api.NewHandler(
		scoring.NewEvaluator(cfg.Scoring.FairBand),
		model,
		listing.NewResolver(logger),
		finder,
		trendService,
		snapshot,
		alertService,
		cfg.Comparables.Limit,
		logger,
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestID())
	router.Use(cors.Default())

	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
