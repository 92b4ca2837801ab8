package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"homeanalyzer/server/config"
	"homeanalyzer/server/internal/database"
	"homeanalyzer/server/internal/ingest"
	"homeanalyzer/server/internal/models"
	"homeanalyzer/server/internal/valuation"
)

var (
	dbPath       string
	seedCount    int
	seedValue    int64
	artifactPath string
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	rootCmd := &cobra.Command{
		Use:   "homectl",
		Short: "Maintenance commands for the HomeAnalyzer backend",
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.Database.Path, "path to the SQLite sales database")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate synthetic sales and ingest them into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cfg, logger)
		},
	}
	seedCmd.Flags().IntVar(&seedCount, "count", 5000, "number of sales to generate")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 42, "random seed (same seed reproduces the same sales)")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Fit the valuation model artifact from recorded sales",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalibrate(cfg, logger)
		},
	}
	calibrateCmd.Flags().StringVar(&artifactPath, "out", cfg.Model.ArtifactPath, "where to write the model artifact")

	rootCmd.AddCommand(seedCmd, calibrateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cfg *config.Config, logger *logrus.Logger) error {
	if dir := filepath.Dir(dbPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}

	db, err := database.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %v", err)
	}

	orm, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to open GORM connection: %v", err)
	}

	queue := ingest.NewSaleQueue(cfg.BatchProcessing.MaxBatchSize, logger)
	processor := ingest.NewBatchProcessor(orm, queue, cfg, logger)
	processor.Start()

	generator := ingest.NewGenerator(seedValue)
	sales := generator.Generate(seedCount)

	batchSize := cfg.BatchProcessing.MaxBatchSize
	pushed := 0
	for start := 0; start < len(sales); start += batchSize {
		end := start + batchSize
		if end > len(sales) {
			end = len(sales)
		}
		batch := sales[start:end]

		for {
			err := queue.Push(batch)
			if err == nil {
				pushed += len(batch)
				break
			}
			if err == ingest.ErrQueueFull {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return fmt.Errorf("failed to push batch: %v", err)
		}
	}

	// Closing the queue lets the workers drain it; Stop waits for them
	queue.Close()
	processor.Stop()

	logger.Infof("Seeded %d sales into %s", pushed, dbPath)
	return nil
}

func runCalibrate(cfg *config.Config, logger *logrus.Logger) error {
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %v", err)
	}
	defer db.Close()

	artifact := valuation.DefaultArtifact()

	cities, err := db.Cities()
	if err != nil {
		return fmt.Errorf("failed to list cities: %v", err)
	}

	stats := make([]models.CityStats, 0, len(cities))
	for _, city := range cities {
		cityStats, err := db.CityStats(city)
		if err != nil {
			return fmt.Errorf("failed to aggregate %s: %v", city, err)
		}
		stats = append(stats, cityStats)
	}

	if rate, ok := valuation.CalibrateBaseRate(stats); ok {
		artifact.BasePricePerSqft = rate
		logger.Infof("Fitted base price per sqft across %d cities: %.2f", len(stats), rate)
	} else {
		logger.Warn("No recorded sales; writing default coefficients")
	}

	if dir := filepath.Dir(artifactPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	if err := valuation.SaveArtifact(artifactPath, artifact); err != nil {
		return fmt.Errorf("failed to write artifact: %v", err)
	}

	logger.Infof("Wrote model artifact to %s", artifactPath)
	return nil
}
