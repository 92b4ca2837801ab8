package config

import "github.com/caarlos0/env/v6"

type Config struct {
	Server struct {
		Port string `env:"SERVER_PORT" envDefault:"5250"`
	}

	Database struct {
		// Path to the SQLite sales database
		Path string `env:"DATABASE_PATH" envDefault:"database/homeanalyzer.db"`
	}

	Model struct {
		// Path to the valuation model artifact (JSON coefficients)
		ArtifactPath string `env:"MODEL_ARTIFACT_PATH" envDefault:"model/artifact.json"`
	}

	Scoring struct {
		// Half-width of the fairly-priced band around the model estimate.
		// A listing within ±FairBand of predicted value is "fairly_priced".
		FairBand float64 `env:"SCORING_FAIR_BAND" envDefault:"0.07"`
	}

	Comparables struct {
		// Default number of comparable sales returned per analysis
		Limit int `env:"COMPARABLES_LIMIT" envDefault:"5"`

		// How far back to look for comparable sales (in days)
		LookbackDays int `env:"COMPARABLES_LOOKBACK_DAYS" envDefault:"365"`

		// Window used to measure sale velocity for the market-timing signal (in days)
		VelocityWindowDays int `env:"COMPARABLES_VELOCITY_WINDOW_DAYS" envDefault:"90"`
	}

	Market struct {
		// Cron expression for refreshing the per-city market snapshot
		SnapshotSchedule string `env:"MARKET_SNAPSHOT_SCHEDULE" envDefault:"@every 1h"`
	}

	Alerts struct {
		Enabled  bool    `env:"ALERTS_ENABLED" envDefault:"false"`
		BotToken string  `env:"ALERTS_BOT_TOKEN"`
		ChatID   string  `env:"ALERTS_CHAT_ID"`
		MinScore float64 `env:"ALERTS_MIN_SCORE" envDefault:"9.0"`
	}

	// BatchProcessing configuration for the sales ingest pipeline
	BatchProcessing struct {
		// Maximum number of sales to accumulate before processing
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
