package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// SyncConfig holds the tuning knobs for the queue processor and the
// direct posting path.
type SyncConfig struct {
	WorkerCount       int
	BatchSize         int
	PollInterval      time.Duration
	LockTTL           time.Duration // sync_timeout: how long a lease is honoured
	MaxRetries        int
	BaseRetryDelay    time.Duration
	MaxRetryDelay     time.Duration
	BackoffMultiplier float64
	DirectMaxAttempts int
}

// HealthConfig holds health reporting intervals and thresholds.
type HealthConfig struct {
	Interval           time.Duration
	QueueWarningDepth  int
	QueueCriticalDepth int
	FailedWarning      int
	FailedCritical     int
}

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	MigrationsPath string
	RateLimit      string // ulule/limiter formatted, e.g. "100-M"

	Sync           SyncConfig
	Health         HealthConfig
	ReconInterval  time.Duration
	ReconBatchSize int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("MIGRATIONS_PATH", "migrations")
	viper.SetDefault("RATE_LIMIT", "300-M")

	viper.SetDefault("SYNC_WORKER_COUNT", 2)
	viper.SetDefault("SYNC_BATCH_SIZE", 25)
	viper.SetDefault("SYNC_POLL_INTERVAL", "5s")
	viper.SetDefault("SYNC_TIMEOUT_SECONDS", 300)
	viper.SetDefault("SYNC_MAX_RETRIES", 3)
	viper.SetDefault("SYNC_BASE_RETRY_DELAY", "30s")
	viper.SetDefault("SYNC_MAX_RETRY_DELAY", "10m")
	viper.SetDefault("SYNC_BACKOFF_MULTIPLIER", 2.0)
	viper.SetDefault("DIRECT_POST_MAX_ATTEMPTS", 3)

	viper.SetDefault("HEALTH_INTERVAL", "60s")
	viper.SetDefault("QUEUE_WARNING_DEPTH", 50)
	viper.SetDefault("QUEUE_CRITICAL_DEPTH", 200)
	viper.SetDefault("FAILED_WARNING_COUNT", 5)
	viper.SetDefault("FAILED_CRITICAL_COUNT", 25)

	viper.SetDefault("RECON_INTERVAL", "15m")
	viper.SetDefault("RECON_BATCH_SIZE", 500)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.Sync = SyncConfig{
		WorkerCount:       viper.GetInt("SYNC_WORKER_COUNT"),
		BatchSize:         viper.GetInt("SYNC_BATCH_SIZE"),
		PollInterval:      parseDurationOr("SYNC_POLL_INTERVAL", 5*time.Second),
		LockTTL:           time.Duration(viper.GetInt("SYNC_TIMEOUT_SECONDS")) * time.Second,
		MaxRetries:        viper.GetInt("SYNC_MAX_RETRIES"),
		BaseRetryDelay:    parseDurationOr("SYNC_BASE_RETRY_DELAY", 30*time.Second),
		MaxRetryDelay:     parseDurationOr("SYNC_MAX_RETRY_DELAY", 10*time.Minute),
		BackoffMultiplier: viper.GetFloat64("SYNC_BACKOFF_MULTIPLIER"),
		DirectMaxAttempts: viper.GetInt("DIRECT_POST_MAX_ATTEMPTS"),
	}

	cfg.Health = HealthConfig{
		Interval:           parseDurationOr("HEALTH_INTERVAL", time.Minute),
		QueueWarningDepth:  viper.GetInt("QUEUE_WARNING_DEPTH"),
		QueueCriticalDepth: viper.GetInt("QUEUE_CRITICAL_DEPTH"),
		FailedWarning:      viper.GetInt("FAILED_WARNING_COUNT"),
		FailedCritical:     viper.GetInt("FAILED_CRITICAL_COUNT"),
	}

	cfg.ReconInterval = parseDurationOr("RECON_INTERVAL", 15*time.Minute)
	cfg.ReconBatchSize = viper.GetInt("RECON_BATCH_SIZE")

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
