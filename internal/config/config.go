package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field maps 1:1 to a documented env var.
type Config struct {
	// Server
	Port           int    `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"` // development | production
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	WorkerPoolSize int    `mapstructure:"WORKER_POOL_SIZE"`
	FrontendURL    string `mapstructure:"FRONTEND_URL"`

	// Database
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DBAutoMigrate bool   `mapstructure:"DB_AUTO_MIGRATE"`

	// Redis (empty disables the archival lock and snapshot queue)
	RedisURL string `mapstructure:"REDIS_URL"`

	// Auth
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Archive
	ArchiveLockTTLSeconds int `mapstructure:"ARCHIVE_LOCK_TTL_SECONDS"`
	RateLimitPerMinute    int `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	// Snapshots (empty bucket disables uploads)
	SnapshotBucket   string `mapstructure:"SNAPSHOT_S3_BUCKET"`
	SnapshotPrefix   string `mapstructure:"SNAPSHOT_S3_PREFIX"`
	SnapshotRegion   string `mapstructure:"SNAPSHOT_S3_REGION"`
	SnapshotEndpoint string `mapstructure:"SNAPSHOT_S3_ENDPOINT"`
}

// ErrMissingJWTSecret is returned by Load in production when JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required in production")

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	// Optional .env file for local development; does not fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WORKER_POOL_SIZE", 2)
	v.SetDefault("FRONTEND_URL", "")
	v.SetDefault("DATABASE_URL", "sqlite://minipos.db")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ARCHIVE_LOCK_TTL_SECONDS", 120)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 600)
	v.SetDefault("SNAPSHOT_S3_BUCKET", "")
	v.SetDefault("SNAPSHOT_S3_PREFIX", "archive/")
	v.SetDefault("SNAPSHOT_S3_REGION", "us-east-1")
	v.SetDefault("SNAPSHOT_S3_ENDPOINT", "")
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// ArchiveLockTTL is the lifetime of the single-writer archival lock.
func (c *Config) ArchiveLockTTL() time.Duration {
	if c.ArchiveLockTTLSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.ArchiveLockTTLSeconds) * time.Second
}
