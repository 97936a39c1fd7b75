package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string `validate:"oneof=development test staging production"`
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	// Database. An empty DatabaseURL selects the local SQLite file.
	DatabaseURL    string
	DatabaseDriver string `validate:"oneof=auto postgres sqlite"`
	SQLitePath     string

	// Redis caches advisory replies when set.
	RedisURL string

	// RabbitMQ receives relayed outbox events when set.
	RabbitMQURL string

	// Advisory scoring
	AdvisoryURL          string        `validate:"omitempty,url"`
	AdvisoryTimeout      time.Duration `validate:"gt=0"`
	AdvisoryClientID     string
	AdvisoryClientSecret string `validate:"required_with=AdvisoryClientID"`
	AdvisoryTokenURL     string `validate:"required_with=AdvisoryClientID"`
	AdvisoryScopes       []string
	AdvisoryCacheTTL     time.Duration `validate:"gte=0"`

	// Scheduling policy
	ScheduleMinBlockMinutes int `validate:"gt=0,lte=1440"`
	ScheduleMaxBlockMinutes int `validate:"gtefield=ScheduleMinBlockMinutes,lte=1440"`

	// Re-scoring job
	RescoreSchedule string        `validate:"required"`
	RescoreMaxAge   time.Duration `validate:"gt=0"`

	// Outbox
	OutboxPollInterval     time.Duration `validate:"gt=0"`
	OutboxBatchSize        int           `validate:"gt=0"`
	OutboxMaxRetries       int           `validate:"gte=0"`
	OutboxRetentionDays    int           `validate:"gte=0"`
	OutboxCleanupInterval  time.Duration `validate:"gt=0"`
	OutboxProcessorEnabled bool

	// Worker
	WorkerHealthAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabaseDriver: getEnv("DATABASE_DRIVER", "auto"),
		SQLitePath:     getEnv("SQLITE_PATH", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),

		AdvisoryURL:          getEnv("ADVISORY_URL", ""),
		AdvisoryTimeout:      getDurationEnv("ADVISORY_TIMEOUT", 5*time.Second),
		AdvisoryClientID:     getEnv("ADVISORY_CLIENT_ID", ""),
		AdvisoryClientSecret: getEnv("ADVISORY_CLIENT_SECRET", ""),
		AdvisoryTokenURL:     getEnv("ADVISORY_TOKEN_URL", ""),
		AdvisoryScopes:       getListEnv("ADVISORY_SCOPES"),
		AdvisoryCacheTTL:     getDurationEnv("ADVISORY_CACHE_TTL", 15*time.Minute),

		ScheduleMinBlockMinutes: getIntEnv("SCHEDULE_MIN_BLOCK_MINUTES", 30),
		ScheduleMaxBlockMinutes: getIntEnv("SCHEDULE_MAX_BLOCK_MINUTES", 180),

		RescoreSchedule: getEnv("RESCORE_SCHEDULE", "@every 1h"),
		RescoreMaxAge:   getDurationEnv("RESCORE_MAX_AGE", 6*time.Hour),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", time.Second),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AdvisoryEnabled reports whether an external advisor is configured.
func (c *Config) AdvisoryEnabled() bool {
	return c.AdvisoryURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	return strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' })
}
