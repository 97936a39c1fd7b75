package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so host settings do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL", "LOG_FORMAT",
		"DATABASE_URL", "DATABASE_DRIVER", "SQLITE_PATH",
		"REDIS_URL", "RABBITMQ_URL",
		"ADVISORY_URL", "ADVISORY_TIMEOUT", "ADVISORY_CLIENT_ID",
		"ADVISORY_CLIENT_SECRET", "ADVISORY_TOKEN_URL", "ADVISORY_SCOPES",
		"ADVISORY_CACHE_TTL",
		"SCHEDULE_MIN_BLOCK_MINUTES", "SCHEDULE_MAX_BLOCK_MINUTES",
		"RESCORE_SCHEDULE", "RESCORE_MAX_AGE",
		"OUTBOX_POLL_INTERVAL", "OUTBOX_BATCH_SIZE", "OUTBOX_MAX_RETRIES",
		"OUTBOX_RETENTION_DAYS", "OUTBOX_CLEANUP_INTERVAL", "OUTBOX_PROCESSOR_ENABLED",
		"WORKER_HEALTH_ADDR", "MCP_ADDR", "MCP_AUTH_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	// Local SQLite is the default store.
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "auto", cfg.DatabaseDriver)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.RabbitMQURL)

	assert.False(t, cfg.AdvisoryEnabled())
	assert.Equal(t, 5*time.Second, cfg.AdvisoryTimeout)
	assert.Equal(t, 15*time.Minute, cfg.AdvisoryCacheTTL)
	assert.Nil(t, cfg.AdvisoryScopes)

	assert.Equal(t, 30, cfg.ScheduleMinBlockMinutes)
	assert.Equal(t, 180, cfg.ScheduleMaxBlockMinutes)

	assert.Equal(t, "@every 1h", cfg.RescoreSchedule)
	assert.Equal(t, 6*time.Hour, cfg.RescoreMaxAge)

	assert.Equal(t, time.Second, cfg.OutboxPollInterval)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 5, cfg.OutboxMaxRetries)
	assert.Equal(t, 14, cfg.OutboxRetentionDays)
	assert.Equal(t, 24*time.Hour, cfg.OutboxCleanupInterval)
	assert.True(t, cfg.OutboxProcessorEnabled)

	assert.Equal(t, "0.0.0.0:8081", cfg.WorkerHealthAddr)
	assert.Equal(t, "0.0.0.0:8082", cfg.MCPAddr)
	assert.Empty(t, cfg.MCPAuthToken)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("DATABASE_URL", "postgres://cadence@localhost:5432/cadence")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("ADVISORY_URL", "https://advisor.example.com/v1/rank")
	t.Setenv("ADVISORY_TIMEOUT", "2s")
	t.Setenv("ADVISORY_CLIENT_ID", "cadence")
	t.Setenv("ADVISORY_CLIENT_SECRET", "s3cret")
	t.Setenv("ADVISORY_TOKEN_URL", "https://auth.example.com/token")
	t.Setenv("ADVISORY_SCOPES", "rank, read")
	t.Setenv("SCHEDULE_MIN_BLOCK_MINUTES", "15")
	t.Setenv("SCHEDULE_MAX_BLOCK_MINUTES", "90")
	t.Setenv("RESCORE_SCHEDULE", "0 */2 * * *")
	t.Setenv("RESCORE_MAX_AGE", "30m")
	t.Setenv("OUTBOX_PROCESSOR_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "postgres://cadence@localhost:5432/cadence", cfg.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.True(t, cfg.AdvisoryEnabled())
	assert.Equal(t, 2*time.Second, cfg.AdvisoryTimeout)
	assert.Equal(t, []string{"rank", "read"}, cfg.AdvisoryScopes)
	assert.Equal(t, 15, cfg.ScheduleMinBlockMinutes)
	assert.Equal(t, 90, cfg.ScheduleMaxBlockMinutes)
	assert.Equal(t, "0 */2 * * *", cfg.RescoreSchedule)
	assert.Equal(t, 30*time.Minute, cfg.RescoreMaxAge)
	assert.False(t, cfg.OutboxProcessorEnabled)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCHEDULE_MIN_BLOCK_MINUTES", "thirty")
	t.Setenv("ADVISORY_TIMEOUT", "soon")
	t.Setenv("OUTBOX_PROCESSOR_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.ScheduleMinBlockMinutes)
	assert.Equal(t, 5*time.Second, cfg.AdvisoryTimeout)
	assert.True(t, cfg.OutboxProcessorEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"unknown environment", map[string]string{"APP_ENV": "qa"}},
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "mysql"}},
		{"max below min", map[string]string{
			"SCHEDULE_MIN_BLOCK_MINUTES": "60",
			"SCHEDULE_MAX_BLOCK_MINUTES": "30",
		}},
		{"advisory url not a url", map[string]string{"ADVISORY_URL": "not a url"}},
		{"client id without secret", map[string]string{
			"ADVISORY_CLIENT_ID": "cadence",
			"ADVISORY_TOKEN_URL": "https://auth.example.com/token",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}
