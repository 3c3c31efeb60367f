package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SWEEPER_SCHEDULE", "")
	t.Setenv("EVENTS_ENABLED", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "@every 1m", cfg.Sweeper.Schedule)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("EVENTS_ENABLED", "false")
	t.Setenv("EVENTS_PUBLISHER", "mock")
	t.Setenv("SWEEPER_TIMEOUT", "5s")
	t.Setenv("RESULT_CACHE_TTL", "1m")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Sweeper.Timeout)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Events.GetKafkaBrokers())
}

func TestGetEnvBool_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_FLAG", "maybe")
	assert.True(t, getEnvBool("SOME_FLAG", true))
}
