package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosentry/ecosentry/internal/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := config.FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.TelemetryEnabled)
	assert.Equal(t, "https://api.openaq.org/v2", cfg.OpenAQBaseURL)
	assert.Equal(t, 50.0, cfg.OpenAQRadiusKM)
	assert.Equal(t, 50.0, cfg.PlumeThresholdSO2)
	assert.Equal(t, -0.5, cfg.AnomalyThreshold)
	assert.Equal(t, 30, cfg.HistoryCapacity)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)
	assert.Empty(t, cfg.RefreshTargets)
	assert.Equal(t, "ecosentry-jobs", cfg.PubSubSubscription)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OPENAQ_RADIUS_KM", "25.5")
	t.Setenv("ECOSENTRY_PLUME_THRESHOLD_SO2", "75")
	t.Setenv("WORKER_REFRESH_INTERVAL", "5m")

	cfg := config.FromEnv()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.TelemetryEnabled)
	assert.Equal(t, 25.5, cfg.OpenAQRadiusKM)
	assert.Equal(t, 75.0, cfg.PlumeThresholdSO2)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("OPENAQ_RADIUS_KM", "wide")
	t.Setenv("ECOSENTRY_HISTORY_CAPACITY", "lots")
	t.Setenv("WORKER_REFRESH_INTERVAL", "soonish")

	cfg := config.FromEnv()

	assert.Equal(t, 50.0, cfg.OpenAQRadiusKM)
	assert.Equal(t, 30, cfg.HistoryCapacity)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)
}

func TestFromEnv_RefreshTargets(t *testing.T) {
	t.Setenv("WORKER_REFRESH_TARGETS", "22.47,70.05; 51.92,4.02 ;not-a-point;95.0,10.0;30.0")

	cfg := config.FromEnv()

	// Malformed, out-of-range and incomplete entries are skipped.
	require.Len(t, cfg.RefreshTargets, 2)
	assert.Equal(t, 22.47, cfg.RefreshTargets[0].Lat)
	assert.Equal(t, 70.05, cfg.RefreshTargets[0].Lon)
	assert.Equal(t, 51.92, cfg.RefreshTargets[1].Lat)
}
