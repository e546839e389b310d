package config_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/pinmap/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("PINMAP_ENV", "local")
	t.Setenv("PINMAP_INTERVAL", "2m")
	t.Setenv("PINMAP_PROVIDER_KEY", "testAPIKey")
	t.Setenv("PINMAP_PROVIDER_TYPE", "nominatim")
	t.Setenv("PINMAP_GROUP_SIZE", "5")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
	assert.Equal(t, 2*time.Minute, cfg.PollInterval)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "testAPIKey", cfg.APIKey)
	assert.Equal(t, "nominatim", cfg.ProviderType)
	assert.Equal(t, 5, cfg.Pipeline.GroupSize)
}

func Test_MustLoadDefaults(t *testing.T) {
	cfg := config.MustLoad()

	assert.Equal(t, 100*time.Millisecond, cfg.Pipeline.BatchQuiescence)
	assert.Equal(t, 300*time.Millisecond, cfg.Pipeline.DebounceQuiescence)
	assert.Equal(t, 8, cfg.Pipeline.GroupSize)
	assert.Equal(t, 4, cfg.Pipeline.GroupsPerSecond)
	assert.Equal(t, 500, cfg.Pipeline.MaxVisible)
	assert.InDelta(t, 0.05, cfg.Pipeline.MinIndividualSpan, 1e-9)
	assert.InDelta(t, 0.5, cfg.Pipeline.MaxClusterSpan, 1e-9)
	assert.InDelta(t, 40.0, cfg.Pipeline.ClusterRadiusKm, 1e-9)
}

func TestMustLoad_IntervalError(t *testing.T) {
	t.Setenv("PINMAP_INTERVAL", "error_value")

	assert.PanicsWithValue(t, "failed to parse poll interval from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_PortError(t *testing.T) {
	t.Setenv("PINMAP_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port for monitoring server from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_GroupSizeError(t *testing.T) {
	t.Setenv("PINMAP_GROUP_SIZE", "error_value")

	assert.PanicsWithValue(
		t,
		"failed to parse PINMAP_GROUP_SIZE from configuration, must be an integer",
		func() {
			config.MustLoad()
		},
	)
}

func TestMustLoad_SpanError(t *testing.T) {
	t.Setenv("PINMAP_MAX_CLUSTER_SPAN", "error_value")

	assert.PanicsWithValue(
		t,
		"failed to parse PINMAP_MAX_CLUSTER_SPAN from configuration, must be a number",
		func() {
			config.MustLoad()
		},
	)
}
