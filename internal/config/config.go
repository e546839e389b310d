package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the pinmap service.
// It covers the environment, the monitoring server port, the geocoding
// provider, the pipeline tuning knobs, and the database configuration.
type Config struct {
	Env          string         // Env is the current environment: local, development, production.
	Port         int            // Port is the monitoring/API server port.
	ProviderType string         // ProviderType specifies which geocoding provider to use.
	APIKey       string         // The API key for accessing external services (required for Google).
	PollInterval time.Duration  // The duration between entity list refreshes.
	Database     PostgresConfig // Database holds the postgres database configuration.
	Pipeline     PipelineConfig // Pipeline holds the annotation pipeline tuning knobs.
}

// PipelineConfig groups the tuning knobs of the annotation pipeline.
type PipelineConfig struct {
	BatchQuiescence    time.Duration // Quiet period before a geocode batch flushes.
	DebounceQuiescence time.Duration // Quiet period before a viewport change settles.
	GroupSize          int           // Number of concurrent geocode lookups per group.
	GroupsPerSecond    int           // Pacing limit for consecutive lookup groups.
	MaxVisible         int           // Cap on entities considered per filtering pass.
	MinIndividualSpan  float64       // Below this span clustering is always bypassed.
	MaxClusterSpan     float64       // Above this span clustering always runs.
	ClusterRadiusKm    float64       // Base clustering radius at full zoom-out, in km.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad loads the configuration from environment variables and returns a
// Config struct. It panics on malformed values.
func MustLoad() *Config {
	_ = godotenv.Load()

	interval, err := time.ParseDuration(setDefaultEnv("PINMAP_INTERVAL", "1m"))
	if err != nil {
		panic("failed to parse poll interval from configuration")
	}

	healthPort, err := strconv.Atoi(setDefaultEnv("PINMAP_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	return &Config{
		Env:          setDefaultEnv("PINMAP_ENV", "production"),
		Port:         healthPort,
		ProviderType: setDefaultEnv("PINMAP_PROVIDER_TYPE", "google"),
		APIKey:       os.Getenv("PINMAP_PROVIDER_KEY"),
		PollInterval: interval,
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     setDefaultEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		Pipeline: PipelineConfig{
			BatchQuiescence:    mustDuration("PINMAP_BATCH_QUIESCENCE", "100ms"),
			DebounceQuiescence: mustDuration("PINMAP_DEBOUNCE_QUIESCENCE", "300ms"),
			GroupSize:          mustInt("PINMAP_GROUP_SIZE", "8"),
			GroupsPerSecond:    mustInt("PINMAP_GROUPS_PER_SECOND", "4"),
			MaxVisible:         mustInt("PINMAP_MAX_VISIBLE", "500"),
			MinIndividualSpan:  mustFloat("PINMAP_MIN_INDIVIDUAL_SPAN", "0.05"),
			MaxClusterSpan:     mustFloat("PINMAP_MAX_CLUSTER_SPAN", "0.5"),
			ClusterRadiusKm:    mustFloat("PINMAP_CLUSTER_RADIUS_KM", "40"),
		},
	}
}

func mustDuration(key, override string) time.Duration {
	value, err := time.ParseDuration(setDefaultEnv(key, override))
	if err != nil {
		panic("failed to parse " + key + " from configuration, must be a duration")
	}

	return value
}

func mustInt(key, override string) int {
	value, err := strconv.Atoi(setDefaultEnv(key, override))
	if err != nil {
		panic("failed to parse " + key + " from configuration, must be an integer")
	}

	return value
}

func mustFloat(key, override string) float64 {
	value, err := strconv.ParseFloat(setDefaultEnv(key, override), 64)
	if err != nil {
		panic("failed to parse " + key + " from configuration, must be a number")
	}

	return value
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}
