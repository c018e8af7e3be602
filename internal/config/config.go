// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ecosentry/ecosentry/pkg/geo"
)

// Config is the full runtime configuration for the API and worker.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// Environment is the deployment environment name.
	Environment string

	// OTLPEndpoint receives traces and metrics when telemetry is on.
	OTLPEndpoint     string
	TelemetryEnabled bool

	// OpenAQBaseURL and OpenAQAPIKey configure the ground-sensor
	// source.
	OpenAQBaseURL string
	OpenAQAPIKey  string

	// OpenAQRadiusKM bounds the station search radius.
	OpenAQRadiusKM float64

	// SentinelBaseURL points at the TROPOMI retrieval proxy.
	SentinelBaseURL string

	// WeatherBaseURL and WeatherAPIKey configure the wind source.
	WeatherBaseURL string
	WeatherAPIKey  string

	// PlumeThresholdSO2 is the SO2 concentration, in μg/m³, above
	// which a plume detection fires.
	PlumeThresholdSO2 float64

	// AnomalyThreshold is the isolation-forest decision boundary.
	AnomalyThreshold float64

	// HistoryCapacity bounds per-cell trend history.
	HistoryCapacity int

	// RefreshInterval is the worker's fallback polling cadence.
	RefreshInterval time.Duration

	// RefreshTargets are the locations the worker keeps warm.
	RefreshTargets []geo.Point

	// PubSubProject and PubSubSubscription enable job delivery via
	// Cloud Pub/Sub. Empty project disables it.
	PubSubProject      string
	PubSubSubscription string
}

// FromEnv reads the configuration, applying local-dev defaults.
func FromEnv() Config {
	return Config{
		Port:             getEnv("APP_PORT", "8080"),
		Environment:      getEnv("APP_ENV", "development"),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",

		OpenAQBaseURL:  getEnv("OPENAQ_BASE_URL", "https://api.openaq.org/v2"),
		OpenAQAPIKey:   os.Getenv("OPENAQ_API_KEY"),
		OpenAQRadiusKM: getEnvFloat("OPENAQ_RADIUS_KM", 50),

		SentinelBaseURL: getEnv("SENTINEL_BASE_URL", "http://localhost:8081"),

		WeatherBaseURL: getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		WeatherAPIKey:  os.Getenv("WEATHER_API_KEY"),

		PlumeThresholdSO2: getEnvFloat("ECOSENTRY_PLUME_THRESHOLD_SO2", 50),
		AnomalyThreshold:  getEnvFloat("ECOSENTRY_ANOMALY_THRESHOLD", -0.5),
		HistoryCapacity:   getEnvInt("ECOSENTRY_HISTORY_CAPACITY", 30),

		RefreshInterval: getEnvDuration("WORKER_REFRESH_INTERVAL", 15*time.Minute),
		RefreshTargets:  parseTargets(os.Getenv("WORKER_REFRESH_TARGETS")),

		PubSubProject:      os.Getenv("PUBSUB_PROJECT"),
		PubSubSubscription: getEnv("PUBSUB_SUBSCRIPTION", "ecosentry-jobs"),
	}
}

// parseTargets reads "lat,lon;lat,lon" into points, skipping entries
// that do not parse or are out of range.
func parseTargets(raw string) []geo.Point {
	if raw == "" {
		return nil
	}

	var points []geo.Point
	for _, entry := range strings.Split(raw, ";") {
		parts := strings.SplitN(strings.TrimSpace(entry), ",", 2)
		if len(parts) != 2 {
			continue
		}
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		p := geo.Point{Lat: lat, Lon: lon}
		if !p.Valid() {
			continue
		}
		points = append(points, p)
	}
	return points
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
