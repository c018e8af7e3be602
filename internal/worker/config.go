// Package worker provides background job processing: periodic
// re-assessment of watched locations and anomaly-model refits.
package worker

import (
	"time"

	"github.com/ecosentry/ecosentry/pkg/geo"
)

// RefreshConfig holds configuration for the assessment refresh job.
type RefreshConfig struct {
	// Targets are the locations to keep assessed. If empty, uses
	// DefaultTargets.
	Targets []geo.Point

	// Concurrency is the number of concurrent assessments. Default: 3.
	Concurrency int

	// Timeout bounds each single-location assessment. Default: 30s.
	Timeout time.Duration

	// RefitModel triggers an anomaly-model refit after each sweep.
	RefitModel bool
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Targets:     DefaultTargets(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
		RefitModel:  true,
	}
}

// DefaultTargets covers industrial regions with known emission
// activity, so the anomaly model accumulates history even before any
// user traffic arrives.
func DefaultTargets() []geo.Point {
	return []geo.Point{
		{Lat: 22.4707, Lon: 70.0577},  // Jamnagar refinery belt
		{Lat: 51.9520, Lon: 4.1430},   // Rotterdam-Maasvlakte port
		{Lat: 29.7604, Lon: -95.3698}, // Houston ship channel
		{Lat: 31.2304, Lon: 121.4737}, // Shanghai
		{Lat: 28.6139, Lon: 77.2090},  // Delhi
		{Lat: -23.5505, Lon: -46.6333}, // São Paulo
	}
}

func (c RefreshConfig) withDefaults() RefreshConfig {
	if len(c.Targets) == 0 {
		c.Targets = DefaultTargets()
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}
