// Package ingest coordinates concurrent fetches from upstream data
// sources and assesses the quality of what came back.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

// Ingest errors.
var (
	// ErrNoSources is returned when the coordinator has no providers
	// configured at all.
	ErrNoSources = errors.New("no data sources configured")
)

// Provider fetches readings for a geographic point from one upstream
// source.
type Provider interface {
	// Name identifies the provider (e.g. "OpenAQ").
	Name() string

	// Class is the source class the provider's readings belong to.
	Class() measurement.SourceClass

	// FetchReadings retrieves current readings near the point.
	// An empty slice with a nil error means the source is healthy but
	// has no data for the location.
	FetchReadings(ctx context.Context, p geo.Point) ([]measurement.Reading, error)
}

// WindProvider fetches wind vector data for the attribution estimator.
type WindProvider interface {
	Name() string
	FetchWind(ctx context.Context, p geo.Point) (measurement.WindVector, error)
}

// Snapshot is everything the ingestion boundary hands to the core for
// one assessment: raw readings, wind, and data quality.
type Snapshot struct {
	Readings []measurement.Reading
	Wind     measurement.WindVector
	Quality  measurement.DataQuality

	// Sources lists the providers that returned valid data.
	Sources []string

	FetchedAt time.Time
}
