package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/internal/upstream"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

// CoordinatorConfig holds configuration for the ingestion coordinator.
type CoordinatorConfig struct {
	// Providers are the reading sources to fan out to.
	Providers []Provider

	// Wind is the wind vector source. Optional.
	Wind WindProvider

	// Health receives per-source fetch outcomes. Optional.
	Health *upstream.HealthRegistry

	// SourceTimeout bounds each individual source fetch.
	// Default: 30s.
	SourceTimeout time.Duration

	// Clock for data age computation. Default: real clock.
	Clock clockwork.Clock

	// Logger for coordinator operations.
	Logger zerolog.Logger
}

// Coordinator fans out to all configured sources concurrently and
// assembles a Snapshot. Source failures degrade coverage instead of
// failing the whole fetch; the core's scorer turns that into a
// confidence penalty.
type Coordinator struct {
	providers     []Provider
	wind          WindProvider
	health        *upstream.HealthRegistry
	sourceTimeout time.Duration
	clock         clockwork.Clock
	logger        zerolog.Logger
}

// NewCoordinator creates an ingestion coordinator.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	timeout := cfg.SourceTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Coordinator{
		providers:     cfg.Providers,
		wind:          cfg.Wind,
		health:        cfg.Health,
		sourceTimeout: timeout,
		clock:         clock,
		logger:        cfg.Logger,
	}
}

// sourceResult is one provider's outcome.
type sourceResult struct {
	name     string
	readings []measurement.Reading
	err      error
}

// Fetch gathers readings and wind for a point from every source
// concurrently, each under its own timeout.
func (c *Coordinator) Fetch(ctx context.Context, p geo.Point) (*Snapshot, error) {
	total := len(c.providers)
	if c.wind != nil {
		total++
	}
	if total == 0 {
		return nil, ErrNoSources
	}

	results := make([]sourceResult, len(c.providers))
	var wind measurement.WindVector
	var windErr error

	var wg sync.WaitGroup
	for i, provider := range c.providers {
		wg.Add(1)
		go func(i int, provider Provider) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, c.sourceTimeout)
			defer cancel()

			readings, err := provider.FetchReadings(fetchCtx, p)
			results[i] = sourceResult{name: provider.Name(), readings: readings, err: err}
		}(i, provider)
	}

	if c.wind != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, c.sourceTimeout)
			defer cancel()

			wind, windErr = c.wind.FetchWind(fetchCtx, p)
		}()
	}

	wg.Wait()

	now := c.clock.Now().UTC()
	snapshot := &Snapshot{Wind: wind, FetchedAt: now}

	valid := 0
	for _, result := range results {
		if result.err != nil {
			c.recordFailure(result.name, result.err)
			c.logger.Warn().
				Err(result.err).
				Str("source", result.name).
				Msg("source fetch failed")
			continue
		}
		valid++
		c.recordSuccess(result.name)
		snapshot.Readings = append(snapshot.Readings, result.readings...)
		snapshot.Sources = append(snapshot.Sources, result.name)
	}

	if c.wind != nil {
		if windErr != nil {
			c.recordFailure(c.wind.Name(), windErr)
			c.logger.Warn().
				Err(windErr).
				Str("source", c.wind.Name()).
				Msg("wind fetch failed")
		} else {
			valid++
			c.recordSuccess(c.wind.Name())
			snapshot.Sources = append(snapshot.Sources, c.wind.Name())
		}
	}

	snapshot.Quality = measurement.DataQuality{
		Coverage:     float64(valid) / float64(total),
		AgeHours:     c.dataAge(now, snapshot.Readings),
		ValidSources: valid,
		TotalSources: total,
	}

	c.logger.Debug().
		Int("readings", len(snapshot.Readings)).
		Int("valid_sources", valid).
		Int("total_sources", total).
		Float64("coverage", snapshot.Quality.Coverage).
		Float64("age_hours", snapshot.Quality.AgeHours).
		Msg("snapshot assembled")

	return snapshot, nil
}

// dataAge is the age of the freshest reading. A satellite retrieval
// from days ago does not make the snapshot stale while ground sensors
// are current; only when everything is old does the age penalty bite.
func (c *Coordinator) dataAge(now time.Time, readings []measurement.Reading) float64 {
	var newest time.Time
	for _, r := range readings {
		if r.MeasuredAt.After(newest) {
			newest = r.MeasuredAt
		}
	}
	if newest.IsZero() {
		return 0
	}

	age := now.Sub(newest).Hours()
	if age < 0 {
		return 0
	}
	return age
}

func (c *Coordinator) recordSuccess(source string) {
	if c.health != nil {
		c.health.RecordSuccess(source)
	}
}

func (c *Coordinator) recordFailure(source string, err error) {
	if c.health != nil {
		c.health.RecordFailure(source, err)
	}
}
