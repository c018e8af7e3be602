package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecosentry/ecosentry/internal/assessment"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

// RefreshJob sweeps the configured targets through the assessment
// pipeline. Each sweep grows per-cell history, which feeds the
// duration score and the anomaly model.
type RefreshJob struct {
	config  RefreshConfig
	service *assessment.Service
	logger  zerolog.Logger

	metrics refreshMetrics
}

type refreshMetrics struct {
	mu sync.Mutex

	sweeps     int64
	successful int64
	failed     int64
	refits     int64

	lastSweepAt       time.Time
	lastSweepDuration time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config  RefreshConfig
	Service *assessment.Service
	Logger  zerolog.Logger
}

// NewRefreshJob creates the job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultRefreshConfig()
	} else {
		config = config.withDefaults()
	}

	return &RefreshJob{
		config:  config,
		service: cfg.Service,
		logger:  cfg.Logger.With().Str("component", "refresh_job").Logger(),
	}
}

// RefreshResult summarizes one sweep.
type RefreshResult struct {
	StartTime  time.Time
	Duration   time.Duration
	Total      int
	Successful int
	Failed     int
	Refitted   bool
	Errors     []RefreshError
}

// RefreshError is one failed target.
type RefreshError struct {
	Point geo.Point
	Error string
}

// Run assesses every target with bounded concurrency, then refits the
// anomaly model from the accumulated history when configured.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	start := time.Now()
	result := &RefreshResult{
		StartTime: start,
		Total:     len(j.config.Targets),
	}

	j.logger.Info().
		Int("targets", result.Total).
		Int("concurrency", j.config.Concurrency).
		Msg("starting assessment sweep")

	points := make(chan geo.Point, len(j.config.Targets))
	outcomes := make(chan RefreshError, len(j.config.Targets))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range points {
				select {
				case <-ctx.Done():
					return
				default:
				}
				outcomes <- j.assessPoint(ctx, p)
			}
		}()
	}

	for _, p := range j.config.Targets {
		points <- p
	}
	close(points)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for outcome := range outcomes {
		if outcome.Error == "" {
			result.Successful++
		} else {
			result.Failed++
			result.Errors = append(result.Errors, outcome)
		}
	}

	if j.config.RefitModel {
		result.Refitted = j.service.FitDetector(ctx)
	}

	result.Duration = time.Since(start)
	j.record(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Bool("refitted", result.Refitted).
		Msg("assessment sweep completed")

	return result
}

func (j *RefreshJob) assessPoint(ctx context.Context, p geo.Point) RefreshError {
	pointCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if _, err := j.service.Assess(pointCtx, p); err != nil {
		j.logger.Warn().
			Err(err).
			Float64("lat", p.Lat).
			Float64("lon", p.Lon).
			Msg("target assessment failed")
		return RefreshError{Point: p, Error: err.Error()}
	}
	return RefreshError{Point: p}
}

func (j *RefreshJob) record(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.sweeps++
	j.metrics.successful += int64(result.Successful)
	j.metrics.failed += int64(result.Failed)
	if result.Refitted {
		j.metrics.refits++
	}
	j.metrics.lastSweepAt = result.StartTime.Add(result.Duration)
	j.metrics.lastSweepDuration = result.Duration
}

// MetricsSnapshot reports cumulative job statistics.
func (j *RefreshJob) MetricsSnapshot() map[string]any {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	return map[string]any{
		"sweeps":              j.metrics.sweeps,
		"successful_targets":  j.metrics.successful,
		"failed_targets":      j.metrics.failed,
		"model_refits":        j.metrics.refits,
		"last_sweep_at":       j.metrics.lastSweepAt,
		"last_sweep_duration": j.metrics.lastSweepDuration.String(),
	}
}
