package worker

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Scheduler runs the refresh job on a fixed interval. It is the
// fallback path when no Pub/Sub subscription is configured, and runs
// alongside one otherwise.
type Scheduler struct {
	job      *RefreshJob
	interval time.Duration
	clock    clockwork.Clock
	logger   zerolog.Logger
}

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	Job      *RefreshJob
	Interval time.Duration
	Clock    clockwork.Clock
	Logger   zerolog.Logger
}

// NewScheduler creates the scheduler. Interval defaults to 15 minutes.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	return &Scheduler{
		job:      cfg.Job,
		interval: cfg.Interval,
		clock:    cfg.Clock,
		logger:   cfg.Logger.With().Str("component", "scheduler").Logger(),
	}
}

// Run blocks, sweeping on every tick until ctx is cancelled. The first
// sweep runs immediately so a fresh deployment has data before the
// first interval elapses.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")

	s.job.Run(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return
		case <-ticker.Chan():
			s.job.Run(ctx)
		}
	}
}
