package assessment

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecosentry/ecosentry/internal/anomaly"
	"github.com/ecosentry/ecosentry/internal/attribution"
	"github.com/ecosentry/ecosentry/internal/fusion"
	"github.com/ecosentry/ecosentry/internal/history"
	"github.com/ecosentry/ecosentry/internal/ingest"
	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/internal/risk"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

// DefaultPlumeThresholdSO2 is the SO2 concentration above which a
// plume detection is raised, in μg/m³.
const DefaultPlumeThresholdSO2 = 50.0

// ServiceConfig holds dependencies for the assessment service.
type ServiceConfig struct {
	// Ingest supplies snapshots from the upstream sources.
	Ingest *ingest.Coordinator

	// Fusion merges raw readings into a bundle.
	Fusion *fusion.Engine

	// Scorer turns a bundle into a risk result.
	Scorer *risk.Scorer

	// Detector scores bundles for outlier-ness.
	Detector *anomaly.Detector

	// Estimator attributes plume detections to source regions.
	// If nil, the stationary stub is used.
	Estimator attribution.Estimator

	// History records bundles and supplies the trend for duration
	// scoring and detector training.
	History *history.Store

	// PlumeThresholdSO2 overrides DefaultPlumeThresholdSO2.
	PlumeThresholdSO2 float64

	// Clock for generated-at timestamps. Default: real clock.
	Clock clockwork.Clock

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service runs the full assessment pipeline. All stages are pure
// except the history store and the detector's trained state, both of
// which synchronize internally, so a Service is safe for concurrent
// use.
type Service struct {
	ingest         *ingest.Coordinator
	fusion         *fusion.Engine
	scorer         *risk.Scorer
	detector       *anomaly.Detector
	estimator      attribution.Estimator
	history        *history.Store
	plumeThreshold float64
	clock          clockwork.Clock
	logger         zerolog.Logger
	tracer         trace.Tracer
}

// NewService creates an assessment service.
func NewService(cfg ServiceConfig) *Service {
	estimator := cfg.Estimator
	if estimator == nil {
		estimator = attribution.StationaryEstimator{}
	}
	threshold := cfg.PlumeThresholdSO2
	if threshold == 0 {
		threshold = DefaultPlumeThresholdSO2
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		ingest:         cfg.Ingest,
		fusion:         cfg.Fusion,
		scorer:         cfg.Scorer,
		detector:       cfg.Detector,
		estimator:      estimator,
		history:        cfg.History,
		plumeThreshold: threshold,
		clock:          clock,
		logger:         cfg.Logger,
		tracer:         otel.Tracer("ecosentry/assessment"),
	}
}

// Assess runs the pipeline for a location: fetch, fuse, score, detect,
// attribute, and record the bundle into history for future trend and
// training use.
func (s *Service) Assess(ctx context.Context, p geo.Point) (*Assessment, error) {
	if !p.Valid() {
		return nil, ErrInvalidCoordinates
	}

	ctx, span := s.tracer.Start(ctx, "assessment.Assess",
		trace.WithAttributes(
			attribute.Float64("location.lat", p.Lat),
			attribute.Float64("location.lon", p.Lon),
		))
	defer span.End()

	snapshot, err := s.ingest.Fetch(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIngestFailed, err)
	}

	bundle := s.fusion.Fuse(snapshot.Readings, snapshot.FetchedAt)

	// Trend is read before recording the current bundle so the
	// duration score reflects history, not the present reading.
	trend := s.history.Trend(ctx, p)

	riskResult := s.scorer.Score(bundle, trend, snapshot.Quality)
	anomalyResult := s.detector.Predict(anomaly.SampleFromBundle(bundle))
	plumes := s.detectPlumes(ctx, p, bundle, snapshot.Wind)

	s.history.Record(ctx, p, bundle)

	span.SetAttributes(
		attribute.Float64("risk.score", riskResult.RiskScore),
		attribute.String("risk.verdict", string(riskResult.Verdict)),
	)

	s.logger.Info().
		Float64("lat", p.Lat).
		Float64("lon", p.Lon).
		Float64("risk_score", riskResult.RiskScore).
		Str("verdict", string(riskResult.Verdict)).
		Bool("anomaly", anomalyResult.IsAnomaly).
		Float64("coverage", snapshot.Quality.Coverage).
		Msg("location assessed")

	return &Assessment{
		Location:    p,
		GeneratedAt: s.clock.Now().UTC(),
		Metrics:     bundle,
		Quality:     snapshot.Quality,
		Risk:        riskResult,
		Anomaly:     anomalyResult,
		Plumes:      plumes,
		Sources:     snapshot.Sources,
	}, nil
}

// DetectAnomaly fetches and fuses current data for a point, then
// scores it against the fitted model.
func (s *Service) DetectAnomaly(ctx context.Context, p geo.Point) (anomaly.Result, error) {
	if !p.Valid() {
		return anomaly.Result{}, ErrInvalidCoordinates
	}

	snapshot, err := s.ingest.Fetch(ctx, p)
	if err != nil {
		return anomaly.Result{}, fmt.Errorf("%w: %w", ErrIngestFailed, err)
	}

	bundle := s.fusion.Fuse(snapshot.Readings, snapshot.FetchedAt)
	return s.detector.Predict(anomaly.SampleFromBundle(bundle)), nil
}

// FitDetector trains the anomaly detector on everything the history
// store holds. Returns false when history is still too short.
func (s *Service) FitDetector(ctx context.Context) bool {
	bundles := s.history.All(ctx)

	samples := make([]anomaly.Sample, len(bundles))
	for i, b := range bundles {
		samples[i] = anomaly.SampleFromBundle(b)
	}

	return s.detector.Fit(samples)
}

// detectPlumes raises a detection when SO2 concentration crosses the
// plume threshold and attributes it via the configured estimator.
func (s *Service) detectPlumes(ctx context.Context, p geo.Point, bundle *measurement.MetricsBundle, wind measurement.WindVector) []PlumeDetection {
	metric, ok := bundle.AirMetric(measurement.PollutantSO2)
	if !ok || metric.Value <= s.plumeThreshold {
		return []PlumeDetection{{Detected: false}}
	}

	estimate := s.estimator.Estimate(ctx, attribution.Request{
		Detection: p,
		Pollutant: measurement.PollutantSO2,
		Intensity: metric.Value,
		Wind:      wind,
	})

	s.logger.Warn().
		Float64("so2", metric.Value).
		Float64("threshold", s.plumeThreshold).
		Msg("plume detected")

	return []PlumeDetection{{
		Detected:  true,
		Pollutant: measurement.PollutantSO2,
		Intensity: metric.Value,
		Source:    &estimate,
	}}
}
