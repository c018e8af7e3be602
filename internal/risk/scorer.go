package risk

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/ecosentry/ecosentry/internal/fusion"
	"github.com/ecosentry/ecosentry/internal/measurement"
)

// ModelVersion identifies the scoring model. Bumped whenever a formula
// or weight changes.
const ModelVersion = "1.0.0"

// Composite weights: 60% exposure, 30% duration, 10% uncertainty.
const (
	exposureWeight    = 0.6
	durationWeight    = 0.3
	uncertaintyWeight = 0.1
)

const (
	// exposureScale maps an exceedance ratio of 1.0 (reading exactly at
	// threshold) to a score of 50, and 2.0 (double threshold) to 100.
	exposureScale = 50.0

	// minTrendEntries is the minimum history length required to assess
	// persistence. Shorter histories get neutralDuration.
	minTrendEntries = 7

	// trendWindow bounds how many recent entries the duration score
	// examines.
	trendWindow = 30

	// neutralDuration is the fallback duration score when history is
	// insufficient: moderate, not zero.
	neutralDuration = 50.0

	// freshAgeHours is the data age beyond which staleness penalties
	// accrue. Both ramps reach their cap 24 hours later.
	freshAgeHours = 24.0

	maxAgePenalty        = 20.0
	maxAgeConfidenceLoss = 30.0

	// lowCoverageCutoff is the coverage below which the sparse-source
	// penalty applies.
	lowCoverageCutoff = 0.5
	coveragePenalty   = 30.0

	// sparseMetricsFactor is applied to confidence when fewer than two
	// air metrics are present.
	sparseMetricsFactor = 0.7
)

// ScorerConfig holds configuration for the risk scorer.
type ScorerConfig struct {
	// Guidelines supplies the thresholds used for exceedance ratios
	// and high-exposure day counting. If nil, WHO guidelines are used.
	Guidelines fusion.GuidelineTable

	// Logger for scoring operations.
	Logger zerolog.Logger
}

// Scorer computes composite risk from fused metrics, historical trend,
// and data quality. Score is a pure function of its inputs; a Scorer
// may be shared across goroutines without locking.
//
// The scorer never fails on partial data: every missing input degrades
// a score or the confidence value instead of producing an error.
type Scorer struct {
	guidelines fusion.GuidelineTable
	logger     zerolog.Logger
}

// NewScorer creates a risk scorer.
func NewScorer(cfg ScorerConfig) *Scorer {
	guidelines := cfg.Guidelines
	if guidelines == nil {
		guidelines = fusion.WHOGuidelines()
	}
	return &Scorer{
		guidelines: guidelines,
		logger:     cfg.Logger,
	}
}

// Score computes the composite risk result. trend is an ordered
// sequence of past bundles, oldest first; it may be nil.
func (s *Scorer) Score(bundle *measurement.MetricsBundle, trend []*measurement.MetricsBundle, quality measurement.DataQuality) Result {
	exposure := s.exposureScore(bundle)
	duration := s.durationScore(trend)
	uncertainty := uncertaintyPenalty(quality)

	score := clamp(exposureWeight*exposure+durationWeight*duration+uncertaintyWeight*uncertainty, 0, 100)

	result := Result{
		ExposureScore:      round1(exposure),
		DurationScore:      round1(duration),
		UncertaintyPenalty: round1(uncertainty),
		RiskScore:          round1(score),
		Verdict:            VerdictFor(score),
		Confidence:         round1(s.confidence(bundle, quality)),
		ModelVersion:       ModelVersion,
	}

	s.logger.Debug().
		Float64("risk_score", result.RiskScore).
		Str("verdict", string(result.Verdict)).
		Float64("confidence", result.Confidence).
		Msg("risk scored")

	return result
}

// exposureScore converts the worst exceedance ratio across present
// metrics into a 0-100 score. Missing metrics and missing thresholds
// simply do not participate in the max.
func (s *Scorer) exposureScore(bundle *measurement.MetricsBundle) float64 {
	var maxRatio float64

	for pollutant, metric := range bundle.Air {
		threshold := s.guidelines.Threshold(pollutant)
		if threshold <= 0 {
			continue
		}
		if ratio := metric.Value / threshold; ratio > maxRatio {
			maxRatio = ratio
		}
	}

	// Water quality stands in as an exceedance ratio: lower score,
	// higher risk.
	waterRisk := (100 - bundle.Water.QualityScore) / 100.0
	if waterRisk > maxRatio {
		maxRatio = waterRisk
	}

	return math.Min(100, maxRatio*exposureScale)
}

// durationScore measures persistence: the percentage of recent days on
// which any air pollutant exceeded its threshold.
func (s *Scorer) durationScore(trend []*measurement.MetricsBundle) float64 {
	if len(trend) < minTrendEntries {
		return neutralDuration
	}

	examined := len(trend)
	if examined > trendWindow {
		examined = trendWindow
	}

	highDays := 0
	for _, day := range trend[len(trend)-examined:] {
		if s.anyExceedance(day) {
			highDays++
		}
	}

	return float64(highDays) / float64(examined) * 100
}

// anyExceedance reports whether any air pollutant in the bundle is
// above its guideline threshold.
func (s *Scorer) anyExceedance(bundle *measurement.MetricsBundle) bool {
	for pollutant, metric := range bundle.Air {
		threshold := s.guidelines.Threshold(pollutant)
		if threshold > 0 && metric.Value > threshold {
			return true
		}
	}
	return false
}

// uncertaintyPenalty is additive: up to 20 points for data older than
// 24h (linear, capped at 48h), plus up to 30 points when coverage falls
// below 50%. Clamped to 100.
func uncertaintyPenalty(quality measurement.DataQuality) float64 {
	var penalty float64

	if quality.AgeHours > freshAgeHours {
		penalty += math.Min(maxAgePenalty, (quality.AgeHours-freshAgeHours)/freshAgeHours*maxAgePenalty)
	}
	if quality.Coverage < lowCoverageCutoff {
		penalty += (1 - quality.Coverage) * coveragePenalty
	}

	return math.Min(100, penalty)
}

// confidence starts at 100 and degrades with stale data, sparse source
// coverage, and missing air metrics.
func (s *Scorer) confidence(bundle *measurement.MetricsBundle, quality measurement.DataQuality) float64 {
	confidence := 100.0

	if quality.AgeHours > freshAgeHours {
		confidence -= math.Min(maxAgeConfidenceLoss, (quality.AgeHours-freshAgeHours)/freshAgeHours*maxAgeConfidenceLoss)
	}

	confidence *= quality.Coverage

	if len(bundle.Air) < 2 {
		confidence *= sparseMetricsFactor
	}

	return clamp(confidence, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
