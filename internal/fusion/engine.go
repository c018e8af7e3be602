package fusion

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecosentry/ecosentry/internal/measurement"
)

// EngineConfig holds configuration for the fusion engine.
type EngineConfig struct {
	// Weights is the per-source-class weight table.
	// If nil, DefaultWeights is used.
	Weights Weights

	// Guidelines supplies the regulatory threshold attached to each
	// fused metric. If nil, WHOGuidelines is used.
	Guidelines GuidelineTable

	// Water is the water-domain strategy. If nil, a placeholder is used.
	Water WaterStrategy

	// Land is the land-domain strategy. If nil, a placeholder is used.
	Land LandStrategy

	// Logger for engine operations.
	Logger zerolog.Logger
}

// Engine fuses same-pollutant readings from multiple source classes
// into one estimate per pollutant. Fuse is a pure function of its
// inputs; an Engine may be shared across goroutines without locking.
type Engine struct {
	weights    Weights
	guidelines GuidelineTable
	water      WaterStrategy
	land       LandStrategy
	logger     zerolog.Logger
}

// NewEngine creates a fusion engine.
func NewEngine(cfg EngineConfig) *Engine {
	weights := cfg.Weights
	if weights == nil {
		weights = DefaultWeights()
	}
	guidelines := cfg.Guidelines
	if guidelines == nil {
		guidelines = WHOGuidelines()
	}
	water := cfg.Water
	if water == nil {
		water = PlaceholderWaterStrategy{}
	}
	land := cfg.Land
	if land == nil {
		land = PlaceholderLandStrategy{}
	}

	return &Engine{
		weights:    weights,
		guidelines: guidelines,
		water:      water,
		land:       land,
		logger:     cfg.Logger,
	}
}

// Fuse merges raw source readings into a MetricsBundle. Pollutants with
// zero contributing readings are absent from the output rather than
// reported as zero.
func (e *Engine) Fuse(readings []measurement.Reading, observedAt time.Time) *measurement.MetricsBundle {
	bundle := &measurement.MetricsBundle{
		Air:        make(map[measurement.Pollutant]measurement.FusedMetric),
		Water:      e.water.Fuse(readings),
		Land:       e.land.Fuse(readings),
		ObservedAt: observedAt,
	}

	byPollutant := make(map[measurement.Pollutant][]contribution)
	for _, r := range readings {
		c, ok := e.contributionFor(r)
		if !ok {
			continue
		}
		byPollutant[r.Pollutant] = append(byPollutant[r.Pollutant], c)
	}

	for pollutant, contribs := range byPollutant {
		metric := e.fusePollutant(pollutant, contribs)
		bundle.Air[pollutant] = metric

		e.logger.Debug().
			Str("pollutant", string(pollutant)).
			Float64("value", metric.Value).
			Str("source", metric.Source).
			Int("contributions", len(contribs)).
			Msg("fused pollutant")
	}

	return bundle
}

// contribution is a single normalized, weighted input to a fused value.
type contribution struct {
	value               float64
	weight              float64
	source              string
	class               measurement.SourceClass
	spatialResolutionKM float64
}

// contributionFor normalizes a reading into a contribution. Readings
// with negative values, unconvertible units, or a zero-weight source
// class contribute nothing.
func (e *Engine) contributionFor(r measurement.Reading) (contribution, bool) {
	weight, ok := e.weights[r.Class]
	if !ok || weight <= 0 {
		return contribution{}, false
	}

	value := r.Value
	if r.Unit == measurement.UnitMolPerSquareMeter {
		converted, ok := ColumnDensityToSurface(r.Pollutant, r.Value)
		if !ok {
			return contribution{}, false
		}
		value = converted
	}
	if value < 0 {
		return contribution{}, false
	}

	return contribution{
		value:               value,
		weight:              weight,
		source:              r.Source,
		class:               r.Class,
		spatialResolutionKM: r.SpatialResolutionKM,
	}, true
}

// fusePollutant computes the weighted average and provenance for one
// pollutant. Weights are not renormalized after filtering to the
// classes that actually reported.
func (e *Engine) fusePollutant(p measurement.Pollutant, contribs []contribution) measurement.FusedMetric {
	var weightedSum, weightTotal float64
	classes := make(map[measurement.SourceClass]struct{})
	sources := make(map[string]struct{})
	var spatialResolution float64

	for _, c := range contribs {
		weightedSum += c.value * c.weight
		weightTotal += c.weight
		classes[c.class] = struct{}{}
		sources[c.source] = struct{}{}
		if c.spatialResolutionKM > spatialResolution {
			spatialResolution = c.spatialResolutionKM
		}
	}

	return measurement.FusedMetric{
		Value:               weightedSum / weightTotal,
		Unit:                measurement.UnitMicrogramsPerCubicMeter,
		Threshold:           e.guidelines.Threshold(p),
		Source:              provenanceLabel(len(classes), sources),
		SpatialResolutionKM: spatialResolution,
	}
}

// provenanceLabel builds the source label: the single contributing
// source's name, or "Fused (a + b)" when two or more source classes
// contributed.
func provenanceLabel(classCount int, sources map[string]struct{}) string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	if classCount >= 2 {
		return "Fused (" + strings.Join(names, " + ") + ")"
	}
	return names[0]
}
