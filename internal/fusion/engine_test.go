package fusion_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosentry/ecosentry/internal/fusion"
	"github.com/ecosentry/ecosentry/internal/measurement"
)

func groundReading(p measurement.Pollutant, value float64) measurement.Reading {
	return measurement.Reading{
		Pollutant: p,
		Value:     value,
		Unit:      measurement.UnitMicrogramsPerCubicMeter,
		Source:    "OpenAQ",
		Class:     measurement.SourceGroundSensor,
	}
}

func satelliteReading(p measurement.Pollutant, value float64, resolutionKM float64) measurement.Reading {
	return measurement.Reading{
		Pollutant:           p,
		Value:               value,
		Unit:                measurement.UnitMicrogramsPerCubicMeter,
		Source:              "Sentinel-5P TROPOMI",
		Class:               measurement.SourceSatellite,
		SpatialResolutionKM: resolutionKM,
	}
}

func TestEngine_Fuse_SingleSource(t *testing.T) {
	engine := fusion.NewEngine(fusion.EngineConfig{})

	bundle := engine.Fuse([]measurement.Reading{
		groundReading(measurement.PollutantPM25, 50.0),
	}, time.Now())

	metric, ok := bundle.AirMetric(measurement.PollutantPM25)
	require.True(t, ok)

	// A single contributing source keeps its value and its name.
	assert.Equal(t, 50.0, metric.Value)
	assert.Equal(t, "OpenAQ", metric.Source)
	assert.Equal(t, 45.0, metric.Threshold)
	assert.Equal(t, measurement.UnitMicrogramsPerCubicMeter, metric.Unit)
}

func TestEngine_Fuse_WeightedAverage(t *testing.T) {
	engine := fusion.NewEngine(fusion.EngineConfig{})

	bundle := engine.Fuse([]measurement.Reading{
		groundReading(measurement.PollutantNO2, 10.0),
		satelliteReading(measurement.PollutantNO2, 20.0, 3.5),
	}, time.Now())

	metric, ok := bundle.AirMetric(measurement.PollutantNO2)
	require.True(t, ok)

	// Weights are not renormalized: (10*0.5 + 20*0.4) / 0.9.
	assert.InDelta(t, 14.444, metric.Value, 0.001)
	assert.Equal(t, "Fused (OpenAQ + Sentinel-5P TROPOMI)", metric.Source)
	assert.Equal(t, 3.5, metric.SpatialResolutionKM)
}

func TestEngine_Fuse_SameClassNotLabeledFused(t *testing.T) {
	engine := fusion.NewEngine(fusion.EngineConfig{})

	// Two readings from the same source class stay under the single
	// source's name.
	bundle := engine.Fuse([]measurement.Reading{
		groundReading(measurement.PollutantPM10, 30.0),
		groundReading(measurement.PollutantPM10, 40.0),
	}, time.Now())

	metric, ok := bundle.AirMetric(measurement.PollutantPM10)
	require.True(t, ok)
	assert.Equal(t, 35.0, metric.Value)
	assert.Equal(t, "OpenAQ", metric.Source)
}

func TestEngine_Fuse_AbsentPollutantNotSynthesized(t *testing.T) {
	engine := fusion.NewEngine(fusion.EngineConfig{})

	bundle := engine.Fuse([]measurement.Reading{
		groundReading(measurement.PollutantPM25, 12.0),
	}, time.Now())

	_, ok := bundle.AirMetric(measurement.PollutantSO2)
	assert.False(t, ok, "pollutant with no readings must be absent, not zero")
	assert.Len(t, bundle.Air, 1)
}

func TestEngine_Fuse_NegativeValueSkipped(t *testing.T) {
	engine := fusion.NewEngine(fusion.EngineConfig{})

	bundle := engine.Fuse([]measurement.Reading{
		groundReading(measurement.PollutantPM25, -5.0),
	}, time.Now())

	_, ok := bundle.AirMetric(measurement.PollutantPM25)
	assert.False(t, ok)
}

func TestEngine_Fuse_ColumnDensityConverted(t *testing.T) {
	engine := fusion.NewEngine(fusion.EngineConfig{})

	reading := measurement.Reading{
		Pollutant: measurement.PollutantNO2,
		Value:     2.0e-5,
		Unit:      measurement.UnitMolPerSquareMeter,
		Source:    "Sentinel-5P TROPOMI",
		Class:     measurement.SourceSatellite,
	}

	bundle := engine.Fuse([]measurement.Reading{reading}, time.Now())

	metric, ok := bundle.AirMetric(measurement.PollutantNO2)
	require.True(t, ok)

	expected, convOK := fusion.ColumnDensityToSurface(measurement.PollutantNO2, 2.0e-5)
	require.True(t, convOK)
	assert.InDelta(t, expected, metric.Value, 1e-12)
	assert.Equal(t, measurement.UnitMicrogramsPerCubicMeter, metric.Unit)
}

func TestEngine_Fuse_UnknownClassIgnored(t *testing.T) {
	engine := fusion.NewEngine(fusion.EngineConfig{})

	bundle := engine.Fuse([]measurement.Reading{
		{
			Pollutant: measurement.PollutantPM25,
			Value:     10.0,
			Unit:      measurement.UnitMicrogramsPerCubicMeter,
			Source:    "mystery",
			Class:     measurement.SourceClass("unknown"),
		},
	}, time.Now())

	assert.Empty(t, bundle.Air)
}

func TestEngine_Fuse_Deterministic(t *testing.T) {
	engine := fusion.NewEngine(fusion.EngineConfig{})
	observedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	readings := []measurement.Reading{
		groundReading(measurement.PollutantPM25, 18.0),
		satelliteReading(measurement.PollutantNO2, 42.0, 3.5),
	}

	first := engine.Fuse(readings, observedAt)
	second := engine.Fuse(readings, observedAt)
	assert.Equal(t, first, second)
}

func TestEngine_Fuse_PlaceholderDomains(t *testing.T) {
	engine := fusion.NewEngine(fusion.EngineConfig{})

	bundle := engine.Fuse(nil, time.Now())

	assert.Equal(t, 75.0, bundle.Water.QualityScore)
	assert.Equal(t, "Data not available", bundle.Water.Status)
	assert.Nil(t, bundle.Water.Turbidity)
	assert.Equal(t, 25.0, bundle.Land.DeforestationRisk)
	assert.Equal(t, "stable", bundle.Land.Trend)
}

func TestEngine_Fuse_CustomGuidelines(t *testing.T) {
	engine := fusion.NewEngine(fusion.EngineConfig{
		Guidelines: fusion.CPCBGuidelines(),
	})

	bundle := engine.Fuse([]measurement.Reading{
		groundReading(measurement.PollutantPM25, 50.0),
	}, time.Now())

	metric, ok := bundle.AirMetric(measurement.PollutantPM25)
	require.True(t, ok)
	assert.Equal(t, 60.0, metric.Threshold)
}
