// Package measurement defines the shared data model for environmental
// readings, fused metrics, and data quality indicators.
package measurement

import (
	"errors"
	"time"
)

// Measurement errors.
var (
	ErrUnknownPollutant = errors.New("unknown pollutant")
	ErrUnknownDomain    = errors.New("unknown domain")
)

// Pollutant represents an air quality pollutant type.
type Pollutant string

const (
	PollutantPM25 Pollutant = "pm25"
	PollutantPM10 Pollutant = "pm10"
	PollutantNO2  Pollutant = "no2"
	PollutantSO2  Pollutant = "so2"
	PollutantO3   Pollutant = "o3"
	PollutantCO   Pollutant = "co"
)

// AllPollutants lists every pollutant in a stable order.
func AllPollutants() []Pollutant {
	return []Pollutant{PollutantPM25, PollutantPM10, PollutantNO2, PollutantSO2, PollutantO3, PollutantCO}
}

// SourceClass identifies the class of an upstream data source.
// Fusion weights are keyed by source class, not by individual source.
type SourceClass string

const (
	SourceGroundSensor SourceClass = "ground_sensor"
	SourceSatellite    SourceClass = "satellite"
	SourceWeather      SourceClass = "weather"
)

// Domain identifies an environmental domain within a MetricsBundle.
type Domain string

const (
	DomainAir   Domain = "air"
	DomainWater Domain = "water"
	DomainLand  Domain = "land"
)

// UnitMicrogramsPerCubicMeter is the common surface-concentration unit
// all air readings are normalized to.
const UnitMicrogramsPerCubicMeter = "μg/m³"

// UnitMolPerSquareMeter is the native unit of satellite column-density
// retrievals.
const UnitMolPerSquareMeter = "mol/m²"

// Reading is a single measurement as delivered by a source collaborator.
// Readings are immutable once produced.
type Reading struct {
	Pollutant Pollutant
	Value     float64
	Unit      string

	// Source names the originating provider (e.g. "OpenAQ").
	Source string

	// Class is the source class used for fusion weighting.
	Class SourceClass

	// Threshold is an optional per-reading guideline carried by the
	// source. Zero means "not provided".
	Threshold float64

	// SpatialResolutionKM is set for grid-based (satellite) readings.
	SpatialResolutionKM float64

	MeasuredAt time.Time
}

// FusedMetric is the per-pollutant result of fusing readings from one
// or more source classes. Consumed read-only downstream.
type FusedMetric struct {
	// Value is the fused estimate in the common unit.
	Value float64

	Unit string

	// Threshold is the regulatory 24h guideline for this pollutant.
	Threshold float64

	// Source is the provenance label: a single source name, or
	// "Fused (a + b)" when two or more source classes contributed.
	Source string

	// SpatialResolutionKM is carried over when a grid-based source
	// contributed (0 when ground-only).
	SpatialResolutionKM float64
}

// ExceedanceRatio returns value/threshold, or 0 with ok=false when the
// threshold is missing or zero (invalid-threshold readings never divide).
func (m FusedMetric) ExceedanceRatio() (float64, bool) {
	if m.Threshold <= 0 {
		return 0, false
	}
	return m.Value / m.Threshold, true
}

// WaterMetrics is the water-domain placeholder result.
type WaterMetrics struct {
	// QualityScore is 0-100, higher is better.
	QualityScore float64

	// Turbidity is nil until a multispectral pipeline supplies it.
	Turbidity *float64

	Status string
	Source string
}

// LandMetrics is the land-domain placeholder result.
type LandMetrics struct {
	// DeforestationRisk is 0-100, higher is worse.
	DeforestationRisk float64

	Trend  string
	Source string
}

// MetricsBundle groups fused metrics per domain for one assessment.
// Produced once per request and treated as immutable afterwards.
type MetricsBundle struct {
	// Air maps pollutant to its fused metric. Pollutants with no
	// contributing readings are absent, never zero-valued.
	Air map[Pollutant]FusedMetric

	Water WaterMetrics
	Land  LandMetrics

	// ObservedAt is the nominal timestamp of the underlying readings.
	ObservedAt time.Time
}

// AirMetric returns the fused metric for a pollutant, if present.
func (b *MetricsBundle) AirMetric(p Pollutant) (FusedMetric, bool) {
	m, ok := b.Air[p]
	return m, ok
}

// DataQuality describes how complete and how fresh the source data
// behind a bundle is. Computed at the ingestion boundary and never
// mutated downstream.
type DataQuality struct {
	// Coverage is valid/total sources, in [0,1].
	Coverage float64

	// AgeHours is the age of the freshest contributing reading.
	AgeHours float64

	ValidSources int
	TotalSources int
}

// WindVector holds u/v wind components in m/s. Nil components mean the
// weather source had no data for the location.
type WindVector struct {
	U *float64
	V *float64

	ObservedAt time.Time
}

// HasComponents reports whether both wind components are present.
func (w WindVector) HasComponents() bool {
	return w.U != nil && w.V != nil
}
