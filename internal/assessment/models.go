// Package assessment orchestrates the habitability pipeline: ingest,
// fuse, score, detect anomalies, and attribute plume sources.
package assessment

import (
	"errors"
	"time"

	"github.com/ecosentry/ecosentry/internal/anomaly"
	"github.com/ecosentry/ecosentry/internal/attribution"
	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/internal/risk"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

// Assessment errors.
var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrIngestFailed       = errors.New("ingestion failed")
)

// PlumeDetection flags a concentrated pollutant release and its
// attributed source.
type PlumeDetection struct {
	Detected  bool
	Pollutant measurement.Pollutant

	// Intensity is the triggering concentration in μg/m³.
	Intensity float64

	// Source is the attributed candidate source. Nil when no
	// detection was made.
	Source *attribution.SourceEstimate
}

// Assessment is the composite result for one location.
type Assessment struct {
	Location    geo.Point
	GeneratedAt time.Time

	Metrics *measurement.MetricsBundle
	Quality measurement.DataQuality

	Risk    risk.Result
	Anomaly anomaly.Result

	Plumes []PlumeDetection

	// Sources lists the providers that contributed valid data.
	Sources []string
}

// Analysis pairs an assessment with human-readable and technical
// explanations.
type Analysis struct {
	Assessment *Assessment

	Summary         string
	Reasons         []string
	Recommendations []string

	Technical TechnicalBreakdown
}

// TechnicalBreakdown carries provenance and model internals for
// readers who want the numbers behind the verdict.
type TechnicalBreakdown struct {
	AirQuality map[measurement.Pollutant]PollutantDetail
	RiskModel  RiskModelDetail
}

// PollutantDetail is the technical view of one fused metric.
type PollutantDetail struct {
	RawValue            float64
	Unit                string
	Threshold           float64
	ThresholdStandard   string
	ExceedanceFactor    *float64
	DataSource          string
	SpatialCoverage     string
	SpatialResolutionKM float64
}

// RiskModelDetail exposes the scorer's sub-scores and weights.
type RiskModelDetail struct {
	ExposureScore      float64
	DurationScore      float64
	UncertaintyPenalty float64
	FinalRiskScore     float64
	ModelVersion       string
	FeatureImportance  map[string]float64
}

// Forecast is a placeholder trend projection for a location.
type Forecast struct {
	Location     geo.Point
	HorizonHours int
	GeneratedAt  time.Time
	Predictions  []PredictionStep
	ModelNote    string
}

// PredictionStep is one 6-hour forecast interval.
type PredictionStep struct {
	Timestamp  time.Time
	Pollutants map[measurement.Pollutant]PredictionBand
}

// PredictionBand is a point prediction with uncertainty bounds.
type PredictionBand struct {
	Mean       float64
	Lower      float64
	Upper      float64
	Confidence float64
}
