// Package fusion merges per-source readings into unified per-pollutant
// metrics using confidence-weighted averaging.
package fusion

import "github.com/ecosentry/ecosentry/internal/measurement"

// Weights maps each source class to its fusion confidence weight.
// This is loaded configuration, not algorithm: regional deployments can
// swap the table without touching the fusion logic.
type Weights map[measurement.SourceClass]float64

// DefaultWeights returns the canonical source-class weights. The three
// weights sum to 1.0; after filtering to the classes that actually
// report a pollutant, the remaining weights are used as-is without
// renormalization.
func DefaultWeights() Weights {
	return Weights{
		measurement.SourceGroundSensor: 0.5,
		measurement.SourceSatellite:    0.4,
		measurement.SourceWeather:      0.1,
	}
}

// GuidelineTable maps pollutants to regulatory 24-hour thresholds in
// μg/m³. Loaded configuration, swappable per region.
type GuidelineTable map[measurement.Pollutant]float64

// WHOGuidelines returns the WHO Air Quality Guidelines (2021) 24-hour
// thresholds.
func WHOGuidelines() GuidelineTable {
	return GuidelineTable{
		measurement.PollutantPM25: 45.0,
		measurement.PollutantPM10: 45.0,
		measurement.PollutantNO2:  200.0,
		measurement.PollutantSO2:  40.0,
		measurement.PollutantO3:   100.0,
	}
}

// CPCBGuidelines returns the India CPCB 24-hour thresholds, shipped as
// an alternative regional table.
func CPCBGuidelines() GuidelineTable {
	return GuidelineTable{
		measurement.PollutantPM25: 60.0,
		measurement.PollutantPM10: 100.0,
		measurement.PollutantNO2:  80.0,
		measurement.PollutantSO2:  80.0,
		measurement.PollutantO3:   180.0,
	}
}

// Threshold returns the guideline for a pollutant, 0 if absent.
func (t GuidelineTable) Threshold(p measurement.Pollutant) float64 {
	return t[p]
}
