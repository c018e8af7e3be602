package models

import (
	"time"

	"github.com/ecosentry/ecosentry/internal/assessment"
)

// PollutantDetail is the technical view of one fused air metric.
type PollutantDetail struct {
	RawValue            float64  `json:"raw_value"`
	Unit                string   `json:"unit"`
	Threshold           float64  `json:"threshold"`
	ThresholdStandard   string   `json:"threshold_standard"`
	ExceedanceFactor    *float64 `json:"exceedance_factor"`
	DataSource          string   `json:"data_source"`
	SpatialCoverage     string   `json:"spatial_coverage"`
	SpatialResolutionKM float64  `json:"spatial_resolution_km,omitempty"`
}

// RiskModelDetail exposes the scorer internals behind a verdict.
type RiskModelDetail struct {
	ExposureScore      float64            `json:"exposure_score"`
	DurationScore      float64            `json:"duration_score"`
	UncertaintyPenalty float64            `json:"uncertainty_penalty"`
	FinalRiskScore     float64            `json:"final_risk_score"`
	ModelVersion       string             `json:"model_version"`
	FeatureImportance  map[string]float64 `json:"feature_importance"`
}

// TechnicalBreakdown groups the model internals of an analysis.
type TechnicalBreakdown struct {
	AirQuality map[string]PollutantDetail `json:"air_quality"`
	RiskModel  RiskModelDetail            `json:"risk_model"`
}

// AnalysisResponse pairs an assessment with its explanations.
type AnalysisResponse struct {
	Assessment AssessmentResponse `json:"assessment"`

	Summary         string   `json:"summary"`
	Reasons         []string `json:"reasons"`
	Recommendations []string `json:"recommendations"`

	Technical TechnicalBreakdown `json:"technical"`
}

// NewAnalysisResponse maps a domain analysis onto the wire shape.
func NewAnalysisResponse(a *assessment.Analysis) AnalysisResponse {
	air := make(map[string]PollutantDetail, len(a.Technical.AirQuality))
	for p, d := range a.Technical.AirQuality {
		air[string(p)] = PollutantDetail{
			RawValue:            d.RawValue,
			Unit:                d.Unit,
			Threshold:           d.Threshold,
			ThresholdStandard:   d.ThresholdStandard,
			ExceedanceFactor:    d.ExceedanceFactor,
			DataSource:          d.DataSource,
			SpatialCoverage:     d.SpatialCoverage,
			SpatialResolutionKM: d.SpatialResolutionKM,
		}
	}

	return AnalysisResponse{
		Assessment:      NewAssessmentResponse(a.Assessment),
		Summary:         a.Summary,
		Reasons:         a.Reasons,
		Recommendations: a.Recommendations,
		Technical: TechnicalBreakdown{
			AirQuality: air,
			RiskModel: RiskModelDetail{
				ExposureScore:      a.Technical.RiskModel.ExposureScore,
				DurationScore:      a.Technical.RiskModel.DurationScore,
				UncertaintyPenalty: a.Technical.RiskModel.UncertaintyPenalty,
				FinalRiskScore:     a.Technical.RiskModel.FinalRiskScore,
				ModelVersion:       a.Technical.RiskModel.ModelVersion,
				FeatureImportance:  a.Technical.RiskModel.FeatureImportance,
			},
		},
	}
}

// PredictionBand is a point prediction with uncertainty bounds.
type PredictionBand struct {
	Mean       float64 `json:"mean"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Confidence float64 `json:"confidence"`
}

// PredictionStep is one forecast interval.
type PredictionStep struct {
	Timestamp  time.Time                 `json:"timestamp"`
	Pollutants map[string]PredictionBand `json:"pollutants"`
}

// ForecastResponse is the trend projection payload.
type ForecastResponse struct {
	Location     Location         `json:"location"`
	HorizonHours int              `json:"horizon_hours"`
	GeneratedAt  time.Time        `json:"generated_at"`
	Predictions  []PredictionStep `json:"predictions"`
	ModelNote    string           `json:"model_note"`
}

// NewForecastResponse maps a domain forecast onto the wire shape.
func NewForecastResponse(f *assessment.Forecast) ForecastResponse {
	steps := make([]PredictionStep, 0, len(f.Predictions))
	for _, step := range f.Predictions {
		pollutants := make(map[string]PredictionBand, len(step.Pollutants))
		for p, band := range step.Pollutants {
			pollutants[string(p)] = PredictionBand{
				Mean:       band.Mean,
				Lower:      band.Lower,
				Upper:      band.Upper,
				Confidence: band.Confidence,
			}
		}
		steps = append(steps, PredictionStep{Timestamp: step.Timestamp, Pollutants: pollutants})
	}

	return ForecastResponse{
		Location:     Location{Lat: f.Location.Lat, Lon: f.Location.Lon},
		HorizonHours: f.HorizonHours,
		GeneratedAt:  f.GeneratedAt,
		Predictions:  steps,
		ModelNote:    f.ModelNote,
	}
}
