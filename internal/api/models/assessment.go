package models

import (
	"time"

	"github.com/ecosentry/ecosentry/internal/anomaly"
	"github.com/ecosentry/ecosentry/internal/assessment"
	"github.com/ecosentry/ecosentry/internal/measurement"
)

// Location is a lat/lon pair echoed back on every response.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PollutantMetric is one fused air metric.
type PollutantMetric struct {
	Value               float64 `json:"value"`
	Unit                string  `json:"unit"`
	Threshold           float64 `json:"threshold,omitempty"`
	Source              string  `json:"source"`
	SpatialResolutionKM float64 `json:"spatial_resolution_km,omitempty"`
}

// WaterMetrics mirrors the water-domain placeholder.
type WaterMetrics struct {
	QualityScore float64  `json:"quality_score"`
	Turbidity    *float64 `json:"turbidity"`
	Status       string   `json:"status"`
	Source       string   `json:"source"`
}

// LandMetrics mirrors the land-domain placeholder.
type LandMetrics struct {
	DeforestationRisk float64 `json:"deforestation_risk"`
	Trend             string  `json:"trend"`
	Source            string  `json:"source"`
}

// DataQuality describes source completeness and freshness.
type DataQuality struct {
	Coverage     float64 `json:"coverage"`
	AgeHours     float64 `json:"age_hours"`
	ValidSources int     `json:"valid_sources"`
	TotalSources int     `json:"total_sources"`
}

// RiskResult is the scored habitability verdict.
type RiskResult struct {
	RiskScore          float64 `json:"risk_score"`
	Verdict            string  `json:"verdict"`
	Confidence         float64 `json:"confidence"`
	ExposureScore      float64 `json:"exposure_score"`
	DurationScore      float64 `json:"duration_score"`
	UncertaintyPenalty float64 `json:"uncertainty_penalty"`
	ModelVersion       string  `json:"model_version"`
}

// AnomalyResult is the outlier classification for the latest sample.
type AnomalyResult struct {
	AnomalyScore float64 `json:"anomaly_score"`
	IsAnomaly    bool    `json:"is_anomaly"`
	Confidence   float64 `json:"confidence"`
	Reason       string  `json:"reason,omitempty"`
	Threshold    float64 `json:"threshold,omitempty"`
}

// SourceEstimate is an attributed plume source region.
type SourceEstimate struct {
	Location           Location  `json:"location"`
	ConfidenceRadiusKM float64   `json:"confidence_radius_km"`
	Probability        float64   `json:"probability"`
	Model              string    `json:"model"`
	HoursTraced        int       `json:"hours_traced"`
	EstimatedAt        time.Time `json:"estimated_at"`
}

// PlumeDetection is one detected release and its attribution.
type PlumeDetection struct {
	Pollutant string          `json:"pollutant"`
	Intensity float64         `json:"intensity"`
	Unit      string          `json:"unit"`
	Source    *SourceEstimate `json:"source,omitempty"`
}

// AssessmentResponse is the composite habitability view for a location.
type AssessmentResponse struct {
	Location    Location  `json:"location"`
	GeneratedAt time.Time `json:"generated_at"`

	Air   map[string]PollutantMetric `json:"air"`
	Water WaterMetrics               `json:"water"`
	Land  LandMetrics                `json:"land"`

	Risk    RiskResult    `json:"risk"`
	Anomaly AnomalyResult `json:"anomaly"`

	Plumes []PlumeDetection `json:"plumes,omitempty"`

	Quality DataQuality `json:"data_quality"`
	Sources []string    `json:"sources"`
}

// NewAssessmentResponse maps a domain assessment onto the wire shape.
func NewAssessmentResponse(a *assessment.Assessment) AssessmentResponse {
	air := make(map[string]PollutantMetric, len(a.Metrics.Air))
	for p, m := range a.Metrics.Air {
		air[string(p)] = PollutantMetric{
			Value:               m.Value,
			Unit:                m.Unit,
			Threshold:           m.Threshold,
			Source:              m.Source,
			SpatialResolutionKM: m.SpatialResolutionKM,
		}
	}

	resp := AssessmentResponse{
		Location:    Location{Lat: a.Location.Lat, Lon: a.Location.Lon},
		GeneratedAt: a.GeneratedAt,
		Air:         air,
		Water: WaterMetrics{
			QualityScore: a.Metrics.Water.QualityScore,
			Turbidity:    a.Metrics.Water.Turbidity,
			Status:       a.Metrics.Water.Status,
			Source:       a.Metrics.Water.Source,
		},
		Land: LandMetrics{
			DeforestationRisk: a.Metrics.Land.DeforestationRisk,
			Trend:             a.Metrics.Land.Trend,
			Source:            a.Metrics.Land.Source,
		},
		Risk: RiskResult{
			RiskScore:          a.Risk.RiskScore,
			Verdict:            string(a.Risk.Verdict),
			Confidence:         a.Risk.Confidence,
			ExposureScore:      a.Risk.ExposureScore,
			DurationScore:      a.Risk.DurationScore,
			UncertaintyPenalty: a.Risk.UncertaintyPenalty,
			ModelVersion:       a.Risk.ModelVersion,
		},
		Anomaly: NewAnomalyResult(a.Anomaly),
		Quality: DataQuality{
			Coverage:     a.Quality.Coverage,
			AgeHours:     a.Quality.AgeHours,
			ValidSources: a.Quality.ValidSources,
			TotalSources: a.Quality.TotalSources,
		},
		Sources: a.Sources,
	}

	for _, plume := range a.Plumes {
		if !plume.Detected {
			continue
		}
		dto := PlumeDetection{
			Pollutant: string(plume.Pollutant),
			Intensity: plume.Intensity,
			Unit:      measurement.UnitMicrogramsPerCubicMeter,
		}
		if plume.Source != nil {
			dto.Source = &SourceEstimate{
				Location:           Location{Lat: plume.Source.Source.Lat, Lon: plume.Source.Source.Lon},
				ConfidenceRadiusKM: plume.Source.ConfidenceRadiusKM,
				Probability:        plume.Source.Probability,
				Model:              plume.Source.Model,
				HoursTraced:        plume.Source.HoursTraced,
				EstimatedAt:        plume.Source.EstimatedAt,
			}
		}
		resp.Plumes = append(resp.Plumes, dto)
	}

	return resp
}

// NewAnomalyResult maps a detector result onto the wire shape.
func NewAnomalyResult(r anomaly.Result) AnomalyResult {
	return AnomalyResult{
		AnomalyScore: r.AnomalyScore,
		IsAnomaly:    r.IsAnomaly,
		Confidence:   r.Confidence,
		Reason:       string(r.Reason),
		Threshold:    r.Threshold,
	}
}

// AnomalyResponse is the standalone anomaly endpoint payload.
type AnomalyResponse struct {
	Location    Location      `json:"location"`
	GeneratedAt time.Time     `json:"generated_at"`
	Anomaly     AnomalyResult `json:"anomaly"`
	Trained     bool          `json:"trained"`
}
