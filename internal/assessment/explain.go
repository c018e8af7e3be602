package assessment

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/internal/risk"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

// pollutantLabels are the display names used in explanations.
var pollutantLabels = map[measurement.Pollutant]string{
	measurement.PollutantPM25: "PM2.5",
	measurement.PollutantPM10: "PM10",
	measurement.PollutantNO2:  "NO₂",
	measurement.PollutantSO2:  "SO₂",
	measurement.PollutantO3:   "O₃",
	measurement.PollutantCO:   "CO",
}

// featureImportance is the model's nominal attribution of verdict
// drivers, reported for transparency in the technical breakdown.
var featureImportance = map[string]float64{
	"pm25":           0.35,
	"no2":            0.25,
	"so2":            0.15,
	"temporal_trend": 0.15,
	"water_quality":  0.10,
}

// lowWaterQualityCutoff triggers a water-quality reason.
const lowWaterQualityCutoff = 70.0

// Analyze runs an assessment and derives human-readable and technical
// explanations from it.
func (s *Service) Analyze(ctx context.Context, p geo.Point) (*Analysis, error) {
	a, err := s.Assess(ctx, p)
	if err != nil {
		return nil, err
	}

	reasons, recommendations := explain(a)

	return &Analysis{
		Assessment:      a,
		Summary:         summaryFor(a.Risk.Verdict),
		Reasons:         reasons,
		Recommendations: recommendations,
		Technical:       technicalBreakdown(a),
	}, nil
}

// explain produces exceedance reasons and matching recommendations.
func explain(a *Assessment) (reasons, recommendations []string) {
	seen := make(map[string]struct{})
	recommend := func(r string) {
		if _, ok := seen[r]; ok {
			return
		}
		seen[r] = struct{}{}
		recommendations = append(recommendations, r)
	}

	for _, pollutant := range measurement.AllPollutants() {
		metric, ok := a.Metrics.AirMetric(pollutant)
		if !ok {
			continue
		}
		ratio, ok := metric.ExceedanceRatio()
		if !ok || ratio <= 1 {
			continue
		}

		reasons = append(reasons, fmt.Sprintf(
			"%s levels (%.1f %s) exceed the WHO guideline (%.0f %s) by %.1f×",
			pollutantLabels[pollutant], metric.Value, metric.Unit,
			metric.Threshold, metric.Unit, ratio))

		if pollutant == measurement.PollutantPM25 || pollutant == measurement.PollutantPM10 {
			recommend("Avoid outdoor activities, especially during peak hours")
			recommend("Use air purifiers indoors")
		}
	}

	if a.Metrics.Water.QualityScore < lowWaterQualityCutoff {
		reasons = append(reasons, fmt.Sprintf(
			"Water quality score (%.0f/100) is below the recommended level",
			a.Metrics.Water.QualityScore))
		recommend("Monitor water before consumption")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Data analysis completed, but no major exceedances detected.")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Continue monitoring environmental conditions")
	}

	return reasons, recommendations
}

// summaryFor maps a verdict onto a one-line summary.
func summaryFor(v risk.Verdict) string {
	switch v {
	case risk.VerdictUnsafe:
		return "This location is UNSAFE to inhabit."
	case risk.VerdictModerate:
		return "This location has MODERATE environmental risks."
	default:
		return "This location appears SAFE, but continue monitoring."
	}
}

// technicalBreakdown assembles per-pollutant provenance and the risk
// model internals.
func technicalBreakdown(a *Assessment) TechnicalBreakdown {
	air := make(map[measurement.Pollutant]PollutantDetail, len(a.Metrics.Air))

	for pollutant, metric := range a.Metrics.Air {
		detail := PollutantDetail{
			RawValue:            metric.Value,
			Unit:                metric.Unit,
			Threshold:           metric.Threshold,
			ThresholdStandard:   "WHO Air Quality Guidelines 2021",
			DataSource:          metric.Source,
			SpatialCoverage:     "point",
			SpatialResolutionKM: metric.SpatialResolutionKM,
		}
		if ratio, ok := metric.ExceedanceRatio(); ok {
			detail.ExceedanceFactor = &ratio
		}
		if metric.SpatialResolutionKM > 0 {
			detail.SpatialCoverage = "grid"
		}
		air[pollutant] = detail
	}

	return TechnicalBreakdown{
		AirQuality: air,
		RiskModel: RiskModelDetail{
			ExposureScore:      a.Risk.ExposureScore,
			DurationScore:      a.Risk.DurationScore,
			UncertaintyPenalty: a.Risk.UncertaintyPenalty,
			FinalRiskScore:     a.Risk.RiskScore,
			ModelVersion:       a.Risk.ModelVersion,
			FeatureImportance:  featureImportance,
		},
	}
}

// SortedPollutants returns the breakdown's pollutants in stable order,
// for deterministic serialization.
func (t TechnicalBreakdown) SortedPollutants() []measurement.Pollutant {
	out := make([]measurement.Pollutant, 0, len(t.AirQuality))
	for p := range t.AirQuality {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(string(out[i]), string(out[j])) < 0
	})
	return out
}
