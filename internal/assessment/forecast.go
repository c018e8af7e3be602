package assessment

import (
	"context"
	"time"

	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

// Forecast horizon bounds, in hours.
const (
	DefaultForecastHorizonHours = 48
	MaxForecastHorizonHours     = 168

	// forecastStepHours is the prediction interval.
	forecastStepHours = 6
)

// forecastPollutants are the pollutants projected by the placeholder
// model.
var forecastPollutants = []measurement.Pollutant{
	measurement.PollutantPM25,
	measurement.PollutantNO2,
}

// forecastModelNote flags the projection as a stand-in. A trained
// time-series model needs more history than the in-memory store keeps.
const forecastModelNote = "persistence projection (placeholder); not a trained forecasting model"

// Forecast projects current fused values forward with widening
// uncertainty bounds. It is explicitly a placeholder: the mean is held
// at the last observation and only the band grows with the horizon.
func (s *Service) Forecast(ctx context.Context, p geo.Point, horizonHours int) (*Forecast, error) {
	if !p.Valid() {
		return nil, ErrInvalidCoordinates
	}
	if horizonHours <= 0 {
		horizonHours = DefaultForecastHorizonHours
	}
	if horizonHours > MaxForecastHorizonHours {
		horizonHours = MaxForecastHorizonHours
	}

	snapshot, err := s.ingest.Fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	bundle := s.fusion.Fuse(snapshot.Readings, snapshot.FetchedAt)

	now := s.clock.Now().UTC()
	var steps []PredictionStep

	for offset := 0; offset < horizonHours; offset += forecastStepHours {
		bands := make(map[measurement.Pollutant]PredictionBand)

		for _, pollutant := range forecastPollutants {
			metric, ok := bundle.AirMetric(pollutant)
			if !ok {
				continue
			}

			// Band starts at ±10% and widens with the horizon;
			// confidence decays alongside.
			spread := metric.Value * 0.10 * (1 + float64(offset)/float64(MaxForecastHorizonHours))
			bands[pollutant] = PredictionBand{
				Mean:       metric.Value,
				Lower:      maxFloat(0, metric.Value-spread),
				Upper:      metric.Value + spread,
				Confidence: maxFloat(0.5, 0.85-float64(offset)/float64(MaxForecastHorizonHours)*0.3),
			}
		}

		steps = append(steps, PredictionStep{
			Timestamp:  now.Add(time.Duration(offset) * time.Hour),
			Pollutants: bands,
		})
	}

	return &Forecast{
		Location:     p,
		HorizonHours: horizonHours,
		GeneratedAt:  now,
		Predictions:  steps,
		ModelNote:    forecastModelNote,
	}, nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
