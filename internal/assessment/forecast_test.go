package assessment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosentry/ecosentry/internal/assessment"
	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

func forecastService(t *testing.T) *assessment.Service {
	t.Helper()
	measuredAt := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	return newService(t, &stubProvider{
		name: "OpenAQ",
		readings: []measurement.Reading{
			groundReading(measurement.PollutantPM25, 20.0, measuredAt),
			groundReading(measurement.PollutantNO2, 40.0, measuredAt),
		},
	})
}

func TestService_Forecast(t *testing.T) {
	svc := forecastService(t)

	f, err := svc.Forecast(context.Background(), geo.Point{Lat: 52.37, Lon: 4.89}, 24)
	require.NoError(t, err)

	assert.Equal(t, 24, f.HorizonHours)
	assert.NotEmpty(t, f.ModelNote)
	// 6-hour steps over a 24-hour horizon.
	require.Len(t, f.Predictions, 4)

	first := f.Predictions[0]
	assert.Equal(t, f.GeneratedAt, first.Timestamp)

	pm25, ok := first.Pollutants[measurement.PollutantPM25]
	require.True(t, ok)
	assert.Equal(t, 20.0, pm25.Mean)
	assert.Less(t, pm25.Lower, pm25.Mean)
	assert.Greater(t, pm25.Upper, pm25.Mean)

	// Persistence projection: the mean never moves, the band widens.
	last := f.Predictions[len(f.Predictions)-1]
	lastPM25 := last.Pollutants[measurement.PollutantPM25]
	assert.Equal(t, 20.0, lastPM25.Mean)
	assert.Greater(t, lastPM25.Upper-lastPM25.Lower, pm25.Upper-pm25.Lower)
	assert.Less(t, lastPM25.Confidence, pm25.Confidence)
	assert.GreaterOrEqual(t, lastPM25.Confidence, 0.5)
}

func TestService_ForecastDefaultHorizon(t *testing.T) {
	svc := forecastService(t)

	f, err := svc.Forecast(context.Background(), geo.Point{Lat: 52.37, Lon: 4.89}, 0)
	require.NoError(t, err)
	assert.Equal(t, assessment.DefaultForecastHorizonHours, f.HorizonHours)
}

func TestService_ForecastHorizonClamped(t *testing.T) {
	svc := forecastService(t)

	f, err := svc.Forecast(context.Background(), geo.Point{Lat: 52.37, Lon: 4.89}, 500)
	require.NoError(t, err)
	assert.Equal(t, assessment.MaxForecastHorizonHours, f.HorizonHours)
	assert.Len(t, f.Predictions, assessment.MaxForecastHorizonHours/6)
}

func TestService_ForecastInvalidCoordinates(t *testing.T) {
	svc := forecastService(t)

	_, err := svc.Forecast(context.Background(), geo.Point{Lat: -95, Lon: 0}, 24)
	assert.ErrorIs(t, err, assessment.ErrInvalidCoordinates)
}
