package sentinel_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosentry/ecosentry/internal/ingest/sentinel"
	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

func TestClient_FetchReadings(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/retrieve", r.URL.Path)
		io.WriteString(w, `{
			"timestamp": "2026-03-01T09:30:00Z",
			"no2": {"value": 0.00012, "unit": "mol/m^2"},
			"so2": {"value": 0.00004}
		}`)
	}))
	defer server.Close()

	client := sentinel.NewClient(sentinel.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.New(io.Discard),
	})

	readings, err := client.FetchReadings(context.Background(), geo.Point{Lat: 22.47, Lon: 70.05})
	require.NoError(t, err)
	require.Len(t, readings, 2)

	no2 := readings[0]
	assert.Equal(t, measurement.PollutantNO2, no2.Pollutant)
	assert.Equal(t, 0.00012, no2.Value)
	assert.Equal(t, "mol/m^2", no2.Unit)
	assert.Equal(t, measurement.SourceSatellite, no2.Class)
	assert.Equal(t, 3.5, no2.SpatialResolutionKM)
	assert.False(t, no2.MeasuredAt.IsZero())

	so2 := readings[1]
	assert.Equal(t, measurement.PollutantSO2, so2.Pollutant)
	// Unit falls back to mol/m² when the proxy omits it.
	assert.Equal(t, measurement.UnitMolPerSquareMeter, so2.Unit)
	assert.Equal(t, 7.0, so2.SpatialResolutionKM)

	assert.Contains(t, gotQuery, "lat=22.470000")
	assert.Contains(t, gotQuery, "lon=70.050000")
	assert.Contains(t, gotQuery, "buffer_km=10.0")
}

func TestClient_FetchReadingsMissingRetrievals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Cloud cover: SO2 retrieval absent, NO2 value null.
		io.WriteString(w, `{"timestamp": "2026-03-01T09:30:00Z", "no2": {"value": null}}`)
	}))
	defer server.Close()

	client := sentinel.NewClient(sentinel.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.New(io.Discard),
	})

	readings, err := client.FetchReadings(context.Background(), geo.Point{Lat: 22.47, Lon: 70.05})
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestClient_FetchReadingsNegativeValueSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"timestamp": "2026-03-01T09:30:00Z",
			"no2": {"value": -0.0001},
			"so2": {"value": 0.00002}
		}`)
	}))
	defer server.Close()

	client := sentinel.NewClient(sentinel.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.New(io.Discard),
	})

	readings, err := client.FetchReadings(context.Background(), geo.Point{Lat: 22.47, Lon: 70.05})
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, measurement.PollutantSO2, readings[0].Pollutant)
}

func TestClient_FetchReadingsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := sentinel.NewClient(sentinel.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.New(io.Discard),
	})

	_, err := client.FetchReadings(context.Background(), geo.Point{Lat: 22.47, Lon: 70.05})
	assert.ErrorContains(t, err, "unexpected status 502")
}
