// Package sentinel provides a client for Sentinel-5P TROPOMI column
// density retrievals, served through an Earth Engine export proxy.
package sentinel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecosentry/ecosentry/internal/ingest"
	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/internal/upstream"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "Sentinel-5P TROPOMI"

	// DefaultBufferKM is the averaging buffer around the query point.
	DefaultBufferKM = 10.0

	// Spatial resolutions of the TROPOMI L3 products, in km.
	no2ResolutionKM = 3.5
	so2ResolutionKM = 7.0
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Sentinel-5P client.
type ClientConfig struct {
	// BaseURL is the retrieval proxy base URL (required); the proxy
	// reduces the COPERNICUS/S5P/OFFL/L3 image collections over the
	// requested region.
	BaseURL string

	// BufferKM is the averaging buffer radius (default: DefaultBufferKM).
	BufferKM float64

	// HTTPClient is the HTTP client to use. If nil, a default
	// resilient client is created.
	HTTPClient HTTPDoer

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches satellite column densities. Values arrive in mol/m²;
// the fusion engine's unit normalizer converts them to an approximate
// surface concentration.
type Client struct {
	baseURL    string
	bufferKM   float64
	httpClient HTTPDoer
	logger     zerolog.Logger
}

var _ ingest.Provider = (*Client)(nil)

// NewClient creates a Sentinel-5P client.
func NewClient(cfg ClientConfig) *Client {
	buffer := cfg.BufferKM
	if buffer <= 0 {
		buffer = DefaultBufferKM
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = upstream.NewClient(upstream.ClientConfig{Source: "sentinel5p"})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		bufferKM:   buffer,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name implements ingest.Provider.
func (c *Client) Name() string { return ProviderName }

// Class implements ingest.Provider.
func (c *Client) Class() measurement.SourceClass { return measurement.SourceSatellite }

// API response types (from the retrieval proxy).

type retrievalResponse struct {
	Timestamp string          `json:"timestamp"`
	NO2       *columnDensity  `json:"no2"`
	SO2       *columnDensity  `json:"so2"`
}

type columnDensity struct {
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
}

// FetchReadings retrieves mean NO2 and SO2 column densities over the
// buffered region. Missing retrievals (cloud cover, no overpass)
// simply produce no reading.
func (c *Client) FetchReadings(ctx context.Context, p geo.Point) ([]measurement.Reading, error) {
	reqURL := fmt.Sprintf("%s/retrieve?lat=%.6f&lon=%.6f&buffer_km=%.1f", c.baseURL, p.Lat, p.Lon, c.bufferKM)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch retrieval: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from retrieve endpoint", resp.StatusCode)
	}

	var payload retrievalResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode retrieval response: %w", err)
	}

	measuredAt, _ := time.Parse(time.RFC3339, payload.Timestamp)

	var readings []measurement.Reading
	if r, ok := reading(measurement.PollutantNO2, payload.NO2, no2ResolutionKM, measuredAt); ok {
		readings = append(readings, r)
	}
	if r, ok := reading(measurement.PollutantSO2, payload.SO2, so2ResolutionKM, measuredAt); ok {
		readings = append(readings, r)
	}

	c.logger.Debug().
		Int("readings", len(readings)).
		Msg("fetched satellite column densities")

	return readings, nil
}

// reading converts one column density into a Reading. Nil or negative
// retrievals contribute nothing.
func reading(p measurement.Pollutant, cd *columnDensity, resolutionKM float64, measuredAt time.Time) (measurement.Reading, bool) {
	if cd == nil || cd.Value == nil || *cd.Value < 0 {
		return measurement.Reading{}, false
	}

	unit := cd.Unit
	if unit == "" {
		unit = measurement.UnitMolPerSquareMeter
	}

	return measurement.Reading{
		Pollutant:           p,
		Value:               *cd.Value,
		Unit:                unit,
		Source:              ProviderName,
		Class:               measurement.SourceSatellite,
		SpatialResolutionKM: resolutionKM,
		MeasuredAt:          measuredAt,
	}, true
}
