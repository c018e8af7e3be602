// Package openaq provides a client for the OpenAQ ground sensor
// network API.
package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
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
	ProviderName = "OpenAQ"

	// DefaultBaseURL is the OpenAQ v2 API base URL.
	DefaultBaseURL = "https://api.openaq.org/v2"

	// DefaultRadiusKM is the station search radius around the query
	// point.
	DefaultRadiusKM = 50.0
)

// defaultParameters are the pollutants requested from OpenAQ.
var defaultParameters = []string{"pm25", "pm10", "no2", "so2", "o3", "co"}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenAQ client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// APIKey is sent as X-API-Key when set.
	APIKey string

	// RadiusKM is the station search radius (default: DefaultRadiusKM).
	RadiusKM float64

	// HTTPClient is the HTTP client to use. If nil, a default
	// resilient client is created.
	HTTPClient HTTPDoer

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenAQ API client. Readings it produces belong to the
// ground sensor source class.
type Client struct {
	baseURL    string
	apiKey     string
	radiusKM   float64
	httpClient HTTPDoer
	logger     zerolog.Logger
}

var _ ingest.Provider = (*Client)(nil)

// NewClient creates an OpenAQ client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	radius := cfg.RadiusKM
	if radius <= 0 {
		radius = DefaultRadiusKM
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = upstream.NewClient(upstream.ClientConfig{Source: "openaq"})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		radiusKM:   radius,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name implements ingest.Provider.
func (c *Client) Name() string { return ProviderName }

// Class implements ingest.Provider.
func (c *Client) Class() measurement.SourceClass { return measurement.SourceGroundSensor }

// API response types (from the OpenAQ v2 API).

type latestResponse struct {
	Results []latestResult `json:"results"`
}

type latestResult struct {
	Location     string            `json:"location"`
	Measurements []latestParameter `json:"measurements"`
}

type latestParameter struct {
	Parameter   string  `json:"parameter"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	LastUpdated string  `json:"lastUpdated"`
}

// FetchReadings retrieves the latest measurements from stations near
// the point. Non-numeric or negative values never become readings.
func (c *Client) FetchReadings(ctx context.Context, p geo.Point) ([]measurement.Reading, error) {
	query := url.Values{}
	query.Set("coordinates", fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon))
	query.Set("radius", fmt.Sprintf("%d", int(c.radiusKM*1000)))
	query.Set("limit", "100")
	query.Set("order_by", "distance")
	for _, param := range defaultParameters {
		query.Add("parameter", param)
	}

	reqURL := c.baseURL + "/latest?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest measurements: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from latest endpoint", resp.StatusCode)
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode latest response: %w", err)
	}

	var readings []measurement.Reading
	for _, station := range payload.Results {
		for _, m := range station.Measurements {
			pollutant, ok := parsePollutant(m.Parameter)
			if !ok || m.Value < 0 {
				continue
			}

			measuredAt, _ := time.Parse(time.RFC3339, m.LastUpdated)

			readings = append(readings, measurement.Reading{
				Pollutant:  pollutant,
				Value:      m.Value,
				Unit:       m.Unit,
				Source:     ProviderName,
				Class:      measurement.SourceGroundSensor,
				MeasuredAt: measuredAt,
			})
		}
	}

	c.logger.Debug().
		Int("stations", len(payload.Results)).
		Int("readings", len(readings)).
		Msg("fetched ground sensor readings")

	return readings, nil
}

// parsePollutant maps OpenAQ parameter names onto pollutant types.
func parsePollutant(parameter string) (measurement.Pollutant, bool) {
	switch strings.ToLower(parameter) {
	case "pm25":
		return measurement.PollutantPM25, true
	case "pm10":
		return measurement.PollutantPM10, true
	case "no2":
		return measurement.PollutantNO2, true
	case "so2":
		return measurement.PollutantSO2, true
	case "o3":
		return measurement.PollutantO3, true
	case "co":
		return measurement.PollutantCO, true
	default:
		return "", false
	}
}
