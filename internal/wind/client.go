// Package wind provides wind vector data for the source attribution
// estimator, fetched from an OpenWeatherMap-compatible API.
package wind

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/internal/upstream"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "ERA5"

	// DefaultBaseURL is the OpenWeatherMap current weather API.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the wind client.
type ClientConfig struct {
	// APIKey authenticates against the weather API (required).
	APIKey string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a default
	// resilient client is created.
	HTTPClient HTTPDoer

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches current wind observations and decomposes them into
// u/v components.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a wind client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = upstream.NewClient(upstream.ClientConfig{Source: "wind"})
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name identifies the provider.
func (c *Client) Name() string { return ProviderName }

// API response types.

type currentResponse struct {
	Wind windData `json:"wind"`
	Dt   int64    `json:"dt"`
}

type windData struct {
	Speed float64 `json:"speed"` // m/s
	Deg   float64 `json:"deg"`   // meteorological degrees (wind FROM)
}

// FetchWind retrieves the current wind vector at a point.
func (c *Client) FetchWind(ctx context.Context, p geo.Point) (measurement.WindVector, error) {
	reqURL := fmt.Sprintf("%s/weather?lat=%.6f&lon=%.6f&appid=%s&units=metric",
		c.baseURL, p.Lat, p.Lon, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return measurement.WindVector{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return measurement.WindVector{}, fmt.Errorf("fetch wind: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return measurement.WindVector{}, fmt.Errorf("unexpected status %d from weather endpoint", resp.StatusCode)
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return measurement.WindVector{}, fmt.Errorf("decode weather response: %w", err)
	}

	u, v := Components(payload.Wind.Speed, payload.Wind.Deg)

	c.logger.Debug().
		Float64("speed", payload.Wind.Speed).
		Float64("deg", payload.Wind.Deg).
		Msg("fetched wind vector")

	return measurement.WindVector{
		U:          &u,
		V:          &v,
		ObservedAt: time.Unix(payload.Dt, 0).UTC(),
	}, nil
}

// Components decomposes a meteorological wind (speed, direction the
// wind blows FROM in degrees) into u (eastward) and v (northward)
// components in m/s.
func Components(speed, fromDeg float64) (u, v float64) {
	rad := fromDeg * math.Pi / 180
	u = -speed * math.Sin(rad)
	v = -speed * math.Cos(rad)
	return u, v
}
