// Package upstream provides resilient HTTP access to external data
// sources, with per-source circuit breakers, retry with exponential
// backoff, and health tracking.
package upstream

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Upstream errors.
var (
	// ErrSourceOpen is returned while a source's circuit breaker is open.
	ErrSourceOpen = errors.New("source circuit breaker is open")
)

// ClientConfig holds configuration for a resilient source client.
type ClientConfig struct {
	// Source identifies the upstream source for breaker naming and
	// health tracking.
	Source string

	// Timeout is the per-request timeout. Default: 10s.
	Timeout time.Duration

	// MaxRetries bounds retry attempts on transient failures.
	// Default: 3.
	MaxRetries uint64

	// InitialInterval is the first retry backoff delay. Default: 200ms.
	InitialInterval time.Duration

	// MaxInterval caps the retry backoff delay. Default: 5s.
	MaxInterval time.Duration

	// BreakerTimeout is how long the breaker stays open before probing.
	// Default: 60s.
	BreakerTimeout time.Duration
}

// Client wraps an HTTP client with a circuit breaker and retry logic.
// Network errors and 5xx responses count as failures and are retried;
// an open breaker fails fast with ErrSourceOpen.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
}

// NewClient creates a resilient source client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Source,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip at a 50% failure rate once 5 requests have been seen.
			return counts.Requests >= 5 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		config:     cfg,
	}
}

// serverError marks a 5xx response as a breaker/retry failure.
type serverError struct {
	statusCode int
}

func (e *serverError) Error() string {
	return "server error: " + http.StatusText(e.statusCode)
}

// Do executes a request with breaker protection and retries.
// The caller is responsible for closing the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries bounded by WithMaxRetries

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	operation := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return r, &serverError{statusCode: r.StatusCode}
			}
			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrSourceOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}

		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		// A 5xx that exhausted retries still carries a response.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}

	return lastResp, nil
}

// DoWithContext executes a request with an explicit context.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.Do(req.WithContext(ctx))
}

// BreakerState exposes the breaker state for health reporting.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}
