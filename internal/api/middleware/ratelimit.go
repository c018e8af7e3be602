package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/ecosentry/ecosentry/internal/api/models"
)

// RateLimitConfig bounds request volume per client IP over a window.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Expensive covers endpoints that fan out to upstream data sources.
func Expensive() RateLimitConfig {
	return RateLimitConfig{Requests: 30, Window: time.Minute}
}

// Standard covers cheap endpoints such as health probes.
func Standard() RateLimitConfig {
	return RateLimitConfig{Requests: 100, Window: time.Minute}
}

// RateLimit enforces the configured per-IP limit, answering excess
// traffic with a problem document and a Retry-After hint.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceeded),
	)
}

func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	problem := models.NewRateLimitExceeded(r.URL.Path)
	problem.Write(w)
}
