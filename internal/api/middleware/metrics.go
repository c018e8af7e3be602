package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records request duration, count, in-flight gauge and
// response size for every handled request.
type HTTPMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	inFlight metric.Int64UpDownCounter
	respSize metric.Int64Histogram
}

// NewHTTPMetrics creates the request instruments on the global meter
// provider. Instrument creation errors are returned so the caller can
// decide whether to run without metrics.
func NewHTTPMetrics() (*HTTPMetrics, error) {
	meter := otel.Meter("ecosentry/api")

	duration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	total, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total HTTP requests handled"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		"http.server.requests_in_flight",
		metric.WithDescription("HTTP requests currently being served"),
	)
	if err != nil {
		return nil, err
	}

	respSize, err := meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("HTTP response size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		duration: duration,
		total:    total,
		inFlight: inFlight,
		respSize: respSize,
	}, nil
}

// Middleware instruments the wrapped handler.
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		m.inFlight.Add(ctx, 1)
		defer m.inFlight.Add(ctx, -1)

		rw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)

		attrs := metric.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", r.URL.Path),
			attribute.Int("http.status_code", rw.status),
		)

		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		m.total.Add(ctx, 1, attrs)
		m.respSize.Record(ctx, int64(rw.bytes), attrs)
	})
}
