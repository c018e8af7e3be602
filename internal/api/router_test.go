package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosentry/ecosentry/internal/anomaly"
	"github.com/ecosentry/ecosentry/internal/api"
	"github.com/ecosentry/ecosentry/internal/assessment"
	"github.com/ecosentry/ecosentry/internal/fusion"
	"github.com/ecosentry/ecosentry/internal/history"
	"github.com/ecosentry/ecosentry/internal/ingest"
	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/internal/risk"
	"github.com/ecosentry/ecosentry/internal/upstream"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

type staticProvider struct {
	readings []measurement.Reading
	err      error
}

func (s *staticProvider) Name() string                   { return "OpenAQ" }
func (s *staticProvider) Class() measurement.SourceClass { return measurement.SourceGroundSensor }
func (s *staticProvider) FetchReadings(context.Context, geo.Point) ([]measurement.Reading, error) {
	return s.readings, s.err
}

func testRouter(t *testing.T, provider ingest.Provider, health *upstream.HealthRegistry) http.Handler {
	t.Helper()

	logger := zerolog.New(io.Discard)
	coordinator := ingest.NewCoordinator(ingest.CoordinatorConfig{
		Providers: []ingest.Provider{provider},
		Health:    health,
		Logger:    logger,
	})
	svc := assessment.NewService(assessment.ServiceConfig{
		Ingest:   coordinator,
		Fusion:   fusion.NewEngine(fusion.EngineConfig{}),
		Scorer:   risk.NewScorer(risk.ScorerConfig{}),
		Detector: anomaly.NewDetector(anomaly.Config{}),
		History:  history.NewStore(history.StoreConfig{}),
		Logger:   logger,
	})

	return api.NewRouter(api.RouterConfig{
		Assessment: svc,
		Health:     health,
		Version:    "test",
		Logger:     logger,
	})
}

func defaultProvider() *staticProvider {
	return &staticProvider{
		readings: []measurement.Reading{{
			Pollutant:  measurement.PollutantPM25,
			Value:      18.0,
			Unit:       measurement.UnitMicrogramsPerCubicMeter,
			Source:     "OpenAQ",
			Class:      measurement.SourceGroundSensor,
			MeasuredAt: time.Now().UTC().Add(-time.Hour),
		}},
	}
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	return rec
}

func TestRouter_GetAssessment(t *testing.T) {
	router := testRouter(t, defaultProvider(), upstream.NewHealthRegistry(nil))

	rec := get(t, router, "/v1/assessments/52.37,4.89")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "location")
	assert.Contains(t, body, "risk")
	assert.Contains(t, body, "data_quality")
}

func TestRouter_BadCoordinates(t *testing.T) {
	router := testRouter(t, defaultProvider(), upstream.NewHealthRegistry(nil))

	rec := get(t, router, "/v1/assessments/abc,def")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "Validation Error", problem["title"])
}

func TestRouter_OutOfRangeCoordinates(t *testing.T) {
	router := testRouter(t, defaultProvider(), upstream.NewHealthRegistry(nil))

	rec := get(t, router, "/v1/assessments/95.0,4.89")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UpstreamFailure(t *testing.T) {
	provider := &staticProvider{err: assert.AnError}
	router := testRouter(t, provider, upstream.NewHealthRegistry(nil))

	// A single failing provider still yields a degraded snapshot, so
	// the assessment succeeds with zero coverage.
	rec := get(t, router, "/v1/assessments/52.37,4.89")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Analysis(t *testing.T) {
	router := testRouter(t, defaultProvider(), upstream.NewHealthRegistry(nil))

	rec := get(t, router, "/v1/analysis/52.37,4.89")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "summary")
	assert.Contains(t, body, "reasons")
	assert.Contains(t, body, "technical")
}

func TestRouter_Forecast(t *testing.T) {
	router := testRouter(t, defaultProvider(), upstream.NewHealthRegistry(nil))

	rec := get(t, router, "/v1/forecast/52.37,4.89?horizon_hours=12")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(12), body["horizon_hours"])
}

func TestRouter_ForecastBadHorizon(t *testing.T) {
	router := testRouter(t, defaultProvider(), upstream.NewHealthRegistry(nil))

	rec := get(t, router, "/v1/forecast/52.37,4.89?horizon_hours=soon")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Anomaly(t *testing.T) {
	router := testRouter(t, defaultProvider(), upstream.NewHealthRegistry(nil))

	rec := get(t, router, "/v1/anomaly/52.37,4.89")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["trained"])
}

func TestRouter_OpsHealth(t *testing.T) {
	router := testRouter(t, defaultProvider(), upstream.NewHealthRegistry(nil))

	rec := get(t, router, "/v1/ops/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ecosentry", body["service"])
	assert.Equal(t, "test", body["version"])
}

func TestRouter_OpsReady(t *testing.T) {
	registry := upstream.NewHealthRegistry(nil)
	router := testRouter(t, defaultProvider(), registry)

	// No sources registered yet: ready by default.
	rec := get(t, router, "/v1/ops/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	// A successful assessment records source health.
	get(t, router, "/v1/assessments/52.37,4.89")

	rec = get(t, router, "/v1/ops/ready")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	sources, ok := body["sources"].([]any)
	require.True(t, ok)
	assert.Len(t, sources, 1)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := testRouter(t, defaultProvider(), upstream.NewHealthRegistry(nil))

	rec := get(t, router, "/v1/nothing/here")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}
