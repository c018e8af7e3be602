// Package handler wires HTTP requests to the assessment services.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ecosentry/ecosentry/internal/anomaly"
	"github.com/ecosentry/ecosentry/internal/api/models"
	"github.com/ecosentry/ecosentry/internal/api/response"
	"github.com/ecosentry/ecosentry/internal/assessment"
	"github.com/ecosentry/ecosentry/internal/ingest"
)

// AssessmentHandler serves the assessment, analysis, forecast and
// anomaly endpoints, all backed by the same service.
type AssessmentHandler struct {
	svc *assessment.Service
	log zerolog.Logger
}

// NewAssessmentHandler creates the handler.
func NewAssessmentHandler(svc *assessment.Service, log zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		svc: svc,
		log: log.With().Str("component", "assessment_handler").Logger(),
	}
}

// Get handles GET /v1/assessments/{coords}.
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	point, errs := parseCoords(chi.URLParam(r, coordsParam))
	if errs != nil {
		response.BadRequest(w, r, errs)
		return
	}

	result, err := h.svc.Assess(r.Context(), point)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAssessmentResponse(result))
}

// Analysis handles GET /v1/analysis/{coords}.
func (h *AssessmentHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	point, errs := parseCoords(chi.URLParam(r, coordsParam))
	if errs != nil {
		response.BadRequest(w, r, errs)
		return
	}

	result, err := h.svc.Analyze(r.Context(), point)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAnalysisResponse(result))
}

// Forecast handles GET /v1/forecast/{coords}?horizon_hours=n.
func (h *AssessmentHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	point, errs := parseCoords(chi.URLParam(r, coordsParam))
	if errs != nil {
		response.BadRequest(w, r, errs)
		return
	}

	horizon := assessment.DefaultForecastHorizonHours
	if raw := r.URL.Query().Get("horizon_hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, r, map[string]string{
				"horizon_hours": "must be a positive integer",
			})
			return
		}
		horizon = parsed
	}

	result, err := h.svc.Forecast(r.Context(), point, horizon)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewForecastResponse(result))
}

// Anomaly handles GET /v1/anomaly/{coords}.
func (h *AssessmentHandler) Anomaly(w http.ResponseWriter, r *http.Request) {
	point, errs := parseCoords(chi.URLParam(r, coordsParam))
	if errs != nil {
		response.BadRequest(w, r, errs)
		return
	}

	result, err := h.svc.DetectAnomaly(r.Context(), point)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.AnomalyResponse{
		Location:    models.Location{Lat: point.Lat, Lon: point.Lon},
		GeneratedAt: time.Now().UTC(),
		Anomaly:     models.NewAnomalyResult(result),
		Trained:     result.Reason != anomaly.ReasonUntrained,
	})
}

func (h *AssessmentHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, assessment.ErrInvalidCoordinates):
		response.BadRequest(w, r, map[string]string{"coords": "out of range"})
	case errors.Is(err, ingest.ErrNoSources), errors.Is(err, assessment.ErrIngestFailed):
		response.ServiceUnavailable(w, r, "no upstream data source responded")
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("assessment failed")
		response.InternalError(w, r)
	}
}
