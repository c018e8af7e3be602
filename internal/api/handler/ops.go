package handler

import (
	"net/http"
	"time"

	"github.com/ecosentry/ecosentry/internal/api/models"
	"github.com/ecosentry/ecosentry/internal/api/response"
	"github.com/ecosentry/ecosentry/internal/upstream"
)

// OpsHandler serves health and readiness probes.
type OpsHandler struct {
	health  *upstream.HealthRegistry
	version string
}

// NewOpsHandler creates the handler. version is the build version
// injected at link time.
func NewOpsHandler(health *upstream.HealthRegistry, version string) *OpsHandler {
	if version == "" {
		version = "dev"
	}
	return &OpsHandler{health: health, version: version}
}

// Health handles GET /v1/ops/health. Always 200 while the process is
// serving.
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Service:   "ecosentry",
		Version:   h.version,
		Timestamp: time.Now().UTC(),
	})
}

// Ready handles GET /v1/ops/ready. Degrades to 503 when every
// registered upstream source is unhealthy.
func (h *OpsHandler) Ready(w http.ResponseWriter, r *http.Request) {
	statuses := h.health.Health()

	sources := make([]models.SourceStatus, 0, len(statuses))
	anyHealthy := len(statuses) == 0
	for _, s := range statuses {
		sources = append(sources, models.SourceStatus{
			Source:        s.Source,
			State:         s.State.String(),
			Healthy:       s.Healthy(),
			LastSuccessAt: s.LastSuccessAt,
			LastFailureAt: s.LastFailureAt,
			LastError:     s.LastError,
		})
		if s.Healthy() {
			anyHealthy = true
		}
	}

	status := "ready"
	code := http.StatusOK
	if !anyHealthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	response.JSON(w, r, code, models.ReadinessResponse{
		Status:    status,
		Sources:   sources,
		Timestamp: time.Now().UTC(),
	})
}
