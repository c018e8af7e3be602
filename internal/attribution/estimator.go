// Package attribution proposes candidate source regions for pollution
// detections from wind vector data.
package attribution

import (
	"context"
	"time"

	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

// Request describes a detection to attribute.
type Request struct {
	// Detection is the point where the pollutant was observed.
	Detection geo.Point

	Pollutant measurement.Pollutant

	// Intensity is the observed concentration in μg/m³.
	Intensity float64

	// Wind is the wind vector at the detection point. Components may
	// be nil when the weather source had no data.
	Wind measurement.WindVector

	// HoursBack is how far back to trace. Default: 48.
	HoursBack int
}

// SourceEstimate is a candidate pollution source region. Always
// structurally complete: estimators never fail.
type SourceEstimate struct {
	Source geo.Point

	// ConfidenceRadiusKM bounds the region the true source is expected
	// to lie within.
	ConfidenceRadiusKM float64

	// Probability that the true source lies within the radius.
	Probability float64

	// Model names the trajectory model that produced the estimate.
	Model string

	HoursTraced int
	EstimatedAt time.Time
}

// Estimator proposes a source region for a detection. Implementations
// must always return a structurally complete estimate; a best-effort
// stub and a true backward-trajectory (Lagrangian) model are both
// valid implementations, and callers must not care which is wired in.
type Estimator interface {
	Estimate(ctx context.Context, req Request) SourceEstimate
}

// DefaultHoursBack is used when a request does not specify a horizon.
const DefaultHoursBack = 48

// StationaryEstimator is the best-effort stand-in: it reports the
// detection point itself as the candidate source with a fixed
// confidence radius and probability. A real model would trace hourly
// wind fields backward with a Lagrangian particle scheme.
type StationaryEstimator struct {
	// RadiusKM is the reported confidence radius. Default: 10.
	RadiusKM float64

	// Probability is the reported probability. Default: 0.5.
	Probability float64
}

// Estimate implements Estimator. It never errors and ignores wind data
// beyond carrying the trace horizon through to the result.
func (e StationaryEstimator) Estimate(_ context.Context, req Request) SourceEstimate {
	radius := e.RadiusKM
	if radius == 0 {
		radius = 10.0
	}
	probability := e.Probability
	if probability == 0 {
		probability = 0.5
	}
	hours := req.HoursBack
	if hours <= 0 {
		hours = DefaultHoursBack
	}

	return SourceEstimate{
		Source:             req.Detection,
		ConfidenceRadiusKM: radius,
		Probability:        probability,
		Model:              "Lagrangian backward (simplified)",
		HoursTraced:        hours,
		EstimatedAt:        time.Now().UTC(),
	}
}
