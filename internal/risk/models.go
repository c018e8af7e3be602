// Package risk computes composite habitability risk scores from fused
// environmental metrics.
package risk

// Verdict is the categorical habitability classification.
type Verdict string

const (
	VerdictSafe     Verdict = "SAFE"
	VerdictModerate Verdict = "MODERATE"
	VerdictUnsafe   Verdict = "UNSAFE"
)

// Verdict thresholds. Boundaries are inclusive at the lower bound:
// score ≥ 67 is UNSAFE, 34 ≤ score < 67 is MODERATE, below is SAFE.
const (
	unsafeThreshold   = 67.0
	moderateThreshold = 34.0
)

// VerdictFor classifies a risk score. Deterministic, no hysteresis.
func VerdictFor(score float64) Verdict {
	switch {
	case score >= unsafeThreshold:
		return VerdictUnsafe
	case score >= moderateThreshold:
		return VerdictModerate
	default:
		return VerdictSafe
	}
}

// Result is the outcome of one scoring pass. A value object: recomputed
// per request, no persisted identity.
type Result struct {
	// ExposureScore reflects current threshold exceedance, 0-100.
	ExposureScore float64

	// DurationScore reflects persistence of high exposure, 0-100.
	DurationScore float64

	// UncertaintyPenalty reflects stale or sparse source data, 0-100.
	UncertaintyPenalty float64

	// RiskScore is the composite score, clamped to [0,100].
	RiskScore float64

	Verdict Verdict

	// Confidence in the verdict, clamped to [0,100].
	Confidence float64

	ModelVersion string
}
