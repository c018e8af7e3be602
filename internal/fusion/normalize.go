package fusion

import "github.com/ecosentry/ecosentry/internal/measurement"

// avogadro is the Avogadro constant in mol⁻¹.
const avogadro = 6.022e23

// ColumnDensityToSurface converts a satellite column density (mol/m²)
// to an approximate surface concentration (μg/m³).
//
// The conversion is a fixed scalar per pollutant:
//
//	value × 1e6 × molarMass / avogadro × 1e12
//
// It is a lossy, order-of-magnitude approximation: it does not model
// atmospheric column height or boundary-layer mixing, so the result
// must not be treated as a ground-truth surface concentration. It
// exists so satellite retrievals can participate in fusion at all.
//
// Negative values and pollutants without a tabulated molar mass yield
// ok=false, meaning "no contribution" rather than a fabricated value.
func ColumnDensityToSurface(p measurement.Pollutant, molPerM2 float64) (float64, bool) {
	if molPerM2 < 0 {
		return 0, false
	}
	mass, ok := measurement.MolarMass(p)
	if !ok {
		return 0, false
	}
	return molPerM2 * 1e6 * mass / avogadro * 1e12, true
}
