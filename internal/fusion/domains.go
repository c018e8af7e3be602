package fusion

import "github.com/ecosentry/ecosentry/internal/measurement"

// WaterStrategy computes water-domain metrics from raw readings.
// Implementations are swappable so a real multispectral pipeline
// (Sentinel-2 derived turbidity) can replace the placeholder without
// touching the air fusion logic.
type WaterStrategy interface {
	Fuse(readings []measurement.Reading) measurement.WaterMetrics
}

// LandStrategy computes land-domain metrics from raw readings.
// Swappable for the same reason as WaterStrategy.
type LandStrategy interface {
	Fuse(readings []measurement.Reading) measurement.LandMetrics
}

// PlaceholderWaterStrategy returns a fixed neutral water quality result
// until a multispectral source is wired in.
type PlaceholderWaterStrategy struct{}

// Fuse implements WaterStrategy.
func (PlaceholderWaterStrategy) Fuse(_ []measurement.Reading) measurement.WaterMetrics {
	return measurement.WaterMetrics{
		QualityScore: 75.0,
		Turbidity:    nil,
		Status:       "Data not available",
		Source:       "Placeholder",
	}
}

// PlaceholderLandStrategy returns a fixed neutral deforestation result
// until a Landsat/Sentinel-2 source is wired in.
type PlaceholderLandStrategy struct{}

// Fuse implements LandStrategy.
func (PlaceholderLandStrategy) Fuse(_ []measurement.Reading) measurement.LandMetrics {
	return measurement.LandMetrics{
		DeforestationRisk: 25.0,
		Trend:             "stable",
		Source:            "Placeholder",
	}
}
