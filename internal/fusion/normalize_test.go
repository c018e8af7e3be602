package fusion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosentry/ecosentry/internal/fusion"
	"github.com/ecosentry/ecosentry/internal/measurement"
)

func TestColumnDensityToSurface_NO2(t *testing.T) {
	// 1e-5 mol/m² × 1e6 × 46.01 g/mol / 6.022e23 × 1e12.
	got, ok := fusion.ColumnDensityToSurface(measurement.PollutantNO2, 1e-5)
	require.True(t, ok)
	assert.InDelta(t, 1e-5*1e6*46.01/6.022e23*1e12, got, 1e-18)
	assert.Greater(t, got, 0.0)
}

func TestColumnDensityToSurface_SO2HeavierThanNO2(t *testing.T) {
	no2, ok := fusion.ColumnDensityToSurface(measurement.PollutantNO2, 1e-5)
	require.True(t, ok)
	so2, ok := fusion.ColumnDensityToSurface(measurement.PollutantSO2, 1e-5)
	require.True(t, ok)

	// Same column density, heavier molecule, more mass.
	assert.Greater(t, so2, no2)
}

func TestColumnDensityToSurface_Zero(t *testing.T) {
	got, ok := fusion.ColumnDensityToSurface(measurement.PollutantNO2, 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, got)
}

func TestColumnDensityToSurface_Negative(t *testing.T) {
	_, ok := fusion.ColumnDensityToSurface(measurement.PollutantNO2, -1e-5)
	assert.False(t, ok)
}

func TestColumnDensityToSurface_UnknownMolarMass(t *testing.T) {
	// PM2.5 is not a molecule; there is no molar mass to convert with.
	_, ok := fusion.ColumnDensityToSurface(measurement.PollutantPM25, 1e-5)
	assert.False(t, ok)
}
