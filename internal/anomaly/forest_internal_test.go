package anomaly

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosentry/ecosentry/internal/measurement"
)

func TestFitScaler(t *testing.T) {
	rows := [][]float64{
		{2, 10},
		{4, 10},
		{6, 10},
	}

	scaler := fitScaler(rows)

	scaled := scaler.transform([]float64{4, 10})
	assert.InDelta(t, 0.0, scaled[0], 1e-12)
	// Zero-variance columns scale with a unit stddev instead of
	// dividing by zero.
	assert.InDelta(t, 0.0, scaled[1], 1e-12)

	lo := scaler.transform([]float64{2, 10})
	hi := scaler.transform([]float64{6, 10})
	assert.InDelta(t, -lo[0], hi[0], 1e-12)
}

func TestAveragePathLength(t *testing.T) {
	assert.Equal(t, 0.0, averagePathLength(1))
	assert.Equal(t, 0.0, averagePathLength(0))
	// c(n) grows with n and stays below log2-ish bounds.
	assert.Greater(t, averagePathLength(256), averagePathLength(16))
	assert.InDelta(t, 10.244, averagePathLength(256), 0.05)
}

func TestForest_ScoresClusterVsOutlier(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	rows := make([][]float64, 200)
	for i := range rows {
		rows[i] = []float64{rng.NormFloat64(), rng.NormFloat64()}
	}

	forest := fitForest(rows, 100, 128, rng)

	clustered := forest.score([]float64{0, 0})
	outlier := forest.score([]float64{25, -25})

	require.Less(t, outlier, clustered)
	assert.LessOrEqual(t, clustered, 0.0)
	assert.GreaterOrEqual(t, outlier, -1.0)
	assert.Less(t, outlier, -0.5)
}

func TestBuildTree_IdenticalRowsStayExternal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rows := [][]float64{{1, 1}, {1, 1}, {1, 1}, {1, 1}}

	tree := buildTree(rows, 0, 8, rng)
	require.NotNil(t, tree)
	assert.True(t, tree.external())
	assert.Equal(t, 4, tree.size)
}

func TestSchemaFor_ColumnsRequirePresenceInAllSamples(t *testing.T) {
	base := time.Date(2026, 1, 10, 6, 0, 0, 0, time.UTC)
	samples := []Sample{
		{
			Values: map[measurement.Pollutant]float64{
				measurement.PollutantPM25: 10,
				measurement.PollutantNO2:  20,
			},
			Timestamp: base,
		},
		{
			Values: map[measurement.Pollutant]float64{
				measurement.PollutantPM25: 12,
			},
			Timestamp: base.Add(time.Hour),
		},
	}

	schema := schemaFor(samples)

	// NO2 is missing from one sample, so only PM2.5 plus the two
	// temporal columns survive.
	assert.Equal(t, []measurement.Pollutant{measurement.PollutantPM25}, schema.pollutants)
	assert.True(t, schema.temporal)
	assert.Equal(t, 3, schema.width())
}

func TestSchemaFor_TemporalRequiresAllTimestamps(t *testing.T) {
	samples := []Sample{
		{Values: map[measurement.Pollutant]float64{measurement.PollutantPM25: 10}, Timestamp: time.Now()},
		{Values: map[measurement.Pollutant]float64{measurement.PollutantPM25: 12}},
	}

	schema := schemaFor(samples)
	assert.False(t, schema.temporal)
	assert.Equal(t, 1, schema.width())
}

func TestVector_MissingColumnContributesZero(t *testing.T) {
	schema := featureSchema{
		pollutants: []measurement.Pollutant{measurement.PollutantPM25, measurement.PollutantNO2},
	}

	row, usable := schema.vector(Sample{
		Values: map[measurement.Pollutant]float64{measurement.PollutantPM25: 33},
	})

	assert.Equal(t, []float64{33, 0}, row)
	assert.Equal(t, 1, usable)
}
