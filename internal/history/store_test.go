package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosentry/ecosentry/internal/history"
	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

func bundleAt(observedAt time.Time, pm25 float64) *measurement.MetricsBundle {
	return &measurement.MetricsBundle{
		Air: map[measurement.Pollutant]measurement.FusedMetric{
			measurement.PollutantPM25: {Value: pm25},
		},
		ObservedAt: observedAt,
	}
}

func TestStore_RecordAndTrend(t *testing.T) {
	store := history.NewStore(history.StoreConfig{})
	ctx := context.Background()
	p := geo.Point{Lat: 52.37, Lon: 4.90}

	now := time.Now().UTC()
	store.Record(ctx, p, bundleAt(now.Add(-2*time.Hour), 10))
	store.Record(ctx, p, bundleAt(now.Add(-time.Hour), 20))

	trend := store.Trend(ctx, p)
	require.Len(t, trend, 2)
	assert.Equal(t, 10.0, trend[0].Air[measurement.PollutantPM25].Value)
	assert.Equal(t, 20.0, trend[1].Air[measurement.PollutantPM25].Value)
}

func TestStore_CapacityEvictsOldest(t *testing.T) {
	store := history.NewStore(history.StoreConfig{Capacity: 3})
	ctx := context.Background()
	p := geo.Point{Lat: 1, Lon: 1}

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		store.Record(ctx, p, bundleAt(now, float64(i)))
	}

	trend := store.Trend(ctx, p)
	require.Len(t, trend, 3)
	assert.Equal(t, 2.0, trend[0].Air[measurement.PollutantPM25].Value)
	assert.Equal(t, 4.0, trend[2].Air[measurement.PollutantPM25].Value)
}

func TestStore_NearbyPointsShareCell(t *testing.T) {
	store := history.NewStore(history.StoreConfig{})
	ctx := context.Background()

	store.Record(ctx, geo.Point{Lat: 52.3701, Lon: 4.9001}, bundleAt(time.Now(), 10))

	// Same cell at two-decimal precision.
	trend := store.Trend(ctx, geo.Point{Lat: 52.3749, Lon: 4.9049})
	assert.Len(t, trend, 1)

	// A different cell sees nothing.
	assert.Empty(t, store.Trend(ctx, geo.Point{Lat: 52.39, Lon: 4.90}))
}

func TestStore_StampsMissingObservationTime(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	store := history.NewStore(history.StoreConfig{Clock: clock})
	ctx := context.Background()
	p := geo.Point{Lat: 10, Lon: 10}

	store.Record(ctx, p, &measurement.MetricsBundle{
		Air: map[measurement.Pollutant]measurement.FusedMetric{},
	})

	trend := store.Trend(ctx, p)
	require.Len(t, trend, 1)
	assert.Equal(t, clock.Now().UTC(), trend[0].ObservedAt)
}

func TestStore_AllSpansCells(t *testing.T) {
	store := history.NewStore(history.StoreConfig{})
	ctx := context.Background()

	store.Record(ctx, geo.Point{Lat: 1, Lon: 1}, bundleAt(time.Now(), 1))
	store.Record(ctx, geo.Point{Lat: 2, Lon: 2}, bundleAt(time.Now(), 2))
	store.Record(ctx, geo.Point{Lat: 2, Lon: 2}, bundleAt(time.Now(), 3))

	assert.Len(t, store.All(ctx), 3)
	assert.Equal(t, 3, store.Len())
}

func TestStore_TrendReturnsCopy(t *testing.T) {
	store := history.NewStore(history.StoreConfig{})
	ctx := context.Background()
	p := geo.Point{Lat: 5, Lon: 5}

	store.Record(ctx, p, bundleAt(time.Now(), 1))

	trend := store.Trend(ctx, p)
	trend[0] = nil

	again := store.Trend(ctx, p)
	require.Len(t, again, 1)
	assert.NotNil(t, again[0])
}
