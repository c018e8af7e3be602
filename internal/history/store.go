// Package history keeps recent fused metrics bundles per location so
// the risk scorer can assess persistence and the anomaly detector can
// train. Process-lifetime state only; there is no persistence layer.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/ecosentry/ecosentry/internal/measurement"
	"github.com/ecosentry/ecosentry/pkg/geo"
)

// DefaultCapacity is the number of bundles retained per grid cell,
// matching the scorer's 30-entry trend window.
const DefaultCapacity = 30

// cellPrecision controls how coordinates are bucketed into grid cells.
// Two decimal places is roughly a 1km cell at the equator.
const cellPrecision = 2

// StoreConfig holds configuration for the history store.
type StoreConfig struct {
	// Capacity is the per-cell ring size. Default: DefaultCapacity.
	Capacity int

	// Clock for entry timestamps. Default: real clock.
	Clock clockwork.Clock
}

// Store is an in-memory per-cell ring of metrics bundles, oldest first.
type Store struct {
	capacity int
	clock    clockwork.Clock

	mu    sync.RWMutex
	cells map[string][]*measurement.MetricsBundle
}

// NewStore creates a history store.
func NewStore(cfg StoreConfig) *Store {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Store{
		capacity: capacity,
		clock:    clock,
		cells:    make(map[string][]*measurement.MetricsBundle),
	}
}

// Record appends a bundle to the cell containing the point, evicting
// the oldest entry once the cell is at capacity. Bundles without an
// observation time are stamped with the store clock.
func (s *Store) Record(_ context.Context, p geo.Point, bundle *measurement.MetricsBundle) {
	if bundle.ObservedAt.IsZero() {
		stamped := *bundle
		stamped.ObservedAt = s.clock.Now().UTC()
		bundle = &stamped
	}

	key := cellKey(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.cells[key], bundle)
	if len(entries) > s.capacity {
		entries = entries[len(entries)-s.capacity:]
	}
	s.cells[key] = entries
}

// Trend returns the recorded bundles for the cell containing the
// point, oldest first. The returned slice is a copy; callers may not
// mutate the bundles themselves.
func (s *Store) Trend(_ context.Context, p geo.Point) []*measurement.MetricsBundle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.cells[cellKey(p)]
	out := make([]*measurement.MetricsBundle, len(entries))
	copy(out, entries)
	return out
}

// All returns every recorded bundle across all cells, for detector
// training. Order within a cell is oldest first.
func (s *Store) All(_ context.Context) []*measurement.MetricsBundle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*measurement.MetricsBundle
	for _, entries := range s.cells {
		out = append(out, entries...)
	}
	return out
}

// Len reports the total number of recorded bundles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, entries := range s.cells {
		n += len(entries)
	}
	return n
}

// cellKey buckets a point into a grid cell key.
func cellKey(p geo.Point) string {
	return fmt.Sprintf("%.*f:%.*f", cellPrecision, p.Lat, cellPrecision, p.Lon)
}
