package upstream

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker/v2"
)

// SourceHealth is the reported health of one upstream source.
type SourceHealth struct {
	Source string

	// State is the circuit breaker state, or closed for sources
	// without a registered client.
	State gobreaker.State

	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// Healthy reports whether the source's breaker is closed.
func (h SourceHealth) Healthy() bool {
	return h.State == gobreaker.StateClosed
}

// HealthRegistry tracks upstream sources and their recent outcomes.
// The ingestion coordinator records each fetch result here, and the
// ops readiness endpoint reads it back.
type HealthRegistry struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	sources map[string]*trackedSource
}

type trackedSource struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewHealthRegistry creates a health registry. A nil clock means the
// real clock.
func NewHealthRegistry(clock clockwork.Clock) *HealthRegistry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HealthRegistry{
		clock:   clock,
		sources: make(map[string]*trackedSource),
	}
}

// Register associates a client with a source name. The client may be
// nil for sources that do not go through the resilient client.
func (r *HealthRegistry) Register(source string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source] = &trackedSource{client: client}
}

// RecordSuccess notes a successful fetch for a source.
func (r *HealthRegistry) RecordSuccess(source string) {
	now := r.clock.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.tracked(source)
	t.lastSuccessAt = &now
	t.lastError = ""
}

// RecordFailure notes a failed fetch for a source.
func (r *HealthRegistry) RecordFailure(source string, err error) {
	now := r.clock.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.tracked(source)
	t.lastFailureAt = &now
	if err != nil {
		t.lastError = err.Error()
	}
}

// Health returns the health of every tracked source.
func (r *HealthRegistry) Health() []SourceHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SourceHealth, 0, len(r.sources))
	for name, t := range r.sources {
		h := SourceHealth{
			Source:        name,
			State:         gobreaker.StateClosed,
			LastSuccessAt: t.lastSuccessAt,
			LastFailureAt: t.lastFailureAt,
			LastError:     t.lastError,
		}
		if t.client != nil {
			h.State = t.client.BreakerState()
		}
		out = append(out, h)
	}
	return out
}

// tracked returns the entry for a source, creating it if needed.
// Callers must hold the write lock.
func (r *HealthRegistry) tracked(source string) *trackedSource {
	t, ok := r.sources[source]
	if !ok {
		t = &trackedSource{}
		r.sources[source] = t
	}
	return t
}
