package models

import "time"

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// SourceStatus is one upstream data source's health.
type SourceStatus struct {
	Source        string     `json:"source"`
	State         string     `json:"state"`
	Healthy       bool       `json:"healthy"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

// ReadinessResponse is the readiness payload, one entry per source.
type ReadinessResponse struct {
	Status    string         `json:"status"`
	Sources   []SourceStatus `json:"sources"`
	Timestamp time.Time      `json:"timestamp"`
}
