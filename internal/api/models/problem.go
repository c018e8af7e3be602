package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 problem document.
type Problem struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	TraceID  string            `json:"trace_id,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// Problem type URIs.
const (
	ProblemTypeValidation         = "https://api.ecosentry.io/problems/validation-error"
	ProblemTypeNotFound           = "https://api.ecosentry.io/problems/not-found"
	ProblemTypeRateLimitExceeded  = "https://api.ecosentry.io/problems/rate-limit-exceeded"
	ProblemTypeInternalError      = "https://api.ecosentry.io/problems/internal-error"
	ProblemTypeServiceUnavailable = "https://api.ecosentry.io/problems/service-unavailable"
)

// NewValidationError builds a 400 problem with field-level details.
func NewValidationError(instance string, errors map[string]string) *Problem {
	return &Problem{
		Type:     ProblemTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   "The request contains invalid parameters",
		Instance: instance,
		Errors:   errors,
	}
}

// NewNotFound builds a 404 problem.
func NewNotFound(instance, detail string) *Problem {
	return &Problem{
		Type:     ProblemTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: instance,
	}
}

// NewRateLimitExceeded builds a 429 problem.
func NewRateLimitExceeded(instance string) *Problem {
	return &Problem{
		Type:     ProblemTypeRateLimitExceeded,
		Title:    "Rate Limit Exceeded",
		Status:   http.StatusTooManyRequests,
		Detail:   "Too many requests, slow down",
		Instance: instance,
	}
}

// NewInternalError builds a 500 problem without leaking internals.
func NewInternalError(instance string) *Problem {
	return &Problem{
		Type:     ProblemTypeInternalError,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   "An unexpected error occurred",
		Instance: instance,
	}
}

// NewServiceUnavailable builds a 503 problem, used when every upstream
// data source is down.
func NewServiceUnavailable(instance, detail string) *Problem {
	return &Problem{
		Type:     ProblemTypeServiceUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: instance,
	}
}

// Write serializes the problem with the RFC 7807 media type.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
