// Package response centralizes JSON and problem-document writing so
// handlers stay declarative.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/ecosentry/ecosentry/internal/api/middleware"
	"github.com/ecosentry/ecosentry/internal/api/models"
)

// JSON writes data with the given status, echoing the request ID.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if id := middleware.GetRequestID(r.Context()); id != "" {
		w.Header().Set("X-Request-Id", id)
	}
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Problem writes an RFC 7807 problem document.
func Problem(w http.ResponseWriter, r *http.Request, p *models.Problem) {
	p.Instance = r.URL.Path
	if id := middleware.GetRequestID(r.Context()); id != "" {
		w.Header().Set("X-Request-Id", id)
	}
	p.Write(w)
}

// BadRequest writes a 400 validation problem.
func BadRequest(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	Problem(w, r, models.NewValidationError(r.URL.Path, errors))
}

// NotFound writes a 404 problem.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Problem(w, r, models.NewNotFound(r.URL.Path, detail))
}

// InternalError writes a 500 problem.
func InternalError(w http.ResponseWriter, r *http.Request) {
	Problem(w, r, models.NewInternalError(r.URL.Path))
}

// ServiceUnavailable writes a 503 problem.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	Problem(w, r, models.NewServiceUnavailable(r.URL.Path, detail))
}
