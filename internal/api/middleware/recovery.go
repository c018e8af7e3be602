package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/ecosentry/ecosentry/internal/api/models"
)

// Recovery converts panics into RFC 7807 internal-error responses so a
// misbehaving handler cannot take the whole listener down.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						Interface("panic", rec).
						Str("request_id", GetRequestID(r.Context())).
						Str("path", r.URL.Path).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")

					problem := models.NewInternalError(r.URL.Path)
					problem.Write(w)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
