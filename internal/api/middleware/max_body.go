package middleware

import (
	"net/http"

	"github.com/formbricks/embedder/internal/api/response"
)

// MaxBody limits request bodies to maxBytes. Requests that declare a larger Content-Length are
// rejected with 413 up front; bodies that grow past the limit while being read fail with
// *http.MaxBytesError, which handlers map to 413.
// Use 0 or negative to disable (no limit); typically use config.MaxRequestBodyBytes.
func MaxBody(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				response.RespondRequestEntityTooLarge(w)

				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
