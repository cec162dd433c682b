package api

import (
	"net/http"
	"time"
)

// TimeoutMiddleware bounds how long a handler may take. The request context carries the
// deadline, and a handler still running when it passes is answered with 503. A timeout of
// zero disables it.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.TimeoutHandler(next, timeout,
			`{"error": "Request timeout", "message": "The request took too long to process"}`)
	}
}
