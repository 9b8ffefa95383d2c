package middleware

import (
	"net/http"
	"time"
)

// Timeout wraps the handler chain in http.TimeoutHandler so every request
// inherits a bounded deadline; handlers must not hold the DB connection
// across unbounded waits (spec §5).
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"detail":"request timed out"}`)
	}
}
