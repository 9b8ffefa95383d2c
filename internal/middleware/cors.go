// Package middleware provides HTTP middleware for the API surface.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORS handles Cross-Origin Resource Sharing for the desktop client.
type CORS struct {
	allowedOrigins []string
	allowAll       bool
}

// NewCORS builds a CORS middleware from a configured origin allow-list. An
// empty list or a literal "*" entry allows every origin.
func NewCORS(allowedOrigins []string) *CORS {
	allowAll := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
			break
		}
	}
	return &CORS{allowedOrigins: allowedOrigins, allowAll: allowAll}
}

// Handler returns the CORS middleware handler.
func (c *CORS) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := origin != "" && (c.allowAll || c.isAllowed(origin))
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers",
				"Content-Type, Authorization, X-Client-Id, X-Timestamp, X-Nonce, X-Signature, X-Trace-ID")
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(3600))
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (c *CORS) isAllowed(origin string) bool {
	for _, o := range c.allowedOrigins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
