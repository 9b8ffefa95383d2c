package middleware

import (
	"net/http"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/apierrors"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/httputil"
)

// DefaultMaxBodyBytes is the ceiling for protected-endpoint request bodies
// (spec §4.4), applied before the canonical message is hashed.
const DefaultMaxBodyBytes int64 = 1 << 20 // 1 MiB

// BodyLimit caps request bodies via http.MaxBytesReader so downstream
// decoders and the signature hasher cannot read beyond the configured limit.
type BodyLimit struct {
	maxBytes int64
}

// NewBodyLimit builds a body-limiting middleware. maxBytes <= 0 falls back
// to DefaultMaxBodyBytes.
func NewBodyLimit(maxBytes int64) *BodyLimit {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return &BodyLimit{maxBytes: maxBytes}
}

// Handler returns the body-limiting middleware handler.
func (m *BodyLimit) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > m.maxBytes {
			httputil.WriteError(w, r, apierrors.BodyTooLarge(m.maxBytes))
			return
		}
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, m.maxBytes)
		}
		next.ServeHTTP(w, r)
	})
}
