// Package httputil provides common HTTP response and request helpers.
package httputil

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/apierrors"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/logging"
)

var defaultLogger = logging.NewFromEnv("httputil")

// ErrorResponse is the wire shape for every error response (spec §6: {detail: string}).
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		defaultLogger.WithError(err).Warn("write json response failed")
	}
}

// WriteError writes the standard {detail} envelope for a *apierrors.ServiceError.
// The detail string is always client-safe; the underlying Err is never serialized.
func WriteError(w http.ResponseWriter, r *http.Request, svcErr *apierrors.ServiceError) {
	if svcErr == nil {
		svcErr = apierrors.Internal(nil)
	}
	if svcErr.HTTPStatus >= http.StatusInternalServerError {
		defaultLogger.WithContext(r.Context()).WithError(svcErr.Err).
			WithField("code", svcErr.Code).Error("request failed")
	}
	if svcErr.RetryAfter != "" {
		w.Header().Set("Retry-After", svcErr.RetryAfter)
	}
	WriteJSON(w, svcErr.HTTPStatus, ErrorResponse{Detail: svcErr.Message})
}

// QueryInt extracts an integer query parameter, returning defaultVal when absent or invalid.
func QueryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// DecodeJSON decodes the request body into v, returning a client-safe error on failure.
func DecodeJSON(r *http.Request, v interface{}) *apierrors.ServiceError {
	if r.Body == nil || r.Body == http.NoBody {
		return apierrors.InvalidInput("body", "request body required")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if asMaxBytesError(err, &maxErr) {
			return apierrors.BodyTooLarge(maxErr.Limit)
		}
		return apierrors.InvalidInput("body", "malformed request body")
	}
	return nil
}

func asMaxBytesError(err error, target **http.MaxBytesError) bool {
	me, ok := err.(*http.MaxBytesError)
	if ok {
		*target = me
	}
	return ok
}
