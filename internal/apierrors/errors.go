// Package apierrors provides the unified error taxonomy described in spec §7.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error kind without exposing implementation detail.
type Code string

const (
	CodeMissingHeaders   Code = "AUTH_MISSING_HEADERS"
	CodeUnknownClient    Code = "AUTH_UNKNOWN_CLIENT"
	CodeStaleRequest     Code = "AUTH_STALE_REQUEST"
	CodeReplay           Code = "AUTH_REPLAY"
	CodeBadSignature     Code = "AUTH_BAD_SIGNATURE"
	CodeInvalidToken     Code = "AUTH_INVALID_TOKEN"
	CodeTokenExpired     Code = "AUTH_TOKEN_EXPIRED"
	CodeClientMismatch   Code = "AUTH_CLIENT_MISMATCH"
	CodeForbidden        Code = "FORBIDDEN"
	CodeInvalidInput     Code = "VALIDATION_INVALID_INPUT"
	CodeMissingParameter Code = "VALIDATION_MISSING_PARAMETER"
	CodeOutOfRange       Code = "VALIDATION_OUT_OF_RANGE"
	CodeNotFound         Code = "NOT_FOUND"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeUpstreamFailure  Code = "UPSTREAM_UNAVAILABLE"
	CodeStorageFailure   Code = "STORAGE_UNAVAILABLE"
	CodeInternal         Code = "INTERNAL"
	CodeBodyTooLarge     Code = "BODY_TOO_LARGE"
)

// ServiceError is a structured error carrying an HTTP status and a client-safe message.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	RetryAfter string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// WithDetails attaches a client-safe detail key/value pair.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newErr(code Code, message string, status int) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status}
}

func wrapErr(code Code, message string, status int, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// Authentication / authorization failures (spec §4.3.3 steps 1-5, §7).

func MissingHeaders() *ServiceError {
	return newErr(CodeMissingHeaders, "missing signature headers", http.StatusUnauthorized)
}

func UnknownClient() *ServiceError {
	return newErr(CodeUnknownClient, "unknown client", http.StatusForbidden)
}

func StaleRequest() *ServiceError {
	return newErr(CodeStaleRequest, "stale request", http.StatusUnauthorized)
}

func Replay() *ServiceError {
	return newErr(CodeReplay, "nonce already used", http.StatusForbidden)
}

func BadSignature() *ServiceError {
	return newErr(CodeBadSignature, "bad signature", http.StatusUnauthorized)
}

func InvalidToken(err error) *ServiceError {
	return wrapErr(CodeInvalidToken, "invalid or expired session token", http.StatusUnauthorized, err)
}

func ClientMismatch() *ServiceError {
	return newErr(CodeClientMismatch, "bearer client does not match request client", http.StatusForbidden)
}

func Forbidden(message string) *ServiceError {
	return newErr(CodeForbidden, message, http.StatusForbidden)
}

// Validation failures.

func InvalidInput(field, reason string) *ServiceError {
	return newErr(CodeInvalidInput, "invalid input", http.StatusBadRequest).
		WithDetails("field", field).WithDetails("reason", reason)
}

func MissingParameter(param string) *ServiceError {
	return newErr(CodeMissingParameter, "missing required parameter", http.StatusBadRequest).
		WithDetails("parameter", param)
}

func OutOfRange(field string) *ServiceError {
	return newErr(CodeOutOfRange, "value out of range", http.StatusBadRequest).
		WithDetails("field", field)
}

func NotFound(resource string) *ServiceError {
	return newErr(CodeNotFound, "resource not found", http.StatusNotFound).
		WithDetails("resource", resource)
}

// Rate limiting.

func RateLimitExceeded(retryAfterSeconds int) *ServiceError {
	e := newErr(CodeRateLimited, "rate limit exceeded", http.StatusTooManyRequests)
	e.RetryAfter = fmt.Sprintf("%d", retryAfterSeconds)
	return e
}

// Upstream / storage / internal failures.

func UpstreamUnavailable(err error) *ServiceError {
	return wrapErr(CodeUpstreamFailure, "upstream data temporarily unavailable", http.StatusServiceUnavailable, err)
}

func StorageUnavailable(err error) *ServiceError {
	return wrapErr(CodeStorageFailure, "storage temporarily unavailable", http.StatusServiceUnavailable, err)
}

func Internal(err error) *ServiceError {
	return wrapErr(CodeInternal, "internal error", http.StatusInternalServerError, err)
}

func BodyTooLarge(limitBytes int64) *ServiceError {
	return newErr(CodeBodyTooLarge, "request body too large", http.StatusRequestEntityTooLarge).
		WithDetails("limit_bytes", limitBytes)
}

// As extracts a *ServiceError from err, falling back to a generic internal error.
func As(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return Internal(err)
}
