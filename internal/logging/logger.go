// Package logging provides structured logging with trace-id and client-id context.
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContextKey is the type for context keys used by this package.
type ContextKey string

const (
	// TraceIDKey is the context key for the request trace id.
	TraceIDKey ContextKey = "trace_id"
	// ClientIDKey is the context key for the authenticated client id.
	ClientIDKey ContextKey = "client_id"
)

// Logger wraps logrus.Logger with service-scoped fields.
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a Logger for the named service with the given level/format.
func New(service, level, format string) *Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	logger.SetOutput(os.Stdout)

	return &Logger{Logger: logger, service: service}
}

// NewFromEnv builds a logger using LOG_LEVEL/LOG_FORMAT, defaulting to info/json.
func NewFromEnv(service string) *Logger {
	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format := strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "json"
	}
	return New(service, level, format)
}

// WithContext returns an entry enriched with trace id and client id, when present.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("service", l.service)
	if traceID := GetTraceID(ctx); traceID != "" {
		entry = entry.WithField("trace_id", traceID)
	}
	if clientID := GetClientID(ctx); clientID != "" {
		entry = entry.WithField("client_id", clientID)
	}
	return entry
}

// WithFields returns an entry with the service field plus the given fields.
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["service"] = l.service
	return l.Logger.WithFields(fields)
}

// LogRequest logs a completed HTTP request at info level (warn for 4xx, error for 5xx).
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, d time.Duration) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": d.Milliseconds(),
	})
	switch {
	case status >= 500:
		entry.Error("request completed")
	case status >= 400:
		entry.Warn("request completed")
	default:
		entry.Info("request completed")
	}
}

// LogSecurityEvent logs an auth/rate-limit relevant rejection at warn level.
func (l *Logger) LogSecurityEvent(ctx context.Context, eventType string, details map[string]interface{}) {
	fields := logrus.Fields{"event_type": eventType, "severity": "security"}
	for k, v := range details {
		fields[k] = v
	}
	l.WithContext(ctx).WithFields(fields).Warn("security event")
}

// LogJobResult logs the outcome of a scheduler job invocation.
func (l *Logger) LogJobResult(job string, d time.Duration, processed, failed int, err error) {
	entry := l.WithFields(map[string]interface{}{
		"job":          job,
		"duration_ms":  d.Milliseconds(),
		"processed":    processed,
		"failed_items": failed,
	})
	if err != nil {
		entry.WithError(err).Error("scheduler job failed")
		return
	}
	entry.Info("scheduler job completed")
}

// NewTraceID generates a new correlation id.
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID attaches a trace id to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID extracts the trace id from the context.
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		return v
	}
	return ""
}

// WithClientID attaches the authenticated client id to the context.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ClientIDKey, clientID)
}

// GetClientID extracts the authenticated client id from the context.
func GetClientID(ctx context.Context) string {
	if v, ok := ctx.Value(ClientIDKey).(string); ok {
		return v
	}
	return ""
}
