package scheduler

import (
	"context"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/logging"
)

// cronLogger adapts internal/logging.Logger to cron.Logger so the
// underlying robfig/cron scheduler's own diagnostics (recover-from-panic,
// entry-added, etc.) flow through the same structured logger as everything
// else.
type cronLogger struct {
	logger *logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.logger.WithContext(context.Background()).WithFields(fieldsFrom(keysAndValues)).Info(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.logger.WithContext(context.Background()).WithFields(fieldsFrom(keysAndValues)).WithError(err).Error(msg)
}

func fieldsFrom(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}
