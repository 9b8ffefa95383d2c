package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/apierrors"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/httputil"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/logging"
)

// Recovery recovers from panics in handlers, logs the stack trace, and
// returns a generic error with an opaque trace id (spec §4.6, §7
// "Programmer error" — raw panic text MUST NOT reach the client).
type Recovery struct {
	logger *logging.Logger
}

// NewRecovery builds a Recovery middleware.
func NewRecovery(logger *logging.Logger) *Recovery {
	return &Recovery{logger: logger}
}

// Handler returns the recovery middleware handler.
func (m *Recovery) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := debug.Stack()
				m.logger.WithContext(r.Context()).WithFields(map[string]interface{}{
					"panic":       fmt.Sprintf("%v", rec),
					"stack":       string(stack),
					"path":        r.URL.Path,
					"method":      r.Method,
					"remote_addr": r.RemoteAddr,
				}).Error("panic recovered")

				httputil.WriteError(w, r, apierrors.Internal(fmt.Errorf("%v", rec)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
