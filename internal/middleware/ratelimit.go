package middleware

import (
	"math"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/apierrors"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/auth"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/httputil"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/logging"
)

// RateLimiter is a per-key token bucket limiter (spec §4.3.6). The key is
// derived via the Auth Core's RateLimitKey so that a token considered valid
// by the bearer-auth check is also considered valid by the limiter.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	limit    int
	window   time.Duration
	core     *auth.Core
	logger   *logging.Logger
}

// NewRateLimiter builds a limiter allowing limit requests per window, with
// burst capacity equal to limit.
func NewRateLimiter(limit int, window time.Duration, core *auth.Core, logger *logging.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	requestsPerSecond := float64(limit) / window.Seconds()
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    limit,
		limit:    limit,
		window:   window,
		core:     core,
		logger:   logger,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Handler returns the rate-limiting middleware.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.core.RateLimitKey(r, httputil.ClientIP(r))
		limiter := rl.getLimiter(key)

		if !limiter.Allow() {
			if rl.logger != nil {
				rl.logger.LogSecurityEvent(r.Context(), "rate_limit_exceeded", map[string]interface{}{
					"key": key, "path": r.URL.Path, "method": r.Method,
				})
			}
			retryAfter := int(math.Ceil(rl.window.Seconds()))
			svcErr := apierrors.RateLimitExceeded(retryAfter)
			httputil.WriteError(w, r, svcErr)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Cleanup drops all tracked limiters once the map grows unreasonably large,
// preventing unbounded growth from churn through distinct peer addresses.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.limiters) > 10000 {
		rl.limiters = make(map[string]*rate.Limiter)
	}
}

// StartCleanup runs Cleanup on interval until the returned stop func is called.
func (rl *RateLimiter) StartCleanup(interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}
