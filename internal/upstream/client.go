// Package upstream provides typed async clients for the Steam player-count,
// catalog, user, and deals providers, each with a shared retry/backoff
// policy and a bounded-concurrency fan-out helper.
package upstream

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/logging"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/metrics"
)

const (
	defaultTimeout   = 10 * time.Second
	maxAttempts      = 3
	initialBackoff   = 500 * time.Millisecond
	maxBackoff       = 4 * time.Second
)

// Client wraps http.Client with a transport-level timeout and the retry
// policy every adapter shares: up to maxAttempts, exponential backoff on
// transport errors and 5xx responses, no retry on 4xx.
type Client struct {
	http    *http.Client
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewClient builds an upstream HTTP client. timeout overrides the default
// 10s when positive.
func NewClient(timeout time.Duration, m *metrics.Metrics, logger *logging.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
				ForceAttemptHTTP2: true,
			},
		},
		metrics: m,
		logger:  logger,
	}
}

// Do executes req with retry/backoff, rebuilding the request body (if any)
// from getBody on each attempt, as http.NewRequestWithContext already
// arranges for GetBody-able bodies. provider labels the metrics/logging
// calls (e.g. "player_count", "catalog", "deals").
func (c *Client) Do(req *http.Request, provider string) (*http.Response, error) {
	backoff := initialBackoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = body
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		duration := time.Since(start)

		if err != nil {
			lastErr = err
			c.record(provider, "error", duration)
			if attempt == maxAttempts || req.Context().Err() != nil {
				break
			}
			if !sleep(req.Context(), backoff) {
				break
			}
			backoff = nextBackoff(backoff)
			continue
		}

		if resp.StatusCode >= 500 {
			c.record(provider, "5xx", duration)
			resp.Body.Close()
			lastErr = fmt.Errorf("upstream: %s returned %d", provider, resp.StatusCode)
			if attempt == maxAttempts || req.Context().Err() != nil {
				break
			}
			if !sleep(req.Context(), backoff) {
				break
			}
			backoff = nextBackoff(backoff)
			continue
		}

		c.record(provider, statusClass(resp.StatusCode), duration)
		return resp, nil
	}

	if c.logger != nil {
		c.logger.WithContext(req.Context()).WithFields(map[string]interface{}{
			"provider": provider,
			"error":    lastErr,
		}).Warn("upstream request exhausted retries")
	}
	return nil, lastErr
}

func (c *Client) record(provider, outcome string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamRequest(provider, outcome, d)
	}
}

func statusClass(status int) string {
	if status >= 400 {
		return "4xx"
	}
	return "ok"
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

// sleep waits for d or returns false early if ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
