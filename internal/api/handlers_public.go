package api

import (
	"net/http"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/httputil"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/scheduler"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/storage"
)

// RootHandler serves the public service banner (spec §6).
func RootHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Custom Steam Dashboard API",
			"version": version,
			"status":  "running",
		})
	}
}

// HealthHandler reports database connectivity and scheduler state (spec §6).
func HealthHandler(store *storage.Gateway, sched *scheduler.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		database := "connected"
		if err := store.Ping(r.Context()); err != nil {
			status = "degraded"
			database = "disconnected"
		}

		schedStatus := "stopped"
		if sched != nil && sched.Running() {
			schedStatus = "running"
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"status":    status,
			"database":  database,
			"scheduler": schedStatus,
		})
	}
}
