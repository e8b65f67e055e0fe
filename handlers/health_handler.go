package handlers

import (
	"net/http"

	"github.com/grantpulse/agentgate/app"
	"github.com/grantpulse/agentgate/utils"
)

// HealthCheck reports process liveness.
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, map[string]string{"status": "ok"})
	}
}

// ReadinessCheck reports whether the gateway can serve traffic.
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, map[string]string{"status": "ready"})
	}
}

// StatusHandler reports registered actions and cache counters for operators.
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := deps.IdempotencyCache.Stats()
		_ = utils.WriteOK(w, map[string]interface{}{
			"actions": deps.ActionRegistry.List(),
			"tenants": deps.TenantResolver.Names(),
			"idempotency": map[string]interface{}{
				"size":   stats.Size,
				"hits":   stats.Hits,
				"misses": stats.Misses,
			},
		})
	}
}
