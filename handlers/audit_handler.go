package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/app"
	"github.com/grantpulse/agentgate/models"
	"github.com/grantpulse/agentgate/utils"
)

// ListAuditEntriesHandler serves the admin audit query boundary. Filters are
// independent and conjunctive; entries come back newest-first, already
// redacted.
func ListAuditEntriesHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := models.QueryFilter{
			TraceID: q.Get("trace_id"),
			Tenant:  q.Get("tenant"),
			Action:  models.ActionName(q.Get("action")),
			Status:  models.EntryStatus(q.Get("status")),
		}

		entries, err := deps.AuditLog.Query(r.Context(), filter)
		if err != nil {
			deps.Logger.Error("audit query failed", zap.Error(err))
			_ = utils.WriteFailure(w, http.StatusInternalServerError, "", "failed to query audit entries", nil)
			return
		}
		if entries == nil {
			entries = []*models.LogEntry{}
		}

		_ = utils.WriteOK(w, map[string]interface{}{
			"entries": entries,
			"count":   len(entries),
		})
	}
}
