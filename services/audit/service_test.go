package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/models"
	"github.com/grantpulse/agentgate/repositories/memory"
)

func newTestService(t *testing.T, retention time.Duration) (*Service, *memory.AuditStore) {
	t.Helper()
	store := memory.NewAuditStore()
	return NewService(store, retention, zap.NewNop()), store
}

func TestAppend_RedactsBeforeStorage(t *testing.T) {
	svc, store := newTestService(t, time.Hour)

	entry := models.NewLogEntry("trace-1", "acme", models.ActionRecordUpdate, models.ModeExecute, models.StatusSuccess).
		WithDetails(map[string]interface{}{
			"idempotencyKey": "run-1",
			"params": map[string]interface{}{
				"recordId": "rec-1",
				"grantKey": "grant-abc",
			},
		})

	require.NoError(t, svc.Append(context.Background(), entry))

	stored, err := store.Query(context.Background(), models.QueryFilter{TraceID: "trace-1"})
	require.NoError(t, err)
	require.Len(t, stored, 1)

	// The key name "idempotencyKey" contains "key": write-time redaction is
	// name-based and makes no exception for it.
	assert.Equal(t, RedactionMarker, stored[0].Details["idempotencyKey"])
	params := stored[0].Details["params"].(map[string]interface{})
	assert.Equal(t, "rec-1", params["recordId"])
	assert.Equal(t, RedactionMarker, params["grantKey"])
}

func TestAppend_PrunesExpiredEntries(t *testing.T) {
	svc, store := newTestService(t, time.Hour)

	old := models.NewLogEntry("trace-old", "acme", models.ActionEcho, models.ModeDryRun, models.StatusSuccess)
	old.Timestamp = time.Now().Add(-2 * time.Hour)
	require.NoError(t, store.Insert(context.Background(), old))

	fresh := models.NewLogEntry("trace-new", "acme", models.ActionEcho, models.ModeDryRun, models.StatusSuccess)
	require.NoError(t, svc.Append(context.Background(), fresh))

	assert.Equal(t, 1, store.Len())
	remaining, err := store.Query(context.Background(), models.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "trace-new", remaining[0].TraceID)
}

func TestAppend_RetentionKeepsRecentEntries(t *testing.T) {
	svc, store := newTestService(t, time.Hour)

	recent := models.NewLogEntry("trace-recent", "acme", models.ActionEcho, models.ModeDryRun, models.StatusSuccess)
	recent.Timestamp = time.Now().Add(-30 * time.Minute)
	require.NoError(t, store.Insert(context.Background(), recent))

	require.NoError(t, svc.Append(context.Background(),
		models.NewLogEntry("trace-new", "acme", models.ActionEcho, models.ModeDryRun, models.StatusSuccess)))

	assert.Equal(t, 2, store.Len())
}

func TestQuery_Passthrough(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	require.NoError(t, svc.Append(context.Background(),
		models.NewLogEntry("trace-1", "acme", models.ActionEcho, models.ModeDryRun, models.StatusSuccess)))
	require.NoError(t, svc.Append(context.Background(),
		models.NewLogEntry("trace-2", "globex", models.ActionEcho, models.ModeDryRun, models.StatusError)))

	entries, err := svc.Query(context.Background(), models.QueryFilter{Tenant: "acme"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "trace-1", entries[0].TraceID)
}
