package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/app"
	"github.com/grantpulse/agentgate/config"
	"github.com/grantpulse/agentgate/models"
	"github.com/grantpulse/agentgate/repositories/memory"
	"github.com/grantpulse/agentgate/services/actions"
	"github.com/grantpulse/agentgate/services/audit"
	"github.com/grantpulse/agentgate/services/httpclient"
	"github.com/grantpulse/agentgate/services/idempotency"
	"github.com/grantpulse/agentgate/services/pipeline"
	"github.com/grantpulse/agentgate/services/schema"
	"github.com/grantpulse/agentgate/services/signature"
	"github.com/grantpulse/agentgate/services/tenant"
)

const handlerTestSecret = "handler-test-secret"

// newTestDeps builds a Dependencies container over in-memory stores with only
// the echo executor registered.
func newTestDeps(t *testing.T) *app.Dependencies {
	t.Helper()
	logger := zap.NewNop()

	resolver, err := tenant.NewResolver([]models.TenantIdentity{
		{Name: "acme", GatewayCredential: "acme-cred", PaveAPIKey: "acme-pave-key"},
	}, logger)
	require.NoError(t, err)

	registry := actions.NewRegistry(logger)
	registry.Register(actions.NewEchoExecutor())

	validator := schema.New()
	cache := idempotency.NewCache()
	store := memory.NewAuditStore()
	auditLog := audit.NewService(store, time.Hour, logger)

	return &app.Dependencies{
		Config:           &config.Config{},
		Logger:           logger,
		TenantResolver:   resolver,
		SchemaValidator:  validator,
		IdempotencyCache: cache,
		ActionRegistry:   registry,
		HTTPClient:       httpclient.New(time.Second, logger),
		AuditLog:         auditLog,
		Pipeline: pipeline.NewService(
			[]byte(handlerTestSecret),
			resolver,
			validator,
			cache,
			registry,
			auditLog,
			logger,
		),
	}
}

func postAction(t *testing.T, handler http.HandlerFunc, body, credential string, sign bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/actions", bytes.NewReader([]byte(body)))
	if sign {
		req.Header.Set(SignatureHeader, signature.Sign([]byte(body), []byte(handlerTestSecret)))
	}
	if credential != "" {
		req.Header.Set(CredentialHeader, credential)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestExecuteActionHandler_Success(t *testing.T) {
	handler := ExecuteActionHandler(newTestDeps(t))

	body := `{"action":"echo","mode":"dry_run","idempotencyKey":"run-1","params":{"msg":"hi"}}`
	rec := postAction(t, handler, body, "acme-cred", true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp models.ActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.NotEmpty(t, resp.TraceID)

	echoed := resp.Result.(map[string]interface{})["echo"].(map[string]interface{})
	assert.Equal(t, "hi", echoed["msg"])
}

func TestExecuteActionHandler_EmptyBody(t *testing.T) {
	handler := ExecuteActionHandler(newTestDeps(t))

	rec := postAction(t, handler, "", "acme-cred", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "request body is required", resp.Error)
}

func TestExecuteActionHandler_BadSignature(t *testing.T) {
	handler := ExecuteActionHandler(newTestDeps(t))

	body := `{"action":"echo","mode":"dry_run","idempotencyKey":"run-1","params":{}}`
	rec := postAction(t, handler, body, "acme-cred", false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp models.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, "signature verification failed", resp.Error)
}

func TestExecuteActionHandler_ValidationFailure(t *testing.T) {
	handler := ExecuteActionHandler(newTestDeps(t))

	body := `{"action":"echo","mode":"dry_run","params":{},"extra":true}`
	rec := postAction(t, handler, body, "acme-cred", true)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp models.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "envelope validation failed", resp.Error)

	details, ok := resp.Details.([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{
		`unknown field "extra"`,
		"idempotencyKey is required",
	}, details)
}

func TestExecuteActionHandler_UnknownAction(t *testing.T) {
	handler := ExecuteActionHandler(newTestDeps(t))

	body := `{"action":"drop_tables","mode":"execute","idempotencyKey":"k","params":{}}`
	rec := postAction(t, handler, body, "acme-cred", true)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestExecuteActionHandler_ReplayReturnsIdenticalResponse(t *testing.T) {
	handler := ExecuteActionHandler(newTestDeps(t))
	body := `{"action":"echo","mode":"execute","idempotencyKey":"run-1","params":{"msg":"hi"}}`

	first := postAction(t, handler, body, "acme-cred", true)
	second := postAction(t, handler, body, "acme-cred", true)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestHealthAndStatusHandlers(t *testing.T) {
	deps := newTestDeps(t)

	rec := httptest.NewRecorder()
	HealthCheck(deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	StatusHandler(deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Contains(t, status["actions"], "echo")
	assert.Contains(t, status["tenants"], "acme")
}

func TestListAuditEntriesHandler(t *testing.T) {
	deps := newTestDeps(t)

	require.NoError(t, deps.AuditLog.Append(context.Background(),
		models.NewLogEntry("trace-1", "acme", models.ActionEcho, models.ModeDryRun, models.StatusSuccess)))
	require.NoError(t, deps.AuditLog.Append(context.Background(),
		models.NewLogEntry("trace-2", "globex", models.ActionEcho, models.ModeDryRun, models.StatusError)))

	rec := httptest.NewRecorder()
	ListAuditEntriesHandler(deps).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/v1/audit/logs?tenant=acme", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Entries []models.LogEntry `json:"entries"`
		Count   int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "trace-1", resp.Entries[0].TraceID)
}

func TestListAuditEntriesHandler_EmptyResult(t *testing.T) {
	deps := newTestDeps(t)

	rec := httptest.NewRecorder()
	ListAuditEntriesHandler(deps).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/v1/audit/logs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":[],"count":0}`, rec.Body.String())
}
