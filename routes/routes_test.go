package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/app"
	"github.com/grantpulse/agentgate/config"
	"github.com/grantpulse/agentgate/middleware"
	"github.com/grantpulse/agentgate/models"
	"github.com/grantpulse/agentgate/repositories/memory"
	"github.com/grantpulse/agentgate/services/actions"
	"github.com/grantpulse/agentgate/services/audit"
	"github.com/grantpulse/agentgate/services/httpclient"
	"github.com/grantpulse/agentgate/services/idempotency"
	"github.com/grantpulse/agentgate/services/pipeline"
	"github.com/grantpulse/agentgate/services/schema"
	"github.com/grantpulse/agentgate/services/tenant"
)

func routerForTest(t *testing.T) http.Handler {
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
	auditLog := audit.NewService(memory.NewAuditStore(), time.Hour, logger)

	deps := &app.Dependencies{
		Config:           &config.Config{},
		Logger:           logger,
		TenantResolver:   resolver,
		SchemaValidator:  validator,
		IdempotencyCache: cache,
		ActionRegistry:   registry,
		HTTPClient:       httpclient.New(time.Second, logger),
		AuditLog:         auditLog,
		Pipeline: pipeline.NewService(
			[]byte("routes-test-secret"), resolver, validator, cache, registry, auditLog, logger),
		AdminMiddleware: middleware.NewAdminMiddleware("routes-admin-token", "", logger),
	}
	return SetupRoutes(deps)
}

func TestRoutes(t *testing.T) {
	router := routerForTest(t)

	tests := []struct {
		name       string
		method     string
		path       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "liveness",
			method:     http.MethodGet,
			path:       "/healthz",
			wantStatus: http.StatusOK,
		},
		{
			name:       "readiness",
			method:     http.MethodGet,
			path:       "/readyz",
			wantStatus: http.StatusOK,
		},
		{
			name:       "status",
			method:     http.MethodGet,
			path:       "/api/v1/status",
			wantStatus: http.StatusOK,
		},
		{
			name:       "actions rejects empty body",
			method:     http.MethodPost,
			path:       "/api/v1/actions",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "audit logs require admin credential",
			method:     http.MethodGet,
			path:       "/api/v1/audit/logs",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "audit logs with admin credential",
			method:     http.MethodGet,
			path:       "/api/v1/audit/logs",
			authHeader: "Bearer routes-admin-token",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route returns json 404",
			method:     http.MethodGet,
			path:       "/api/v2/nope",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}
