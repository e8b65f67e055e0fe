// Package app wires the gateway's dependencies together.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/config"
	"github.com/grantpulse/agentgate/middleware"
	"github.com/grantpulse/agentgate/repositories"
	"github.com/grantpulse/agentgate/repositories/memory"
	"github.com/grantpulse/agentgate/repositories/postgres"
	"github.com/grantpulse/agentgate/services/actions"
	"github.com/grantpulse/agentgate/services/audit"
	"github.com/grantpulse/agentgate/services/httpclient"
	"github.com/grantpulse/agentgate/services/idempotency"
	"github.com/grantpulse/agentgate/services/pipeline"
	"github.com/grantpulse/agentgate/services/schema"
	"github.com/grantpulse/agentgate/services/tenant"
)

// Dependencies holds all gateway dependencies. This is the central wiring
// point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Pipeline stages
	TenantResolver   *tenant.Resolver
	SchemaValidator  *schema.Validator
	IdempotencyCache *idempotency.Cache
	ActionRegistry   *actions.Registry
	HTTPClient       *httpclient.Client
	AuditLog         *audit.Service
	Pipeline         *pipeline.Service

	// Admin boundary
	AdminMiddleware *middleware.AdminMiddleware

	auditStore repositories.AuditStore
	pgStore    *postgres.AuditStore
}

// NewDependencies creates and wires up all gateway dependencies. Failures
// here are startup-class: a missing secret or empty tenant table aborts the
// process instead of surfacing per request.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	resolver, err := tenant.NewResolver(cfg.Gateway.Tenants, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tenant resolver: %w", err)
	}
	deps.TenantResolver = resolver

	deps.SchemaValidator = schema.New()
	deps.IdempotencyCache = idempotency.NewCache()
	deps.HTTPClient = httpclient.New(cfg.Downstream.Timeout, logger)

	if err := deps.initAuditStore(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize audit store: %w", err)
	}
	deps.AuditLog = audit.NewService(deps.auditStore, cfg.Audit.RetentionHorizon, logger)

	deps.initActions(cfg)

	deps.Pipeline = pipeline.NewService(
		[]byte(cfg.Gateway.SigningSecret),
		deps.TenantResolver,
		deps.SchemaValidator,
		deps.IdempotencyCache,
		deps.ActionRegistry,
		deps.AuditLog,
		logger,
	)

	deps.AdminMiddleware = middleware.NewAdminMiddleware(
		cfg.Gateway.AdminToken, cfg.Gateway.AdminJWTKey, logger)

	logger.Info("all dependencies initialized",
		zap.Int("tenants", len(cfg.Gateway.Tenants)),
		zap.Strings("actions", deps.ActionRegistry.List()),
		zap.String("audit_backend", cfg.Audit.Backend))
	return deps, nil
}

// initAuditStore selects the audit backend. Memory is the default; postgres
// persists entries across restarts behind the same interface.
func (d *Dependencies) initAuditStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.Audit.Backend {
	case "postgres":
		store, err := postgres.Open(ctx, cfg.Audit.DatabaseURL, d.Logger)
		if err != nil {
			return err
		}
		if err := store.InitSchema(ctx); err != nil {
			return err
		}
		d.pgStore = store
		d.auditStore = store
	default:
		d.auditStore = memory.NewAuditStore()
	}
	return nil
}

// initActions registers every executor with the registry.
func (d *Dependencies) initActions(cfg *config.Config) {
	registry := actions.NewRegistry(d.Logger)
	registry.Register(actions.NewEchoExecutor())
	registry.Register(actions.NewPaveQueryExecutor(d.HTTPClient, cfg.Downstream, d.Logger))
	registry.Register(actions.NewRecordUpdateExecutor(d.HTTPClient, cfg.Downstream, d.Logger))
	registry.Register(actions.NewWebhookRegisterExecutor(d.HTTPClient, cfg.Downstream, d.Logger))
	d.ActionRegistry = registry
}

// Close gracefully shuts down all dependencies.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error
	if d.pgStore != nil {
		if err := d.pgStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close audit store: %w", err))
		}
	}
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
