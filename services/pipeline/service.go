// Package pipeline orchestrates the request execution pipeline: signature
// authentication, tenant resolution, schema validation, the idempotency gate,
// action dispatch, and audit logging.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/models"
	"github.com/grantpulse/agentgate/services"
	"github.com/grantpulse/agentgate/services/actions"
	"github.com/grantpulse/agentgate/services/audit"
	"github.com/grantpulse/agentgate/services/idempotency"
	"github.com/grantpulse/agentgate/services/schema"
	"github.com/grantpulse/agentgate/services/signature"
	"github.com/grantpulse/agentgate/services/tenant"
)

// Request is the inbound boundary handed over by the HTTP transport: the raw,
// unparsed body (needed verbatim for signature verification) plus the two
// authentication headers.
type Request struct {
	RawBody         []byte
	SignatureHeader string
	Credential      string
}

// Service wires the pipeline stages together. One instance serves all
// concurrent requests; the idempotency cache and audit trail are the only
// shared mutable state.
type Service struct {
	signingSecret []byte
	resolver      *tenant.Resolver
	validator     *schema.Validator
	cache         *idempotency.Cache
	registry      *actions.Registry
	auditLog      *audit.Service
	logger        *zap.Logger
}

// NewService creates the pipeline service.
func NewService(
	signingSecret []byte,
	resolver *tenant.Resolver,
	validator *schema.Validator,
	cache *idempotency.Cache,
	registry *actions.Registry,
	auditLog *audit.Service,
	logger *zap.Logger,
) *Service {
	return &Service{
		signingSecret: signingSecret,
		resolver:      resolver,
		validator:     validator,
		cache:         cache,
		registry:      registry,
		auditLog:      auditLog,
		logger:        logger,
	}
}

// Handle runs one request through the full pipeline. The returned trace ID is
// valid even on failure, so every response can be correlated with its audit
// entry. Errors are always *services.DomainError underneath.
func (s *Service) Handle(ctx context.Context, req Request) (*models.ActionResponse, string, error) {
	start := time.Now()
	traceID := uuid.NewString()

	if len(req.RawBody) == 0 {
		return nil, traceID, services.ErrEmptyBody
	}

	// Authentication first: nothing is validated, dispatched or logged in
	// detail until the caller proves possession of the shared secret.
	if !signature.Verify(req.RawBody, req.SignatureHeader, s.signingSecret) {
		s.appendFailure(ctx, traceID, "", nil, start, services.ErrInvalidSignature)
		return nil, traceID, services.ErrInvalidSignature
	}

	resolved := s.resolver.Resolve(req.Credential)
	if resolved == nil {
		err := services.ErrUnknownCredential
		if req.Credential == "" {
			err = services.ErrMissingCredential
		}
		s.appendFailure(ctx, traceID, "", nil, start, err)
		return nil, traceID, err
	}

	env, violations := s.validator.ValidateEnvelope(req.RawBody)
	if violations != nil {
		err := services.NewDomainError(services.ErrorTypeValidation, "envelope validation failed", nil).WithDetails(violations...)
		s.appendFailure(ctx, traceID, resolved.Name, nil, start, err)
		return nil, traceID, err
	}

	params, violations := s.validator.ValidateParams(env.Action, env.Params)
	if violations != nil {
		err := services.NewDomainError(services.ErrorTypeValidation, "params validation failed", nil).WithDetails(violations...)
		s.appendFailure(ctx, traceID, resolved.Name, env, start, err)
		return nil, traceID, err
	}

	s.logger.Debug("request validated",
		zap.String("trace_id", traceID),
		zap.String("tenant", resolved.Name),
		zap.String("action", string(env.Action)),
		zap.String("mode", string(env.Mode)))

	// Dry runs never consult or populate the idempotency cache: they are
	// recomputed every time and must not produce side effects.
	if env.Mode == models.ModeDryRun {
		resp, err := s.invoke(ctx, traceID, env, params, resolved, start)
		return resp, traceID, err
	}

	key := idempotency.Key(env.Action, resolved.Name, env.IdempotencyKey)
	resp, replayed, err := s.cache.Do(key, func() (*models.ActionResponse, error) {
		return s.invoke(ctx, traceID, env, params, resolved, start)
	})
	if err != nil {
		return nil, traceID, err
	}
	if replayed {
		// The memoized response is returned verbatim, original trace ID
		// included; the replay still leaves its own audit entry.
		entry := models.NewLogEntry(resp.TraceID, resolved.Name, env.Action, env.Mode, models.StatusSuccess).
			WithDuration(time.Since(start)).
			WithNotes([]string{"idempotent replay: side effect not repeated"}).
			WithDetails(map[string]interface{}{"idempotencyKey": env.IdempotencyKey, "replayed": true})
		s.append(ctx, entry)
		return resp, resp.TraceID, nil
	}
	return resp, traceID, nil
}

// invoke dispatches the action and appends the terminal audit entry.
func (s *Service) invoke(ctx context.Context, traceID string, env *models.ActionEnvelope, params interface{}, resolved *models.TenantIdentity, start time.Time) (*models.ActionResponse, error) {
	result, err := s.registry.Dispatch(ctx, env.Action, params, resolved, env.Mode)
	if err != nil {
		s.appendFailure(ctx, traceID, resolved.Name, env, start, err)
		return nil, err
	}

	status := models.StatusSuccess
	if len(result.Notes) > 0 {
		status = models.StatusWarning
	}
	entry := models.NewLogEntry(traceID, resolved.Name, env.Action, env.Mode, status).
		WithDuration(time.Since(start)).
		WithNotes(result.Notes).
		WithDetails(map[string]interface{}{
			"idempotencyKey": env.IdempotencyKey,
			"params":         decodeParams(env.Params),
		})
	s.append(ctx, entry)

	notes := result.Notes
	if notes == nil {
		notes = []string{}
	}
	return &models.ActionResponse{
		OK:      true,
		TraceID: traceID,
		Result:  result.Result,
		Notes:   notes,
	}, nil
}

// appendFailure records a failed invocation. Failures before tenant
// resolution carry an empty tenant; failures before envelope validation carry
// no action or mode.
func (s *Service) appendFailure(ctx context.Context, traceID, tenantName string, env *models.ActionEnvelope, start time.Time, cause error) {
	var action models.ActionName
	var mode models.ExecutionMode
	details := map[string]interface{}{}
	if env != nil {
		action = env.Action
		mode = env.Mode
		details["idempotencyKey"] = env.IdempotencyKey
	}
	entry := models.NewLogEntry(traceID, tenantName, action, mode, models.StatusError).
		WithDuration(time.Since(start)).
		WithError(cause.Error()).
		WithDetails(details)
	s.append(ctx, entry)
}

// append writes an audit entry; a failing audit backend is logged, never
// allowed to mask the request outcome.
func (s *Service) append(ctx context.Context, entry *models.LogEntry) {
	if err := s.auditLog.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("trace_id", entry.TraceID),
			zap.Error(err))
	}
}

// decodeParams re-decodes the raw params for the audit details so redaction
// can walk the caller's actual payload.
func decodeParams(raw json.RawMessage) interface{} {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	return decoded
}
