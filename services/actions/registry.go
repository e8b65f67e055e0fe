// Package actions holds the action registry and the individual executors.
//
// Every executor honors the same contract: it receives already-validated
// params, the resolved tenant identity, and the execution mode. In dry_run it
// performs no side effect and describes what would happen; in execute it
// performs the real work. Both modes return a result plus advisory notes, so
// the dispatcher, idempotency layer and audit layer never need to know an
// action's internals.
package actions

import (
	"context"

	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/models"
	"github.com/grantpulse/agentgate/services"
)

// Result is the uniform output of every executor.
type Result struct {
	Result interface{}
	Notes  []string
}

// Executor runs one named action. Downstream credentials come from the
// tenant identity, never from the caller request.
type Executor interface {
	Name() models.ActionName
	Execute(ctx context.Context, params interface{}, tenant *models.TenantIdentity, mode models.ExecutionMode) (*Result, error)
}

// Registry maps action names to executors.
type Registry struct {
	executors map[models.ActionName]Executor
	logger    *zap.Logger
}

// NewRegistry creates an empty action registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		executors: make(map[models.ActionName]Executor),
		logger:    logger,
	}
}

// Register adds an executor to the registry.
func (r *Registry) Register(e Executor) {
	r.executors[e.Name()] = e
	r.logger.Info("action registered", zap.String("action", string(e.Name())))
}

// Dispatch invokes the executor registered for action. Executor failures
// propagate untouched: retry belongs to the HTTP client underneath, and
// swallowing errors here would hide them from the audit trail.
func (r *Registry) Dispatch(ctx context.Context, action models.ActionName, params interface{}, tenant *models.TenantIdentity, mode models.ExecutionMode) (*Result, error) {
	executor, ok := r.executors[action]
	if !ok {
		return nil, services.ErrUnknownAction
	}
	return executor.Execute(ctx, params, tenant, mode)
}

// List returns the registered action names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, string(name))
	}
	return names
}
