package actions

import (
	"context"

	"github.com/grantpulse/agentgate/models"
)

// EchoExecutor returns the caller's params verbatim. It has no params schema
// and no side effect in either mode; it exists so callers can smoke-test the
// full pipeline end to end.
type EchoExecutor struct{}

// NewEchoExecutor creates the echo executor.
func NewEchoExecutor() *EchoExecutor {
	return &EchoExecutor{}
}

// Name returns the action name.
func (e *EchoExecutor) Name() models.ActionName {
	return models.ActionEcho
}

// Execute echoes the params back.
func (e *EchoExecutor) Execute(_ context.Context, params interface{}, _ *models.TenantIdentity, mode models.ExecutionMode) (*Result, error) {
	var notes []string
	if mode == models.ModeDryRun {
		notes = append(notes, "echo has no side effects; dry_run and execute behave identically")
	}
	return &Result{
		Result: map[string]interface{}{"echo": params},
		Notes:  notes,
	}, nil
}
