package models

import "encoding/json"

// ActionName identifies one of the gateway's registered actions.
type ActionName string

const (
	ActionEcho            ActionName = "echo"
	ActionPaveQuery       ActionName = "pave_query"
	ActionRecordUpdate    ActionName = "record_update"
	ActionWebhookRegister ActionName = "webhook_register"
)

// KnownActions lists every action the gateway dispatches.
var KnownActions = []ActionName{ActionEcho, ActionPaveQuery, ActionRecordUpdate, ActionWebhookRegister}

// IsKnownAction reports whether name is a registered action.
func IsKnownAction(name ActionName) bool {
	for _, a := range KnownActions {
		if a == name {
			return true
		}
	}
	return false
}

// ExecutionMode controls whether an action may produce side effects.
type ExecutionMode string

const (
	// ModeDryRun must never produce an observable side effect.
	ModeDryRun ExecutionMode = "dry_run"
	// ModeExecute may produce side effects, subject to idempotency.
	ModeExecute ExecutionMode = "execute"
)

// ActionEnvelope is the unit of work submitted by a caller.
// Once validated the pipeline treats it as immutable; params stay raw JSON
// until the per-action schema decodes them into a concrete type.
type ActionEnvelope struct {
	Action         ActionName      `json:"action" validate:"required"`
	Mode           ExecutionMode   `json:"mode" validate:"required,oneof=dry_run execute"`
	IdempotencyKey string          `json:"idempotencyKey" validate:"required"`
	Params         json.RawMessage `json:"params" validate:"required"`
}

// ActionResponse is the success envelope returned to the caller.
type ActionResponse struct {
	OK      bool        `json:"ok"`
	TraceID string      `json:"traceId"`
	Result  interface{} `json:"result"`
	Notes   []string    `json:"notes"`
}

// ErrorEnvelope is the failure envelope returned to the caller.
type ErrorEnvelope struct {
	OK      bool        `json:"ok"`
	TraceID string      `json:"traceId,omitempty"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}
