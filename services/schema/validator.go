// Package schema validates action envelopes and per-action parameters.
//
// Validation is pure: it never touches the network or storage, and it
// accumulates every violated constraint instead of failing on the first.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/grantpulse/agentgate/models"
)

// envelopeFields is the closed set of top-level envelope fields. Anything
// else is rejected; there is no silent pass-through of extra fields.
var envelopeFields = map[string]bool{
	"action":         true,
	"mode":           true,
	"idempotencyKey": true,
	"params":         true,
}

// Validator validates envelopes and action params against declared contracts.
type Validator struct {
	validate *validator.Validate
}

// New creates a schema Validator. Violation messages use the JSON field
// names the caller sent, not the Go struct field names.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateEnvelope decodes and validates the top-level action envelope from
// the raw request body. On failure the returned slice lists every violation.
func (v *Validator) ValidateEnvelope(raw []byte) (*models.ActionEnvelope, []string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, []string{"body must be a JSON object"}
	}

	var violations []string

	var unknown []string
	for name := range fields {
		if !envelopeFields[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		violations = append(violations, fmt.Sprintf("unknown field %q", name))
	}

	env := &models.ActionEnvelope{}

	// Decode field by field so a bad type on one field still lets the
	// others report their own violations.
	if rawAction, ok := fields["action"]; !ok {
		violations = append(violations, "action is required")
	} else if err := json.Unmarshal(rawAction, &env.Action); err != nil {
		violations = append(violations, "action must be a string")
	} else if !models.IsKnownAction(env.Action) {
		violations = append(violations, fmt.Sprintf("action %q is not recognized", env.Action))
	}

	if rawMode, ok := fields["mode"]; !ok {
		violations = append(violations, "mode is required")
	} else if err := json.Unmarshal(rawMode, &env.Mode); err != nil {
		violations = append(violations, "mode must be a string")
	} else if env.Mode != models.ModeDryRun && env.Mode != models.ModeExecute {
		violations = append(violations, fmt.Sprintf("mode must be one of: dry_run, execute (got %q)", env.Mode))
	}

	if rawKey, ok := fields["idempotencyKey"]; !ok {
		violations = append(violations, "idempotencyKey is required")
	} else if err := json.Unmarshal(rawKey, &env.IdempotencyKey); err != nil {
		violations = append(violations, "idempotencyKey must be a string")
	} else if env.IdempotencyKey == "" {
		violations = append(violations, "idempotencyKey must not be empty")
	}

	if rawParams, ok := fields["params"]; !ok {
		violations = append(violations, "params is required")
	} else {
		trimmed := strings.TrimSpace(string(rawParams))
		if trimmed == "null" {
			violations = append(violations, "params must not be null")
		} else {
			env.Params = rawParams
		}
	}

	if len(violations) > 0 {
		return nil, violations
	}
	return env, nil
}

// ValidateParams validates the action-specific params payload and returns the
// decoded, typed value handed to the executor. The echo action accepts any
// JSON value; every other action has a declared schema.
func (v *Validator) ValidateParams(action models.ActionName, raw json.RawMessage) (interface{}, []string) {
	switch action {
	case models.ActionEcho:
		var anything interface{}
		if err := json.Unmarshal(raw, &anything); err != nil {
			return nil, []string{"params must be valid JSON"}
		}
		return anything, nil

	case models.ActionPaveQuery:
		var params PaveQueryParams
		return v.decodeAndValidate(raw, &params)

	case models.ActionRecordUpdate:
		var params RecordUpdateParams
		return v.decodeAndValidate(raw, &params)

	case models.ActionWebhookRegister:
		var params WebhookRegisterParams
		return v.decodeAndValidate(raw, &params)

	default:
		return nil, []string{fmt.Sprintf("action %q has no declared schema", action)}
	}
}

// decodeAndValidate unmarshals raw into target and runs struct validation,
// translating validator tags into caller-facing messages.
func (v *Validator) decodeAndValidate(raw json.RawMessage, target interface{}) (interface{}, []string) {
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, []string{fmt.Sprintf("params do not match the declared shape: %v", err)}
	}
	if err := v.validate.Struct(target); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, []string{err.Error()}
		}
		violations := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			violations = append(violations, describeViolation(fe))
		}
		return nil, violations
	}
	return target, nil
}

// describeViolation renders one field error as a human-readable constraint.
func describeViolation(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind().String() == "slice" || fe.Kind().String() == "map" {
			return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s failed the %s constraint", field, fe.Tag())
	}
}

// fieldPath strips the struct type name and lowercases the leading segment so
// messages read like the JSON the caller sent ("pave.size", not
// "PaveQueryParams.Pave.Size").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToLower(p[:1]) + p[1:]
	}
	return strings.Join(parts, ".")
}
