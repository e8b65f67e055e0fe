package actions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/config"
	"github.com/grantpulse/agentgate/models"
	"github.com/grantpulse/agentgate/services"
	"github.com/grantpulse/agentgate/services/httpclient"
	"github.com/grantpulse/agentgate/services/schema"
)

// readOnlyFields are set by the downstream system; updates naming them are
// accepted but the values are ignored, so lint notes warn about them.
var readOnlyFields = map[string]bool{
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
}

// RecordUpdateExecutor applies a field update to one downstream record. This
// is the gateway's canonical side-effecting action: repeated execute requests
// with the same idempotency key must reach the downstream exactly once.
type RecordUpdateExecutor struct {
	client *httpclient.Client
	cfg    config.DownstreamConfig
	logger *zap.Logger
}

// NewRecordUpdateExecutor creates the record update executor.
func NewRecordUpdateExecutor(client *httpclient.Client, cfg config.DownstreamConfig, logger *zap.Logger) *RecordUpdateExecutor {
	return &RecordUpdateExecutor{client: client, cfg: cfg, logger: logger}
}

// Name returns the action name.
func (e *RecordUpdateExecutor) Name() models.ActionName {
	return models.ActionRecordUpdate
}

// Execute applies the update, or in dry_run summarizes the would-be change.
func (e *RecordUpdateExecutor) Execute(ctx context.Context, params interface{}, tenant *models.TenantIdentity, mode models.ExecutionMode) (*Result, error) {
	p, ok := params.(*schema.RecordUpdateParams)
	if !ok {
		return nil, services.WrapInternal("record_update received params of the wrong type", nil)
	}

	notes := lintFields(p.Fields)

	fieldNames := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		fieldNames = append(fieldNames, name)
	}
	sort.Strings(fieldNames)

	if mode == models.ModeDryRun {
		return &Result{
			Result: map[string]interface{}{
				"description": fmt.Sprintf("would update record %s, setting %s", p.RecordID, strings.Join(fieldNames, ", ")),
				"recordId":    p.RecordID,
				"fields":      fieldNames,
			},
			Notes: notes,
		}, nil
	}

	target := strings.TrimRight(e.cfg.PaveBaseURL, "/") + "/records/" + p.RecordID
	resp, err := e.client.Send(ctx, httpclient.Request{
		URL:    target,
		Method: "POST",
		Headers: map[string]string{
			"Authorization": "Bearer " + tenant.PaveAPIKey,
		},
		Body:       map[string]interface{}{"fields": p.Fields},
		Timeout:    e.cfg.Timeout,
		MaxRetries: e.cfg.MaxRetries,
	})
	if err != nil {
		return nil, err
	}
	if resp.Status >= 400 {
		return nil, services.WrapDownstream(
			fmt.Sprintf("record update returned status %d", resp.Status), nil)
	}

	e.logger.Info("record updated",
		zap.String("tenant", tenant.Name),
		zap.String("record_id", p.RecordID),
		zap.Int("fields", len(p.Fields)))

	return &Result{
		Result: map[string]interface{}{
			"recordId": p.RecordID,
			"updated":  fieldNames,
			"status":   resp.Status,
			"data":     resp.Data,
		},
		Notes: notes,
	}, nil
}

// lintFields walks the update payload and collects advisory warnings for
// read-only field names at any nesting depth.
func lintFields(fields map[string]interface{}) []string {
	var notes []string
	var walk func(prefix string, value interface{})
	walk = func(prefix string, value interface{}) {
		switch v := value.(type) {
		case map[string]interface{}:
			names := make([]string, 0, len(v))
			for name := range v {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				path := name
				if prefix != "" {
					path = prefix + "." + name
				}
				if readOnlyFields[name] {
					notes = append(notes, fmt.Sprintf("field %q is read-only downstream and will be ignored", path))
				}
				walk(path, v[name])
			}
		case []interface{}:
			for _, item := range v {
				walk(prefix, item)
			}
		}
	}
	walk("", fields)
	return notes
}
