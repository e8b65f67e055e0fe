package actions

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/config"
	"github.com/grantpulse/agentgate/models"
	"github.com/grantpulse/agentgate/services"
	"github.com/grantpulse/agentgate/services/httpclient"
	"github.com/grantpulse/agentgate/services/schema"
)

const defaultPageSize = 25

// PaveQueryExecutor runs read queries against the compensation API on behalf
// of a tenant, authenticated with the tenant's own API key.
type PaveQueryExecutor struct {
	client *httpclient.Client
	cfg    config.DownstreamConfig
	logger *zap.Logger
}

// NewPaveQueryExecutor creates the query executor.
func NewPaveQueryExecutor(client *httpclient.Client, cfg config.DownstreamConfig, logger *zap.Logger) *PaveQueryExecutor {
	return &PaveQueryExecutor{client: client, cfg: cfg, logger: logger}
}

// Name returns the action name.
func (e *PaveQueryExecutor) Name() models.ActionName {
	return models.ActionPaveQuery
}

// Execute performs the query, or in dry_run describes the call it would make
// without touching the network.
func (e *PaveQueryExecutor) Execute(ctx context.Context, params interface{}, tenant *models.TenantIdentity, mode models.ExecutionMode) (*Result, error) {
	p, ok := params.(*schema.PaveQueryParams)
	if !ok {
		return nil, services.WrapInternal("pave_query received params of the wrong type", nil)
	}
	spec := p.Pave

	method := spec.Method
	if method == "" {
		method = "GET"
	}
	size := spec.Size
	var notes []string
	if size == 0 {
		size = defaultPageSize
		notes = append(notes, fmt.Sprintf("page size defaulted to %d", defaultPageSize))
	}

	target, err := e.buildURL(spec, method, size)
	if err != nil {
		return nil, services.WrapInternal("failed to build query URL", err)
	}

	if mode == models.ModeDryRun {
		return &Result{
			Result: map[string]interface{}{
				"description": fmt.Sprintf("would %s %s as tenant %s", method, target, tenant.Name),
				"method":      method,
				"url":         target,
				"pageSize":    size,
			},
			Notes: notes,
		}, nil
	}

	req := httpclient.Request{
		URL:    target,
		Method: method,
		Headers: map[string]string{
			"Authorization": "Bearer " + tenant.PaveAPIKey,
		},
		Timeout:    e.cfg.Timeout,
		MaxRetries: e.cfg.MaxRetries,
	}
	if method == "POST" {
		req.Body = map[string]interface{}{
			"filters": spec.Filters,
			"size":    size,
			"cursor":  spec.Cursor,
		}
	}

	resp, err := e.client.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Status >= 400 {
		return nil, services.WrapDownstream(
			fmt.Sprintf("compensation API returned status %d", resp.Status), nil)
	}

	e.logger.Debug("pave query completed",
		zap.String("tenant", tenant.Name),
		zap.Int("status", resp.Status))

	return &Result{
		Result: map[string]interface{}{
			"status": resp.Status,
			"data":   resp.Data,
		},
		Notes: notes,
	}, nil
}

// buildURL joins the base URL and query path; GET requests carry pagination
// and flat filters in the query string.
func (e *PaveQueryExecutor) buildURL(spec schema.PaveQuerySpec, method string, size int) (string, error) {
	base := strings.TrimRight(e.cfg.PaveBaseURL, "/")
	path := "/" + strings.TrimLeft(spec.Path, "/")
	u, err := url.Parse(base + path)
	if err != nil {
		return "", err
	}
	if method == "GET" {
		q := u.Query()
		q.Set("size", strconv.Itoa(size))
		if spec.Cursor != "" {
			q.Set("cursor", spec.Cursor)
		}
		for k, v := range spec.Filters {
			q.Set(k, fmt.Sprintf("%v", v))
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
