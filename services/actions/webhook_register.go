package actions

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/config"
	"github.com/grantpulse/agentgate/models"
	"github.com/grantpulse/agentgate/services"
	"github.com/grantpulse/agentgate/services/httpclient"
	"github.com/grantpulse/agentgate/services/schema"
)

// WebhookRegisterExecutor registers a partner webhook endpoint downstream.
// The target host must exactly equal an allowlist entry; substring or prefix
// matches never pass.
type WebhookRegisterExecutor struct {
	client *httpclient.Client
	cfg    config.DownstreamConfig
	logger *zap.Logger
}

// NewWebhookRegisterExecutor creates the webhook registrar.
func NewWebhookRegisterExecutor(client *httpclient.Client, cfg config.DownstreamConfig, logger *zap.Logger) *WebhookRegisterExecutor {
	return &WebhookRegisterExecutor{client: client, cfg: cfg, logger: logger}
}

// Name returns the action name.
func (e *WebhookRegisterExecutor) Name() models.ActionName {
	return models.ActionWebhookRegister
}

// Execute registers the webhook, or in dry_run reports what registration
// would do, including allowlist and TLS lint results.
func (e *WebhookRegisterExecutor) Execute(ctx context.Context, params interface{}, tenant *models.TenantIdentity, mode models.ExecutionMode) (*Result, error) {
	p, ok := params.(*schema.WebhookRegisterParams)
	if !ok {
		return nil, services.WrapInternal("webhook_register received params of the wrong type", nil)
	}

	target, err := url.Parse(p.URL)
	if err != nil {
		return nil, services.ErrInvalidParams.WithDetails(fmt.Sprintf("url does not parse: %v", err))
	}

	host := target.Hostname()
	if !e.hostAllowed(host) {
		return nil, services.ErrWebhookNotAllowed.WithDetails(
			fmt.Sprintf("host %q is not in the webhook allowlist", host))
	}

	var notes []string
	if target.Scheme != "https" {
		if mode == models.ModeExecute && e.cfg.WebhookRequireTLS {
			return nil, services.ErrInvalidParams.WithDetails(
				fmt.Sprintf("webhook url must use https, got %s", target.Scheme))
		}
		notes = append(notes, fmt.Sprintf("webhook url uses %s; deliveries will not be encrypted", target.Scheme))
	}

	if mode == models.ModeDryRun {
		return &Result{
			Result: map[string]interface{}{
				"description": fmt.Sprintf("would register webhook %s for events %s", p.URL, strings.Join(p.Events, ", ")),
				"url":         p.URL,
				"events":      p.Events,
			},
			Notes: notes,
		}, nil
	}

	registryURL := strings.TrimRight(e.cfg.WebhookBaseURL, "/") + "/webhooks"
	resp, err := e.client.Send(ctx, httpclient.Request{
		URL:    registryURL,
		Method: "POST",
		Headers: map[string]string{
			"Authorization": "Bearer " + tenant.PaveAPIKey,
		},
		Body: map[string]interface{}{
			"url":        p.URL,
			"events":     p.Events,
			"tenant":     tenant.Name,
			"signingKey": tenant.WebhookSigningKey,
		},
		Timeout:    e.cfg.Timeout,
		MaxRetries: e.cfg.MaxRetries,
	})
	if err != nil {
		return nil, err
	}
	if resp.Status >= 400 {
		return nil, services.WrapDownstream(
			fmt.Sprintf("webhook registration returned status %d", resp.Status), nil)
	}

	e.logger.Info("webhook registered",
		zap.String("tenant", tenant.Name),
		zap.String("host", host),
		zap.Strings("events", p.Events))

	return &Result{
		Result: map[string]interface{}{
			"url":    p.URL,
			"events": p.Events,
			"status": resp.Status,
			"data":   resp.Data,
		},
		Notes: notes,
	}, nil
}

// hostAllowed checks the allowlist with exact string equality on the host.
func (e *WebhookRegisterExecutor) hostAllowed(host string) bool {
	for _, allowed := range e.cfg.WebhookAllowlist {
		if host == allowed {
			return true
		}
	}
	return false
}
