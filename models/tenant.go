package models

// TenantIdentity is a resolved caller identity. Downstream credentials belong
// to the tenant and are never exposed to the caller; executors read them from
// here, never from the inbound request.
type TenantIdentity struct {
	Name string `yaml:"name"`

	// GatewayCredential is the inbound shared credential presented by the
	// caller. Compared with exact string equality during resolution.
	GatewayCredential string `yaml:"gateway_credential"`

	// PaveAPIKey authenticates this tenant against the compensation API.
	PaveAPIKey string `yaml:"pave_api_key"`

	// WebhookSigningKey is handed to the webhook registrar so the partner
	// endpoint can verify deliveries for this tenant.
	WebhookSigningKey string `yaml:"webhook_signing_key"`
}

// TenantTable is the static set of configured tenants, as loaded from the
// tenants YAML file or environment fallback.
type TenantTable struct {
	Tenants []TenantIdentity `yaml:"tenants"`
}
