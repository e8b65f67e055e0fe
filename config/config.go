package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/grantpulse/agentgate/models"
)

// Config represents the complete gateway configuration
type Config struct {
	Server        ServerConfig
	Gateway       GatewayConfig
	Downstream    DownstreamConfig
	Audit         AuditConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// GatewayConfig holds the inbound authentication material.
// SigningSecret is the shared HMAC secret callers sign request bodies with;
// each tenant additionally carries its own gateway credential.
type GatewayConfig struct {
	SigningSecret string
	AdminToken    string
	AdminJWTKey   string
	TenantsFile   string
	Tenants       []models.TenantIdentity
}

// DownstreamConfig holds the outbound call configuration shared by action
// executors that reach the compensation API and webhook endpoints.
type DownstreamConfig struct {
	PaveBaseURL       string
	WebhookBaseURL    string
	Timeout           time.Duration
	MaxRetries        int
	WebhookAllowlist  []string
	WebhookRequireTLS bool
}

// AuditConfig holds audit trail configuration.
// Backend selects the store implementation; "memory" is the default and keeps
// entries for the life of the process, bounded by RetentionHorizon.
type AuditConfig struct {
	Backend          string // memory or postgres
	RetentionHorizon time.Duration
	DatabaseURL      string
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8443),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Gateway: GatewayConfig{
			SigningSecret: getEnv("GATEWAY_SIGNING_SECRET", ""),
			AdminToken:    getEnv("GATEWAY_ADMIN_TOKEN", ""),
			AdminJWTKey:   getEnv("GATEWAY_ADMIN_JWT_KEY", ""),
			TenantsFile:   getEnv("GATEWAY_TENANTS_FILE", ""),
		},
		Downstream: DownstreamConfig{
			PaveBaseURL:       getEnv("PAVE_BASE_URL", "https://api.pave.example.com"),
			WebhookBaseURL:    getEnv("WEBHOOK_REGISTRY_URL", "https://hooks.pave.example.com"),
			Timeout:           getEnvAsDuration("DOWNSTREAM_TIMEOUT", 15*time.Second),
			MaxRetries:        getEnvAsInt("DOWNSTREAM_MAX_RETRIES", 3),
			WebhookAllowlist:  getEnvAsSlice("WEBHOOK_ALLOWED_HOSTS", []string{}),
			WebhookRequireTLS: getEnvAsBool("WEBHOOK_REQUIRE_TLS", true),
		},
		Audit: AuditConfig{
			Backend:          getEnv("AUDIT_BACKEND", "memory"),
			RetentionHorizon: getEnvAsDuration("AUDIT_RETENTION", 30*24*time.Hour),
			DatabaseURL:      getEnv("AUDIT_DATABASE_URL", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.loadTenants(); err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadTenants reads the tenant table from the YAML file when configured,
// falling back to the compact GATEWAY_TENANTS env form
// ("name=gatewayCred:paveKey:webhookKey", comma separated).
func (c *Config) loadTenants() error {
	if c.Gateway.TenantsFile != "" {
		data, err := os.ReadFile(c.Gateway.TenantsFile)
		if err != nil {
			return fmt.Errorf("reading tenants file %s: %w", c.Gateway.TenantsFile, err)
		}
		var table models.TenantTable
		if err := yaml.Unmarshal(data, &table); err != nil {
			return fmt.Errorf("parsing tenants file %s: %w", c.Gateway.TenantsFile, err)
		}
		c.Gateway.Tenants = table.Tenants
		return nil
	}

	raw := getEnv("GATEWAY_TENANTS", "")
	if raw == "" {
		return nil
	}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, rest, ok := strings.Cut(item, "=")
		if !ok {
			return fmt.Errorf("malformed tenant entry %q: want name=credential:paveKey[:webhookKey]", item)
		}
		parts := strings.Split(rest, ":")
		if len(parts) < 2 {
			return fmt.Errorf("malformed tenant entry %q: want name=credential:paveKey[:webhookKey]", item)
		}
		tenant := models.TenantIdentity{
			Name:              name,
			GatewayCredential: parts[0],
			PaveAPIKey:        parts[1],
		}
		if len(parts) > 2 {
			tenant.WebhookSigningKey = parts[2]
		}
		c.Gateway.Tenants = append(c.Gateway.Tenants, tenant)
	}
	return nil
}

// Validate checks if all required configuration fields are set.
// Failures here are operator misconfiguration, fatal at startup.
func (c *Config) Validate() error {
	if c.Gateway.SigningSecret == "" {
		return fmt.Errorf("gateway signing secret is required: set GATEWAY_SIGNING_SECRET")
	}
	if len(c.Gateway.Tenants) == 0 {
		return fmt.Errorf("at least one tenant is required: set GATEWAY_TENANTS_FILE or GATEWAY_TENANTS")
	}
	for _, t := range c.Gateway.Tenants {
		if t.Name == "" || t.GatewayCredential == "" {
			return fmt.Errorf("tenant entries require name and gateway credential")
		}
	}
	if c.Gateway.AdminToken == "" && c.Gateway.AdminJWTKey == "" {
		return fmt.Errorf("admin credential is required: set GATEWAY_ADMIN_TOKEN or GATEWAY_ADMIN_JWT_KEY")
	}
	if c.Audit.Backend != "memory" && c.Audit.Backend != "postgres" {
		return fmt.Errorf("audit backend must be memory or postgres, got %q", c.Audit.Backend)
	}
	if c.Audit.Backend == "postgres" && c.Audit.DatabaseURL == "" {
		return fmt.Errorf("audit database URL is required for the postgres backend")
	}
	if c.Audit.RetentionHorizon <= 0 {
		return fmt.Errorf("audit retention horizon must be positive")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
