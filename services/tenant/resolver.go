// Package tenant maps inbound caller credentials to tenant identities.
package tenant

import (
	"crypto/subtle"

	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/models"
	"github.com/grantpulse/agentgate/services"
)

// Resolver resolves a caller credential to exactly one configured tenant.
// The tenant set is fixed at startup; resolution never mutates it, so lookups
// are safe for concurrent use.
type Resolver struct {
	tenants []models.TenantIdentity
	logger  *zap.Logger
}

// NewResolver creates a Resolver over the configured tenant table.
// An empty table is operator misconfiguration, surfaced at startup rather
// than as a per-request error.
func NewResolver(tenants []models.TenantIdentity, logger *zap.Logger) (*Resolver, error) {
	if len(tenants) == 0 {
		return nil, services.ErrNoTenantsConfigured
	}
	return &Resolver{tenants: tenants, logger: logger}, nil
}

// Resolve returns the tenant whose gateway credential exactly equals the
// caller credential, or nil when no tenant matches. Matching is whole-string
// equality; prefixes and substrings never match. A nil result is a normal
// no-match, not an error: the caller-facing status for it is unauthorized.
func (r *Resolver) Resolve(callerCredential string) *models.TenantIdentity {
	if callerCredential == "" {
		return nil
	}
	for i := range r.tenants {
		if subtle.ConstantTimeCompare([]byte(r.tenants[i].GatewayCredential), []byte(callerCredential)) == 1 {
			t := r.tenants[i]
			return &t
		}
	}
	r.logger.Debug("credential matched no tenant")
	return nil
}

// Names returns the configured tenant names, for the status endpoint.
func (r *Resolver) Names() []string {
	names := make([]string, 0, len(r.tenants))
	for _, t := range r.tenants {
		names = append(names, t.Name)
	}
	return names
}
