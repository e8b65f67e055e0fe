// Package repositories defines the storage interfaces the gateway's core
// depends on. The core never assumes a specific backend; it needs only an
// append/query surface plus retention pruning.
package repositories

import (
	"context"
	"time"

	"github.com/grantpulse/agentgate/models"
)

// AuditStore persists audit entries. Implementations must be safe for
// concurrent use: the pipeline appends from many requests at once.
type AuditStore interface {
	// Insert stores one entry. Entries arrive already redacted; stores never
	// see raw secret material.
	Insert(ctx context.Context, entry *models.LogEntry) error

	// DeleteOlderThan drops every entry with a timestamp strictly before
	// cutoff and returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// Query returns entries matching every populated filter field,
	// newest-first by timestamp.
	Query(ctx context.Context, filter models.QueryFilter) ([]*models.LogEntry, error)
}
