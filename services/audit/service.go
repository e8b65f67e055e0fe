// Package audit maintains the append-only, secret-redacting audit trail.
package audit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/models"
	"github.com/grantpulse/agentgate/repositories"
)

// Service wraps an AuditStore with the gateway's two invariants: entries are
// redacted before they become visible, and every append prunes entries older
// than the retention horizon. Pruning is inline on writes; an idle gateway
// never proactively prunes.
type Service struct {
	store     repositories.AuditStore
	retention time.Duration
	logger    *zap.Logger
}

// NewService creates an audit Service over the given store.
func NewService(store repositories.AuditStore, retention time.Duration, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		retention: retention,
		logger:    logger,
	}
}

// Append redacts the entry and stores it, then prunes expired entries.
// Redaction happens here, at write time, so no read path can see raw
// secrets regardless of backend.
func (s *Service) Append(ctx context.Context, entry *models.LogEntry) error {
	entry.Details = RedactDetails(entry.Details)

	if err := s.store.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	cutoff := time.Now().Add(-s.retention)
	removed, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		// The entry is stored; a pruning failure is not worth failing the
		// request over.
		s.logger.Warn("audit retention pruning failed", zap.Error(err))
		return nil
	}
	if removed > 0 {
		s.logger.Debug("pruned expired audit entries",
			zap.Int("removed", removed),
			zap.Time("cutoff", cutoff))
	}
	return nil
}

// Query returns redacted entries matching every populated filter field,
// newest-first.
func (s *Service) Query(ctx context.Context, filter models.QueryFilter) ([]*models.LogEntry, error) {
	entries, err := s.store.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	return entries, nil
}
