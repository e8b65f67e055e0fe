// Package postgres provides the optional persistent audit store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/models"
)

// AuditStore persists audit entries in PostgreSQL. Entries arrive already
// redacted; the table never holds raw secret material.
type AuditStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditStore creates an AuditStore over an existing connection.
func NewAuditStore(db *sql.DB, logger *zap.Logger) *AuditStore {
	return &AuditStore{db: db, logger: logger}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (*AuditStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("audit database ping failed: %w", err)
	}
	return NewAuditStore(db, logger), nil
}

// InitSchema creates the audit table when it does not exist yet.
func (s *AuditStore) InitSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_entries (
			id UUID PRIMARY KEY,
			trace_id TEXT NOT NULL,
			tenant TEXT NOT NULL,
			action TEXT NOT NULL,
			mode TEXT NOT NULL,
			status TEXT NOT NULL,
			duration_ms BIGINT NOT NULL,
			notes JSONB,
			error_message TEXT,
			details JSONB,
			timestamp TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}
	return nil
}

// Insert stores one entry.
func (s *AuditStore) Insert(ctx context.Context, entry *models.LogEntry) error {
	notes, err := json.Marshal(entry.Notes)
	if err != nil {
		return fmt.Errorf("failed to marshal notes: %w", err)
	}
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}

	query := `
		INSERT INTO audit_entries (
			id, trace_id, tenant, action, mode, status,
			duration_ms, notes, error_message, details, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		entry.ID,
		entry.TraceID,
		entry.Tenant,
		string(entry.Action),
		string(entry.Mode),
		string(entry.Status),
		entry.DurationMs,
		notes,
		entry.ErrorMessage,
		details,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	s.logger.Debug("audit entry inserted",
		zap.String("id", entry.ID.String()),
		zap.String("trace_id", entry.TraceID))
	return nil
}

// DeleteOlderThan drops entries with a timestamp strictly before cutoff.
func (s *AuditStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM audit_entries WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get pruned row count: %w", err)
	}
	return int(affected), nil
}

// Query returns entries matching every populated filter field, newest-first.
func (s *AuditStore) Query(ctx context.Context, filter models.QueryFilter) ([]*models.LogEntry, error) {
	query := `
		SELECT id, trace_id, tenant, action, mode, status,
		       duration_ms, notes, error_message, details, timestamp
		FROM audit_entries
		WHERE 1=1
	`
	var args []interface{}
	addClause := func(column, value string) {
		args = append(args, value)
		query += fmt.Sprintf(" AND %s = $%d", column, len(args))
	}
	if filter.TraceID != "" {
		addClause("trace_id", filter.TraceID)
	}
	if filter.Tenant != "" {
		addClause("tenant", filter.Tenant)
	}
	if filter.Action != "" {
		addClause("action", string(filter.Action))
	}
	if filter.Status != "" {
		addClause("status", string(filter.Status))
	}
	query += " ORDER BY timestamp DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.LogEntry
	for rows.Next() {
		entry := &models.LogEntry{}
		var action, mode, status string
		var notes, details []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.TraceID,
			&entry.Tenant,
			&action,
			&mode,
			&status,
			&entry.DurationMs,
			&notes,
			&entry.ErrorMessage,
			&details,
			&entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Action = models.ActionName(action)
		entry.Mode = models.ExecutionMode(mode)
		entry.Status = models.EntryStatus(status)
		if len(notes) > 0 {
			if err := json.Unmarshal(notes, &entry.Notes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal notes: %w", err)
			}
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, nil
}

// Close closes the underlying connection.
func (s *AuditStore) Close() error {
	return s.db.Close()
}
