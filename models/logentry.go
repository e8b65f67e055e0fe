package models

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus classifies the outcome recorded by a log entry.
type EntryStatus string

const (
	StatusSuccess EntryStatus = "success"
	StatusError   EntryStatus = "error"
	StatusWarning EntryStatus = "warning"
)

// LogEntry is one immutable audit record per pipeline invocation.
// Details is redacted at append time; nothing readable through the store ever
// contains raw secret material.
type LogEntry struct {
	ID           uuid.UUID              `json:"id"`
	TraceID      string                 `json:"trace_id"`
	Tenant       string                 `json:"tenant"`
	Action       ActionName             `json:"action"`
	Mode         ExecutionMode          `json:"mode"`
	Status       EntryStatus            `json:"status"`
	DurationMs   int64                  `json:"duration_ms"`
	Notes        []string               `json:"notes,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// NewLogEntry creates a LogEntry stamped with a fresh ID and the current time.
func NewLogEntry(traceID, tenant string, action ActionName, mode ExecutionMode, status EntryStatus) *LogEntry {
	return &LogEntry{
		ID:        uuid.New(),
		TraceID:   traceID,
		Tenant:    tenant,
		Action:    action,
		Mode:      mode,
		Status:    status,
		Timestamp: time.Now(),
	}
}

// WithDuration records how long the invocation took.
func (e *LogEntry) WithDuration(d time.Duration) *LogEntry {
	e.DurationMs = d.Milliseconds()
	return e
}

// WithNotes attaches advisory notes from the executor.
func (e *LogEntry) WithNotes(notes []string) *LogEntry {
	e.Notes = notes
	return e
}

// WithError records the failure message for error entries.
func (e *LogEntry) WithError(msg string) *LogEntry {
	e.ErrorMessage = msg
	return e
}

// WithDetails attaches free-form structured context. The audit store redacts
// sensitive fields before the entry becomes queryable.
func (e *LogEntry) WithDetails(details map[string]interface{}) *LogEntry {
	e.Details = details
	return e
}

// QueryFilter selects audit entries; zero-value fields are ignored and the
// populated ones are combined conjunctively.
type QueryFilter struct {
	TraceID string
	Tenant  string
	Action  ActionName
	Status  EntryStatus
}
