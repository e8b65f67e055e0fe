// Package memory provides the default, process-lifetime audit store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/grantpulse/agentgate/models"
)

// AuditStore keeps entries in an in-process slice guarded by a mutex.
// It starts empty, grows and prunes during operation, and is discarded at
// process exit; multiple gateway instances do not share it.
type AuditStore struct {
	mu      sync.RWMutex
	entries []*models.LogEntry
}

// NewAuditStore creates an empty in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Insert appends one entry.
func (s *AuditStore) Insert(_ context.Context, entry *models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// DeleteOlderThan drops entries with a timestamp strictly before cutoff.
func (s *AuditStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		if e.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed, nil
}

// Query returns entries matching every populated filter field, newest-first.
func (s *AuditStore) Query(_ context.Context, filter models.QueryFilter) ([]*models.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.LogEntry
	// Entries are appended in time order; walking backwards yields
	// newest-first without a sort.
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if filter.TraceID != "" && e.TraceID != filter.TraceID {
			continue
		}
		if filter.Tenant != "" && e.Tenant != filter.Tenant {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Len reports how many entries are currently stored.
func (s *AuditStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
