package workflow

import (
	"context"
	"sync"
	"time"
)

// AuditEvent records one executed step of a run.
type AuditEvent struct {
	Workflow   string    `json:"workflow"`
	RunID      string    `json:"run_id"`
	StepID     string    `json:"step_id"`
	Agent      string    `json:"agent"`
	Status     string    `json:"status"`
	OutputTag  string    `json:"output_tag,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// AuditStore persists workflow audit events.
type AuditStore interface {
	Record(ctx context.Context, event AuditEvent) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEvent, error)
}

// AuditFilter limits audit event queries.
type AuditFilter struct {
	Workflow string
	RunID    string
	StepID   string
	Status   string
	Limit    int
}

// MemoryAuditStore keeps audit events in memory.
type MemoryAuditStore struct {
	mu     sync.Mutex
	events []AuditEvent
}

// NewMemoryAuditStore returns an in-memory audit store.
func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{}
}

// Record appends an audit event.
func (s *MemoryAuditStore) Record(_ context.Context, event AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// List returns filtered audit events in insertion order.
func (s *MemoryAuditStore) List(_ context.Context, filter AuditFilter) ([]AuditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEvent, 0, len(s.events))
	for _, ev := range s.events {
		if !filter.matches(ev) {
			continue
		}
		out = append(out, ev)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (f AuditFilter) matches(ev AuditEvent) bool {
	if f.Workflow != "" && ev.Workflow != f.Workflow {
		return false
	}
	if f.RunID != "" && ev.RunID != f.RunID {
		return false
	}
	if f.StepID != "" && ev.StepID != f.StepID {
		return false
	}
	if f.Status != "" && ev.Status != f.Status {
		return false
	}
	return true
}
