package workflow

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func sampleEvents() []AuditEvent {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []AuditEvent{
		{Workflow: "irapod", RunID: "r1", StepID: "narrative", Agent: "narrative", Status: "completed", OutputTag: "Narrative", StartedAt: base, FinishedAt: base.Add(time.Second)},
		{Workflow: "irapod", RunID: "r1", StepID: "acts", Agent: "acts", Status: "failed", Error: "boom", StartedAt: base.Add(2 * time.Second), FinishedAt: base.Add(3 * time.Second)},
		{Workflow: "simple", RunID: "r2", StepID: "script", Agent: "simple_script", Status: "completed", OutputTag: "Transcript", StartedAt: base.Add(4 * time.Second), FinishedAt: base.Add(5 * time.Second)},
	}
}

func testAuditStore(t *testing.T, store AuditStore) {
	t.Helper()
	ctx := context.Background()
	for _, ev := range sampleEvents() {
		if err := store.Record(ctx, ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	all, err := store.List(ctx, AuditFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("events = %d, want 3", len(all))
	}
	if all[0].StepID != "narrative" {
		t.Fatalf("order wrong: %+v", all)
	}

	byWorkflow, err := store.List(ctx, AuditFilter{Workflow: "irapod"})
	if err != nil {
		t.Fatalf("list workflow: %v", err)
	}
	if len(byWorkflow) != 2 {
		t.Fatalf("irapod events = %d, want 2", len(byWorkflow))
	}

	failed, err := store.List(ctx, AuditFilter{Status: "failed"})
	if err != nil {
		t.Fatalf("list status: %v", err)
	}
	if len(failed) != 1 || failed[0].Error != "boom" {
		t.Fatalf("failed events wrong: %+v", failed)
	}

	limited, err := store.List(ctx, AuditFilter{Limit: 1})
	if err != nil {
		t.Fatalf("list limit: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit ignored: %d events", len(limited))
	}
}

func TestMemoryAuditStore(t *testing.T) {
	testAuditStore(t, NewMemoryAuditStore())
}

func TestSQLiteAuditStore(t *testing.T) {
	store, err := OpenSQLiteAuditStore(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	testAuditStore(t, store)
}
