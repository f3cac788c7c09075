package workflow

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"
)

// SQLiteAuditStore persists audit events in SQLite.
type SQLiteAuditStore struct {
	db *sql.DB
}

// OpenSQLiteAuditStore opens (or creates) a SQLite database at path and
// ensures the audit schema. The caller owns the returned store's lifetime;
// Close releases the database handle.
func OpenSQLiteAuditStore(path string) (*SQLiteAuditStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store, err := NewSQLiteAuditStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteAuditStore wraps an existing database handle and ensures schema.
func NewSQLiteAuditStore(db *sql.DB) (*SQLiteAuditStore, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureAuditSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteAuditStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteAuditStore) Close() error {
	return s.db.Close()
}

// Record stores a single audit event.
func (s *SQLiteAuditStore) Record(ctx context.Context, event AuditEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workflow_audit_events (
			workflow, run_id, step_id, agent, status, output_tag, error_text, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.Workflow,
		event.RunID,
		event.StepID,
		event.Agent,
		event.Status,
		event.OutputTag,
		event.Error,
		event.StartedAt.UTC(),
		event.FinishedAt.UTC(),
	)
	return err
}

// List returns audit events matching the filter.
func (s *SQLiteAuditStore) List(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	query := `
		SELECT workflow, run_id, step_id, agent, status, output_tag, error_text, started_at, finished_at
		FROM workflow_audit_events
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter.Workflow != "" {
		addFilter("workflow = ?", filter.Workflow)
	}
	if filter.RunID != "" {
		addFilter("run_id = ?", filter.RunID)
	}
	if filter.StepID != "" {
		addFilter("step_id = ?", filter.StepID)
	}
	if filter.Status != "" {
		addFilter("status = ?", filter.Status)
	}
	query += where + " ORDER BY started_at ASC, rowid ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var (
			event    AuditEvent
			started  sql.NullTime
			finished sql.NullTime
		)
		if err := rows.Scan(
			&event.Workflow,
			&event.RunID,
			&event.StepID,
			&event.Agent,
			&event.Status,
			&event.OutputTag,
			&event.Error,
			&started,
			&finished,
		); err != nil {
			return nil, err
		}
		if started.Valid {
			event.StartedAt = started.Time
		}
		if finished.Valid {
			event.FinishedAt = finished.Time
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func ensureAuditSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_audit_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			workflow TEXT NOT NULL,
			run_id TEXT,
			step_id TEXT NOT NULL,
			agent TEXT NOT NULL,
			status TEXT NOT NULL,
			output_tag TEXT,
			error_text TEXT,
			started_at TIMESTAMP,
			finished_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_workflow_audit_workflow ON workflow_audit_events(workflow);
		CREATE INDEX IF NOT EXISTS idx_workflow_audit_run ON workflow_audit_events(run_id);
		CREATE INDEX IF NOT EXISTS idx_workflow_audit_status ON workflow_audit_events(status);
	`)
	return err
}
