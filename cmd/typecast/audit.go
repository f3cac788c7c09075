// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dlanger/typecast/pkg/config"
	"github.com/dlanger/typecast/pkg/workflow"
)

func runAudit(ctx context.Context, global globalFlags, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	workflowName := fs.String("workflow", "", "Filter by workflow name")
	runID := fs.String("run", "", "Filter by run id")
	status := fs.String("status", "", "Filter by status (completed, failed)")
	limit := fs.Int("limit", 50, "Maximum events to show")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}

	if cfg.Audit.Backend != "sqlite" {
		fatal(fmt.Errorf("audit queries need the sqlite backend; set audit.backend: sqlite"))
	}
	store, err := workflow.OpenSQLiteAuditStore(cfg.Audit.Path)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	events, err := store.List(ctx, workflow.AuditFilter{
		Workflow: *workflowName,
		RunID:    *runID,
		Status:   *status,
		Limit:    *limit,
	})
	if err != nil {
		fatal(err)
	}

	if global.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(events); err != nil {
			fatal(err)
		}
		return
	}

	if len(events) == 0 {
		fmt.Println("no audit events")
		return
	}
	writer := newTabWriter()
	writeRow(writer, "TIME", "WORKFLOW", "RUN", "STEP", "AGENT", "STATUS", "OUTPUT")
	for _, ev := range events {
		runShort := ev.RunID
		if len(runShort) > 8 {
			runShort = runShort[:8]
		}
		writeRow(writer,
			ev.StartedAt.Format(time.RFC3339),
			ev.Workflow,
			runShort,
			ev.StepID,
			ev.Agent,
			ev.Status,
			ev.OutputTag,
		)
	}
	writer.Flush()
}
