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
	"github.com/dlanger/typecast/pkg/pipeline"
	"github.com/dlanger/typecast/pkg/telemetry"
)

func runRun(ctx context.Context, global globalFlags, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	workflowPath := fs.String("workflow", "", "Workflow name or path to a YAML/JSON file")
	inputPath := fs.String("input", "", "Path to the source document (txt, md, pdf, docx)")
	outputDir := fs.String("output", "", "Output directory (overrides config)")
	noAudio := fs.Bool("no-audio", false, "Skip audio rendering")
	traces := fs.Bool("traces", false, "Export traces and metrics")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	if *workflowPath == "" || *inputPath == "" {
		fatal(fmt.Errorf("both --workflow and --input are required"))
	}
	*workflowPath = resolveWorkflow(cfg, *workflowPath)
	if *outputDir != "" {
		cfg.Run.OutputDir = *outputDir
	}
	if *noAudio {
		cfg.TTS.Enabled = false
	}

	// Long runs stay adjustable: edits to the config file re-level the
	// logger while generation and rendering are in flight.
	if global.ConfigPath != "" {
		watcher, err := config.NewWatcher(global.ConfigPath)
		if err != nil {
			fatal(err)
		}
		watcher.OnChange(func(next *config.Config) {
			telemetry.SetLogLevel(next.Log.Level)
		})
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	opts := []pipeline.Option{}
	if *traces {
		shutdown, err := telemetry.Init("typecast", version, telemetry.Config{})
		if err != nil {
			fatal(err)
		}
		defer shutdown(context.Background())

		metrics, err := telemetry.NewPipelineMetrics()
		if err != nil {
			fatal(err)
		}
		opts = append(opts, pipeline.WithMetrics(metrics))
	}

	p, err := pipeline.New(cfg, opts...)
	if err != nil {
		fatalTyped(err, global.JSON)
	}
	defer p.Close()

	summary, err := p.Run(ctx, *workflowPath, *inputPath)
	if err != nil {
		fatalTyped(err, global.JSON)
	}

	if global.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			fatal(err)
		}
		return
	}

	fmt.Printf("run %s completed (%s)\n", summary.RunID, summary.Workflow)
	writer := newTabWriter()
	writeRow(writer, "STEP", "AGENT", "OUTPUT", "DURATION")
	for _, step := range summary.Steps {
		writeRow(writer, step.StepID, step.Agent, string(step.OutputTag),
			step.FinishedAt.Sub(step.StartedAt).Round(10*time.Millisecond).String())
	}
	writer.Flush()
	fmt.Printf("transcript: %s\n", summary.TranscriptPath)
	if summary.DocxPath != "" {
		fmt.Printf("docx:       %s\n", summary.DocxPath)
	}
	if summary.AudioPath != "" {
		fmt.Printf("audio:      %s\n", summary.AudioPath)
	}
}
