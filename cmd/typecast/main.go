// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/dlanger/typecast/pkg/config"
	"github.com/dlanger/typecast/pkg/telemetry"
)

const version = "0.3.0"

type globalFlags struct {
	ConfigPath string
	JSON       bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		fatal(fmt.Errorf("load config: %w", err))
	}
	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	switch args[0] {
	case "validate":
		runValidate(global, cfg, args[1:])
	case "run":
		runRun(ctx, global, cfg, args[1:])
	case "agents":
		runAgents(global, args[1:])
	case "graph":
		runGraph(global, cfg, args[1:])
	case "audit":
		runAudit(ctx, global, cfg, args[1:])
	case "version":
		printVersion(global)
	case "help":
		printUsage()
	default:
		fatal(fmt.Errorf("unknown command %q", args[0]))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var flags globalFlags
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--json":
			flags.JSON = true
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --config")
			}
			flags.ConfigPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			return flags, nil, fmt.Errorf("unknown global flag %q", arg)
		}
	}
	return flags, nil, nil
}

// resolveWorkflow maps a bare workflow name like "irapod" to a declaration
// file under the configured workflows directory. Arguments naming an
// existing file, or carrying an extension, are used as given.
func resolveWorkflow(cfg *config.Config, arg string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	if filepath.Ext(arg) != "" {
		return arg
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		candidate := filepath.Join(cfg.Run.WorkflowsDir, arg+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return arg
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
}

func writeRow(writer *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(writer, strings.Join(cols, "\t"))
}

func printVersion(global globalFlags) {
	if global.JSON {
		fmt.Printf("{\"version\":%q}\n", version)
		return
	}
	fmt.Println(version)
}

func printUsage() {
	fmt.Print(`typecast - typed agent workflows that turn documents into podcasts

Usage:
  typecast [global flags] <command> [command flags]

Commands:
  validate   Type-check a workflow declaration without running it
  run        Execute a workflow against a source document
  agents     List the agent catalog and the type hierarchy
  graph      Render a workflow declaration as mermaid, dot, or json
  audit      Query recorded step events
  version    Print the version
  help       Show this help

Global flags:
  --config <path>   Configuration file (YAML)
  --json            Emit machine-readable output
  -h, --help        Show this help

Examples:
  typecast validate --path configs/irapod.yaml
  typecast run --workflow configs/irapod.yaml --input paper.pdf
  typecast graph --path configs/irapod.yaml --output mermaid
  typecast audit --workflow irapod --status failed
`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
