// SPDX-License-Identifier: Apache-2.0
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dlanger/typecast/pkg/config"
	"github.com/dlanger/typecast/pkg/workflow"
)

type graphResult struct {
	Format   string `json:"format"`
	Workflow string `json:"workflow"`
	Steps    int    `json:"steps"`
	Content  string `json:"content"`
}

func runGraph(global globalFlags, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	output := fs.String("output", "mermaid", "Output format: mermaid, dot, json")
	path := fs.String("path", "", "Workflow name or path to a YAML/JSON file")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	if *path == "" && fs.NArg() > 0 {
		*path = fs.Arg(0)
	}
	if *path == "" {
		fatal(fmt.Errorf("no workflow specified; use --path <name-or-file>"))
	}
	*path = resolveWorkflow(cfg, *path)

	decl, err := workflow.Load(*path)
	if err != nil {
		fatalTyped(err, global.JSON)
	}

	result := graphResult{
		Format:   *output,
		Workflow: decl.Name,
		Steps:    len(decl.Steps),
	}
	switch *output {
	case "mermaid":
		result.Content = toMermaid(decl)
	case "dot":
		result.Content = toDot(decl)
	case "json":
		data, err := workflow.MarshalJSON(decl, true)
		if err != nil {
			fatal(err)
		}
		result.Content = string(data)
	default:
		fatal(fmt.Errorf("unknown output format %q; use mermaid, dot, or json", *output))
	}

	if global.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fatal(err)
		}
		return
	}
	fmt.Println(result.Content)
}

func toMermaid(decl *workflow.Declaration) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	fmt.Fprintf(&b, "    %s([%s])\n", workflow.SourceID, workflow.SourceID)
	for _, step := range decl.Steps {
		fmt.Fprintf(&b, "    %s[\"%s<br/>%s -> %s\"]\n", step.ID, step.ID, step.Agent, step.Output)
	}
	for _, step := range decl.Steps {
		for _, ref := range step.Inputs {
			fmt.Fprintf(&b, "    %s --> %s\n", ref.StepID(), step.ID)
		}
	}
	return b.String()
}

func toDot(decl *workflow.Declaration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", decl.Name)
	b.WriteString("    rankdir=TB;\n")
	fmt.Fprintf(&b, "    %q [shape=oval];\n", workflow.SourceID)
	for _, step := range decl.Steps {
		fmt.Fprintf(&b, "    %q [shape=box, label=\"%s\\n%s -> %s\"];\n",
			step.ID, step.ID, step.Agent, step.Output)
	}
	for _, step := range decl.Steps {
		for _, ref := range step.Inputs {
			fmt.Fprintf(&b, "    %q -> %q;\n", ref.StepID(), step.ID)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
