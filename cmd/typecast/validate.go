// SPDX-License-Identifier: Apache-2.0
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/dlanger/typecast/pkg/config"
	"github.com/dlanger/typecast/pkg/pipeline"
)

type validateResult struct {
	Workflow string `json:"workflow"`
	Path     string `json:"path"`
	Steps    int    `json:"steps"`
	Final    string `json:"final"`
	Valid    bool   `json:"valid"`
}

func runValidate(global globalFlags, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
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

	p, err := pipeline.New(cfg)
	if err != nil {
		fatalTyped(err, global.JSON)
	}
	defer p.Close()

	decl, err := p.Validate(*path)
	if err != nil {
		fatalTyped(err, global.JSON)
	}

	result := validateResult{
		Workflow: decl.Name,
		Path:     *path,
		Steps:    len(decl.Steps),
		Final:    decl.FinalStepID(),
		Valid:    true,
	}
	if global.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fatal(err)
		}
		return
	}
	fmt.Printf("workflow %q: %d steps, final step %q, type-checks\n",
		result.Workflow, result.Steps, result.Final)
}
