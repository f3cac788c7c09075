// SPDX-License-Identifier: Apache-2.0
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dlanger/typecast/pkg/agent"
	"github.com/dlanger/typecast/pkg/infotype"
)

type agentInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Inputs      []string `json:"inputs"`
	Output      string   `json:"output"`
}

type typeInfo struct {
	Tag    string `json:"tag"`
	Parent string `json:"parent,omitempty"`
}

type agentsResult struct {
	Agents []agentInfo `json:"agents"`
	Types  []typeInfo  `json:"types"`
}

func runAgents(global globalFlags, args []string) {
	fs := flag.NewFlagSet("agents", flag.ExitOnError)
	showTypes := fs.Bool("types", false, "Also list the type hierarchy")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}

	catalog := agent.Builtin()
	types := infotype.Builtin()

	var result agentsResult
	for _, name := range catalog.Names() {
		c := catalog.Lookup(name)
		inputs := make([]string, len(c.InputTypes))
		for i, t := range c.InputTypes {
			inputs[i] = string(t)
		}
		result.Agents = append(result.Agents, agentInfo{
			Name:        c.Name,
			Description: c.Description,
			Inputs:      inputs,
			Output:      string(c.OutputType),
		})
	}
	for _, tag := range types.Tags() {
		result.Types = append(result.Types, typeInfo{Tag: string(tag), Parent: string(types.Parent(tag))})
	}

	if global.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fatal(err)
		}
		return
	}

	writer := newTabWriter()
	writeRow(writer, "AGENT", "INPUTS", "OUTPUT")
	for _, a := range result.Agents {
		writeRow(writer, a.Name, strings.Join(a.Inputs, ", "), a.Output)
	}
	writer.Flush()

	if *showTypes {
		fmt.Println()
		writer = newTabWriter()
		writeRow(writer, "TYPE", "PARENT")
		for _, t := range result.Types {
			parent := t.Parent
			if parent == "" {
				parent = "-"
			}
			writeRow(writer, t.Tag, parent)
		}
		writer.Flush()
	}
}
