// SPDX-License-Identifier: Apache-2.0
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/dlanger/typecast/pkg/errors"
)

// fatalTyped prints a typed error with its code, stage and context before
// exiting, so validation failures read like compiler diagnostics.
func fatalTyped(err error, jsonMode bool) {
	e := errors.AsError(err)
	if e == nil {
		os.Exit(1)
	}

	if jsonMode {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		enc.Encode(e)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "error [%s]", e.Code)
	if e.Stage != "" {
		fmt.Fprintf(os.Stderr, " at stage %s", e.Stage)
	}
	fmt.Fprintf(os.Stderr, ": %s\n", e.Message)
	if e.Err != nil {
		fmt.Fprintf(os.Stderr, "  cause: %v\n", e.Err)
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", k, e.Context[k])
	}
	os.Exit(1)
}
