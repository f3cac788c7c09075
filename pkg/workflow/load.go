// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dlanger/typecast/pkg/errors"
)

// Load reads a workflow declaration from a YAML or JSON file.
func Load(path string) (*Declaration, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New(errors.CodeInvalidInput, "workflow path is required", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "read workflow file", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return parseAuto(data)
	}
}

func parseAuto(data []byte) (*Declaration, error) {
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		if decl, err := ParseJSON(data); err == nil {
			return decl, nil
		}
	}
	if decl, err := ParseYAML(data); err == nil {
		return decl, nil
	}
	return nil, errors.New(errors.CodeInvalidInput, "unsupported workflow format", nil)
}
