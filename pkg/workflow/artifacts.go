// SPDX-License-Identifier: Apache-2.0
package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dlanger/typecast/pkg/infotype"
)

// ArtifactWriter persists intermediate step outputs for inspection. Writers
// are observational; a failed write is logged by the executor and never
// fails the run.
type ArtifactWriter interface {
	WriteStep(index int, step Step, inputs []infotype.Value, output infotype.Value) error
}

// DirArtifactWriter writes one JSON file per step into a directory, named
// step<N>_<agent>_output.json so a sequential listing mirrors run order.
type DirArtifactWriter struct {
	Dir string
}

// NewDirArtifactWriter creates the directory if needed and returns a writer
// rooted at it.
func NewDirArtifactWriter(dir string) (*DirArtifactWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirArtifactWriter{Dir: dir}, nil
}

type stepArtifact struct {
	StepID    string   `json:"step_id"`
	Agent     string   `json:"agent"`
	InputTags []string `json:"input_tags"`
	OutputTag string   `json:"output_tag"`
	Output    string   `json:"output"`
}

// WriteStep records one step's inputs and output.
func (w *DirArtifactWriter) WriteStep(index int, step Step, inputs []infotype.Value, output infotype.Value) error {
	tags := make([]string, len(inputs))
	for i, in := range inputs {
		tags[i] = string(in.Tag)
	}
	artifact := stepArtifact{
		StepID:    step.ID,
		Agent:     step.Agent,
		InputTags: tags,
		OutputTag: string(output.Tag),
		Output:    output.Text(),
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return err
	}
	name := fmt.Sprintf("step%d_%s_output.json", index+1, step.Agent)
	return os.WriteFile(filepath.Join(w.Dir, name), data, 0o644)
}
