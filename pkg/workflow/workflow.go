// Package workflow is the typed workflow engine: declarations of agent
// pipelines, the static type checker that validates them before anything
// runs, and the sequential executor that threads step outputs into later
// inputs. A declaration is data, validated once and never mutated during
// execution; input references are plain step identifiers, never live object
// references.
package workflow

import (
	"github.com/dlanger/typecast/pkg/errors"
	"github.com/dlanger/typecast/pkg/infotype"
)

// SourceID is the sentinel identifier binding the original source text in
// the type environment and the execution context.
const SourceID = "source"

// Ref points a step input at the original source or at a prior step's output.
type Ref struct {
	step string
}

// Source returns the reference to the original source text.
func Source() Ref { return Ref{} }

// StepRef returns a reference to the output of the step with the given id.
func StepRef(id string) Ref { return Ref{step: id} }

// IsSource reports whether the reference targets the original source.
func (r Ref) IsSource() bool { return r.step == "" }

// StepID returns the referenced step id, or SourceID for the source.
func (r Ref) StepID() string {
	if r.step == "" {
		return SourceID
	}
	return r.step
}

// Step is one node in the pipeline.
type Step struct {
	// ID is unique within the workflow.
	ID string
	// Agent names a contract in the catalog.
	Agent string
	// Inputs are positional references to the source or to earlier steps.
	Inputs []Ref
	// Output is the type tag the author asserts this step produces. It may
	// widen the agent's actual output type but never narrow it.
	Output infotype.Tag
}

// Declaration is a full typed pipeline: an ordered list of steps whose
// declared order is the required topological order, plus the designated
// final step. Immutable once built.
type Declaration struct {
	Name  string
	Steps []Step
	// Final is the id of the designated final step. Empty means the last
	// declared step.
	Final string
}

// FinalStepID resolves the designated final step id.
func (d *Declaration) FinalStepID() string {
	if d.Final != "" {
		return d.Final
	}
	if len(d.Steps) == 0 {
		return ""
	}
	return d.Steps[len(d.Steps)-1].ID
}

// step returns the step with the given id, or nil.
func (d *Declaration) step(id string) *Step {
	for i := range d.Steps {
		if d.Steps[i].ID == id {
			return &d.Steps[i]
		}
	}
	return nil
}

// validateShape checks structural invariants that do not need the catalog or
// the type registry: non-empty, unique step ids, final step exists.
func (d *Declaration) validateShape() error {
	if len(d.Steps) == 0 {
		return errors.New(errors.CodeInvalidInput, "workflow has no steps", nil)
	}
	seen := make(map[string]struct{}, len(d.Steps))
	for _, s := range d.Steps {
		if s.ID == "" {
			return errors.New(errors.CodeInvalidInput, "step id is required", nil)
		}
		if s.ID == SourceID {
			return errors.Newf(errors.CodeInvalidInput, "step id %q is reserved", SourceID)
		}
		if _, dup := seen[s.ID]; dup {
			return errors.Newf(errors.CodeInvalidInput, "duplicate step id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.Agent == "" {
			return errors.Newf(errors.CodeInvalidInput, "step %q names no agent", s.ID)
		}
		if s.Output == "" {
			return errors.Newf(errors.CodeInvalidInput, "step %q declares no output type", s.ID)
		}
	}
	if d.Final != "" {
		if _, ok := seen[d.Final]; !ok {
			return errors.Newf(errors.CodeInvalidInput, "final step %q is not declared", d.Final)
		}
	}
	return nil
}
