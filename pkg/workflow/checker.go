package workflow

import (
	"github.com/dlanger/typecast/pkg/agent"
	"github.com/dlanger/typecast/pkg/errors"
	"github.com/dlanger/typecast/pkg/infotype"
)

// Check statically validates a declaration against the agent catalog and the
// type hierarchy. It is a single forward pass in declared order over a type
// environment seeded with the source binding; the first violation rejects the
// whole workflow. Check is pure: it mutates nothing and gives the same answer
// every time for the same declaration.
func Check(decl *Declaration, catalog *agent.Catalog, types *infotype.Registry) error {
	if err := decl.validateShape(); err != nil {
		return err
	}

	// Positions let us tell a forward reference apart from a reference that
	// does not exist at all.
	position := make(map[string]int, len(decl.Steps))
	for i, s := range decl.Steps {
		position[s.ID] = i
	}

	env := map[string]infotype.Tag{SourceID: infotype.SourceText}

	for i, step := range decl.Steps {
		contract := catalog.Lookup(step.Agent)
		if contract == nil {
			return errors.Newf(errors.CodeUnknownAgent, "step %q references unknown agent %q", step.ID, step.Agent).
				WithContext("step_id", step.ID)
		}

		if len(step.Inputs) != len(contract.InputTypes) {
			return errors.Newf(errors.CodeTypeMismatch,
				"step %q: agent %q expects %d inputs, got %d",
				step.ID, step.Agent, len(contract.InputTypes), len(step.Inputs)).
				WithContext("step_id", step.ID)
		}

		for pos, ref := range step.Inputs {
			bound, ok := env[ref.StepID()]
			if !ok {
				if later, declared := position[ref.StepID()]; declared && later >= i {
					return errors.Newf(errors.CodeForwardReference,
						"step %q input %d references step %q declared later", step.ID, pos, ref.StepID()).
						WithContext("step_id", step.ID)
				}
				return errors.Newf(errors.CodeUnboundReference,
					"step %q input %d references unknown output %q", step.ID, pos, ref.StepID()).
					WithContext("step_id", step.ID)
			}
			if !types.IsSubtype(bound, contract.InputTypes[pos]) {
				return errors.Newf(errors.CodeTypeMismatch,
					"step %q input %d: expected %s, got %s", step.ID, pos, contract.InputTypes[pos], bound).
					WithContext("step_id", step.ID).
					WithContext("expected", string(contract.InputTypes[pos])).
					WithContext("actual", string(bound))
			}
		}

		if !types.Known(step.Output) {
			return errors.Newf(errors.CodeInvalidInput,
				"step %q declares unknown type tag %q", step.ID, step.Output).
				WithContext("step_id", step.ID)
		}

		// A step may widen its advertised output to a supertype of what its
		// agent produces, never narrow it.
		if !types.IsSubtype(contract.OutputType, step.Output) {
			return errors.Newf(errors.CodeTypeMismatch,
				"step %q declares output %s but agent %q produces %s",
				step.ID, step.Output, step.Agent, contract.OutputType).
				WithContext("step_id", step.ID).
				WithContext("expected", string(step.Output)).
				WithContext("actual", string(contract.OutputType))
		}

		env[step.ID] = step.Output
	}

	finalTag := env[decl.FinalStepID()]
	if !types.IsSubtype(finalTag, infotype.Transcript) {
		return errors.Newf(errors.CodeInvalidWorkflowOutput,
			"final step %q produces %s, want %s or a subtype", decl.FinalStepID(), finalTag, infotype.Transcript).
			WithContext("step_id", decl.FinalStepID()).
			WithContext("actual", string(finalTag))
	}

	return nil
}
