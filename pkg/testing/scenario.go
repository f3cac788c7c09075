// SPDX-License-Identifier: Apache-2.0

// Package testing provides helpers for exercising workflows in tests:
// scripted providers with request capture, declarative run scenarios, and
// assertion helpers.
package testing

import (
	"context"
	"strings"
	"testing"

	"github.com/dlanger/typecast/pkg/agent"
	"github.com/dlanger/typecast/pkg/errors"
	"github.com/dlanger/typecast/pkg/infotype"
	"github.com/dlanger/typecast/pkg/workflow"
)

// Scenario runs a workflow declaration against scripted responses and
// checks expectations on the result.
type Scenario struct {
	name         string
	decl         *workflow.Declaration
	catalog      *agent.Catalog
	types        *infotype.Registry
	source       string
	provider     *ScriptedProvider
	expectations []Expectation
}

// Expectation verifies one condition on a finished run.
type Expectation interface {
	Check(result *workflow.Result, err error) error
	Description() string
}

// NewScenario creates a scenario over the built-in catalog and types.
func NewScenario(name string, decl *workflow.Declaration) *Scenario {
	return &Scenario{
		name:     name,
		decl:     decl,
		catalog:  agent.Builtin(),
		types:    infotype.Builtin(),
		source:   "source text",
		provider: NewScriptedProvider(),
	}
}

// WithCatalog substitutes the agent catalog.
func (s *Scenario) WithCatalog(catalog *agent.Catalog) *Scenario {
	s.catalog = catalog
	return s
}

// WithSource sets the source document text.
func (s *Scenario) WithSource(text string) *Scenario {
	s.source = text
	return s
}

// RespondWith queues one scripted reply per call, in step order.
func (s *Scenario) RespondWith(contents ...string) *Scenario {
	for _, c := range contents {
		s.provider.AddResponse(c)
	}
	return s
}

// FailWith queues an error reply.
func (s *Scenario) FailWith(err error) *Scenario {
	s.provider.AddErrorResponse(err)
	return s
}

// Expect adds an expectation.
func (s *Scenario) Expect(e Expectation) *Scenario {
	s.expectations = append(s.expectations, e)
	return s
}

// Run executes the scenario and reports every failed expectation.
func (s *Scenario) Run(t *testing.T) *workflow.Result {
	t.Helper()

	exec := workflow.NewExecutor(s.catalog, s.types, s.provider, "scenario-model")
	result, err := exec.Run(context.Background(), s.decl, infotype.Text(infotype.SourceText, s.source))

	for _, e := range s.expectations {
		if checkErr := e.Check(result, err); checkErr != nil {
			t.Errorf("scenario %q: %s: %v", s.name, e.Description(), checkErr)
		}
	}
	return result
}

// Provider exposes the scripted provider for request inspection.
func (s *Scenario) Provider() *ScriptedProvider {
	return s.provider
}

type expectFunc struct {
	desc string
	fn   func(result *workflow.Result, err error) error
}

func (e expectFunc) Check(result *workflow.Result, err error) error { return e.fn(result, err) }
func (e expectFunc) Description() string                            { return e.desc }

// ExpectCompleted asserts the run finished successfully.
func ExpectCompleted() Expectation {
	return expectFunc{
		desc: "run completes",
		fn: func(result *workflow.Result, err error) error {
			if err != nil {
				return err
			}
			if result.State != workflow.StateCompleted {
				return errors.Newf(errors.CodeInternal, "state = %s", result.State)
			}
			return nil
		},
	}
}

// ExpectFailedWith asserts the run failed with the given error code.
func ExpectFailedWith(code errors.ErrorCode) Expectation {
	return expectFunc{
		desc: "run fails with " + string(code),
		fn: func(_ *workflow.Result, err error) error {
			if !errors.IsCode(err, code) {
				return errors.Newf(errors.CodeInternal, "got %v", err)
			}
			return nil
		},
	}
}

// ExpectOutputContains asserts the final value contains the substring.
func ExpectOutputContains(substr string) Expectation {
	return expectFunc{
		desc: "output contains " + substr,
		fn: func(result *workflow.Result, err error) error {
			if err != nil {
				return err
			}
			if !strings.Contains(result.Output.Text(), substr) {
				return errors.Newf(errors.CodeInternal, "output = %q", result.Output.Text())
			}
			return nil
		},
	}
}

// ExpectOutputTag asserts the tag of the final value.
func ExpectOutputTag(tag infotype.Tag) Expectation {
	return expectFunc{
		desc: "output tagged " + string(tag),
		fn: func(result *workflow.Result, err error) error {
			if err != nil {
				return err
			}
			if result.Output.Tag != tag {
				return errors.Newf(errors.CodeInternal, "tag = %s", result.Output.Tag)
			}
			return nil
		},
	}
}

// ExpectStepCount asserts how many steps actually executed.
func ExpectStepCount(n int) Expectation {
	return expectFunc{
		desc: "step count",
		fn: func(result *workflow.Result, _ error) error {
			if len(result.Steps) != n {
				return errors.Newf(errors.CodeInternal, "steps = %d, want %d", len(result.Steps), n)
			}
			return nil
		},
	}
}
