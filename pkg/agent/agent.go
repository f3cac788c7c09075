// Package agent defines the contract of a single processing unit in the
// pipeline: the input type tags it requires, the output tag it produces, and
// the prompt it derives from its inputs. Contracts are stateless and reusable
// across workflow steps; the type checker, not Invoke, enforces arity and
// subtyping of inputs.
package agent

import (
	"context"
	"sort"
	"strings"

	"github.com/dlanger/typecast/pkg/errors"
	"github.com/dlanger/typecast/pkg/infotype"
	"github.com/dlanger/typecast/pkg/llm"
)

// PromptFunc derives the chat messages for one invocation from the positional
// input values.
type PromptFunc func(inputs []infotype.Value) []llm.Message

// Contract describes one processing unit.
type Contract struct {
	Name        string
	Description string
	InputTypes  []infotype.Tag
	OutputType  infotype.Tag
	Prompt      PromptFunc
}

// Invoke calls the generation collaborator with the contract's prompt and
// wraps the result as a value tagged with the contract's output type.
// Preconditions on len(inputs) and input subtyping are established by the
// workflow type checker and are not re-checked here. Failures, including an
// empty response, surface as GENERATION_ERROR and propagate unmodified.
func (c *Contract) Invoke(ctx context.Context, provider llm.Provider, model string, inputs []infotype.Value) (infotype.Value, error) {
	resp, err := provider.Chat(ctx, llm.ChatRequest{
		Model:    model,
		Messages: c.Prompt(inputs),
	})
	if err != nil {
		return infotype.Value{}, errors.AsError(err).WithContext("agent", c.Name)
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return infotype.Value{}, errors.Newf(errors.CodeGeneration, "agent %q received an empty response", c.Name)
	}
	return infotype.Text(c.OutputType, content), nil
}

// Catalog is the registry of declared agent contracts for one configuration.
type Catalog struct {
	contracts map[string]*Contract
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{contracts: make(map[string]*Contract)}
}

// Declare registers a contract. Names are unique within a catalog.
func (cat *Catalog) Declare(c Contract) error {
	if c.Name == "" {
		return errors.New(errors.CodeInvalidInput, "agent name is required", nil)
	}
	if c.OutputType == "" {
		return errors.Newf(errors.CodeInvalidInput, "agent %q has no output type", c.Name)
	}
	if c.Prompt == nil {
		return errors.Newf(errors.CodeInvalidInput, "agent %q has no prompt", c.Name)
	}
	if _, exists := cat.contracts[c.Name]; exists {
		return errors.Newf(errors.CodeDuplicateAgent, "agent %q is already declared", c.Name)
	}
	cat.contracts[c.Name] = &c
	return nil
}

// Lookup returns the contract for name, or nil when absent.
func (cat *Catalog) Lookup(name string) *Contract {
	return cat.contracts[name]
}

// Names returns all declared agent names in sorted order.
func (cat *Catalog) Names() []string {
	out := make([]string, 0, len(cat.contracts))
	for name := range cat.contracts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
