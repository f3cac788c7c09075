package workflow

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/dlanger/typecast/pkg/errors"
	"github.com/dlanger/typecast/pkg/infotype"
)

// declSpec is the on-disk shape of a workflow declaration. Inputs name the
// source with the literal "source"; everything else is a step id.
type declSpec struct {
	Name  string     `json:"name" yaml:"name"`
	Final string     `json:"final,omitempty" yaml:"final,omitempty"`
	Steps []stepSpec `json:"steps" yaml:"steps"`
}

type stepSpec struct {
	ID     string   `json:"id" yaml:"id"`
	Agent  string   `json:"agent" yaml:"agent"`
	Inputs []string `json:"inputs" yaml:"inputs"`
	Output string   `json:"output" yaml:"output"`
}

func (s declSpec) toDeclaration() (*Declaration, error) {
	decl := &Declaration{Name: s.Name, Final: s.Final}
	for _, step := range s.Steps {
		refs := make([]Ref, 0, len(step.Inputs))
		for _, in := range step.Inputs {
			if in == SourceID {
				refs = append(refs, Source())
			} else {
				refs = append(refs, StepRef(in))
			}
		}
		decl.Steps = append(decl.Steps, Step{
			ID:     step.ID,
			Agent:  step.Agent,
			Inputs: refs,
			Output: infotype.Tag(step.Output),
		})
	}
	if err := decl.validateShape(); err != nil {
		return nil, err
	}
	return decl, nil
}

func specOf(decl *Declaration) declSpec {
	spec := declSpec{Name: decl.Name, Final: decl.Final}
	for _, step := range decl.Steps {
		inputs := make([]string, 0, len(step.Inputs))
		for _, ref := range step.Inputs {
			inputs = append(inputs, ref.StepID())
		}
		spec.Steps = append(spec.Steps, stepSpec{
			ID:     step.ID,
			Agent:  step.Agent,
			Inputs: inputs,
			Output: string(step.Output),
		})
	}
	return spec
}

// ParseJSON loads a declaration from JSON and validates its shape.
func ParseJSON(data []byte) (*Declaration, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "empty JSON payload", nil)
	}
	var spec declSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "parse json workflow", err)
	}
	return spec.toDeclaration()
}

// ParseYAML loads a declaration from YAML and validates its shape.
func ParseYAML(data []byte) (*Declaration, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "empty YAML payload", nil)
	}
	var spec declSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "parse yaml workflow", err)
	}
	return spec.toDeclaration()
}

// MarshalJSON serializes a declaration. Use pretty for indented output.
func MarshalJSON(decl *Declaration, pretty bool) ([]byte, error) {
	if decl == nil {
		return nil, errors.New(errors.CodeInvalidInput, "declaration is nil", nil)
	}
	if pretty {
		return json.MarshalIndent(specOf(decl), "", "  ")
	}
	return json.Marshal(specOf(decl))
}

// MarshalYAML serializes a declaration to YAML.
func MarshalYAML(decl *Declaration) ([]byte, error) {
	if decl == nil {
		return nil, errors.New(errors.CodeInvalidInput, "declaration is nil", nil)
	}
	return yaml.Marshal(specOf(decl))
}
