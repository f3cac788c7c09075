package workflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dlanger/typecast/pkg/agent"
	"github.com/dlanger/typecast/pkg/errors"
	"github.com/dlanger/typecast/pkg/infotype"
	"github.com/dlanger/typecast/pkg/llm"
)

func twoStepDecl() *Declaration {
	return &Declaration{
		Name: "two-step",
		Steps: []Step{
			{ID: "draft", Agent: "scriptwriter", Inputs: []Ref{Source()}, Output: infotype.Transcript},
			{ID: "final", Agent: "expand", Inputs: []Ref{StepRef("draft")}, Output: infotype.Transcript},
		},
	}
}

func twoStepCatalog(t *testing.T) *agent.Catalog {
	return testCatalog(t,
		agent.Contract{
			Name:       "scriptwriter",
			InputTypes: []infotype.Tag{infotype.SourceText},
			OutputType: infotype.Transcript,
		},
		agent.Contract{
			Name:       "expand",
			InputTypes: []infotype.Tag{infotype.Transcript},
			OutputType: infotype.Transcript,
		},
	)
}

func TestExecutorRunsStepsInOrder(t *testing.T) {
	provider := &llm.MockProvider{
		ChatFunc: func(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
			// Echo the prompt back so threading is visible in outputs.
			return &llm.ChatResponse{Content: "got:" + req.Messages[len(req.Messages)-1].Content}, nil
		},
	}
	exec := NewExecutor(twoStepCatalog(t), infotype.Builtin(), provider, "test-model")

	result, err := exec.Run(context.Background(), twoStepDecl(), infotype.Text(infotype.SourceText, "hello"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.State != StateCompleted {
		t.Fatalf("state = %s, want %s", result.State, StateCompleted)
	}
	if result.RunID == "" {
		t.Fatal("run id must be set")
	}
	if len(result.Steps) != 2 {
		t.Fatalf("steps recorded = %d, want 2", len(result.Steps))
	}
	if result.Steps[0].StepID != "draft" || result.Steps[1].StepID != "final" {
		t.Fatalf("step order wrong: %+v", result.Steps)
	}
	if result.Output.Tag != infotype.Transcript {
		t.Fatalf("output tag = %s, want %s", result.Output.Tag, infotype.Transcript)
	}
	// The second step saw the first step's output, not the source.
	if !strings.Contains(result.Output.Text(), "got:") || !strings.Contains(result.Output.Text(), "hello") {
		t.Fatalf("output does not thread step values: %q", result.Output.Text())
	}
}

func TestExecutorRechecksDeclaration(t *testing.T) {
	provider := &llm.MockProvider{Response: "never called"}
	exec := NewExecutor(twoStepCatalog(t), infotype.Builtin(), provider, "test-model")

	bad := &Declaration{
		Name:  "bad",
		Steps: []Step{{ID: "s1", Agent: "ghost", Inputs: []Ref{Source()}, Output: infotype.Transcript}},
	}
	result, err := exec.Run(context.Background(), bad, infotype.Text(infotype.SourceText, "x"))
	if !errors.IsCode(err, errors.CodeUnknownAgent) {
		t.Fatalf("expected UNKNOWN_AGENT, got %v", err)
	}
	if result.State != StateNotStarted {
		t.Fatalf("invalid declaration must never start, state = %s", result.State)
	}
	if len(provider.Calls) != 0 {
		t.Fatalf("provider must not be called, got %d calls", len(provider.Calls))
	}
}

func TestExecutorRejectsWrongSourceTag(t *testing.T) {
	exec := NewExecutor(twoStepCatalog(t), infotype.Builtin(), &llm.MockProvider{Response: "x"}, "m")
	_, err := exec.Run(context.Background(), twoStepDecl(), infotype.Text(infotype.Transcript, "x"))
	if !errors.IsCode(err, errors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestExecutorFailsOnGenerationError(t *testing.T) {
	calls := 0
	provider := &llm.MockProvider{
		ChatFunc: func(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
			calls++
			if calls == 2 {
				return nil, errors.Newf(errors.CodeGeneration, "model unavailable")
			}
			return &llm.ChatResponse{Content: "ok"}, nil
		},
	}
	audit := NewMemoryAuditStore()
	exec := NewExecutor(twoStepCatalog(t), infotype.Builtin(), provider, "m", WithAuditStore(audit))

	result, err := exec.Run(context.Background(), twoStepDecl(), infotype.Text(infotype.SourceText, "x"))
	if !errors.IsCode(err, errors.CodeGeneration) {
		t.Fatalf("expected GENERATION, got %v", err)
	}
	e := errors.AsError(err)
	if e.Context["step_id"] != "final" {
		t.Fatalf("failure must name the failing step, got %v", e.Context)
	}
	if result.State != StateFailed {
		t.Fatalf("state = %s, want %s", result.State, StateFailed)
	}
	if calls != 2 {
		t.Fatalf("execution must stop at first failure, calls = %d", calls)
	}

	events, err := audit.List(context.Background(), AuditFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("audit events = %d, want 2", len(events))
	}
	if events[0].Status != string(StateCompleted) || events[1].Status != string(StateFailed) {
		t.Fatalf("audit statuses wrong: %+v", events)
	}
	if events[1].Error == "" {
		t.Fatal("failed event must carry the error text")
	}
}

func TestExecutorWidensDeclaredOutput(t *testing.T) {
	cat := testCatalog(t, agent.Contract{
		Name:       "personalize",
		InputTypes: []infotype.Tag{infotype.SourceText},
		OutputType: infotype.PersonalizedTranscript,
	})
	decl := &Declaration{
		Name: "widen",
		Steps: []Step{
			{ID: "s1", Agent: "personalize", Inputs: []Ref{Source()}, Output: infotype.Transcript},
		},
	}
	exec := NewExecutor(cat, infotype.Builtin(), &llm.MockProvider{Response: "script"}, "m")
	result, err := exec.Run(context.Background(), decl, infotype.Text(infotype.SourceText, "x"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// The context binds the declared tag, matching the checker's view.
	if result.Output.Tag != infotype.Transcript {
		t.Fatalf("output tag = %s, want declared %s", result.Output.Tag, infotype.Transcript)
	}
}

func TestExecutorWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewDirArtifactWriter(dir)
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	exec := NewExecutor(twoStepCatalog(t), infotype.Builtin(), &llm.MockProvider{Response: "out"}, "m",
		WithArtifactWriter(writer))

	if _, err := exec.Run(context.Background(), twoStepDecl(), infotype.Text(infotype.SourceText, "x")); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"step1_scriptwriter_output.json", "step2_expand_output.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("artifact %s: %v", name, err)
		}
		if !strings.Contains(string(data), `"output": "out"`) {
			t.Fatalf("artifact %s missing output: %s", name, data)
		}
	}
}
