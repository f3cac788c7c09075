package workflow

import (
	"testing"

	"github.com/dlanger/typecast/pkg/agent"
	"github.com/dlanger/typecast/pkg/errors"
	"github.com/dlanger/typecast/pkg/infotype"
	"github.com/dlanger/typecast/pkg/llm"
)

func echoPrompt(inputs []infotype.Value) []llm.Message {
	text := ""
	for _, in := range inputs {
		text += in.Text()
	}
	return []llm.Message{{Role: llm.RoleUser, Content: text}}
}

// testCatalog builds a small catalog with generic summarizer/scriptwriter
// contracts so tests can vary the declared contract types freely.
func testCatalog(t *testing.T, contracts ...agent.Contract) *agent.Catalog {
	t.Helper()
	cat := agent.NewCatalog()
	for _, c := range contracts {
		if c.Prompt == nil {
			c.Prompt = echoPrompt
		}
		if err := cat.Declare(c); err != nil {
			t.Fatalf("declare %s: %v", c.Name, err)
		}
	}
	return cat
}

func TestCheckRejectsNonTranscriptFinal(t *testing.T) {
	cat := testCatalog(t, agent.Contract{
		Name:       "summarizer",
		InputTypes: []infotype.Tag{infotype.SourceText},
		OutputType: infotype.Summary,
	})
	decl := &Declaration{
		Name:  "summary-only",
		Steps: []Step{{ID: "step1", Agent: "summarizer", Inputs: []Ref{Source()}, Output: infotype.Summary}},
	}
	err := Check(decl, cat, infotype.Builtin())
	if !errors.IsCode(err, errors.CodeInvalidWorkflowOutput) {
		t.Fatalf("expected INVALID_WORKFLOW_OUTPUT, got %v", err)
	}
}

func TestCheckAcceptsSubtypeInput(t *testing.T) {
	cat := testCatalog(t,
		agent.Contract{
			Name:       "summarizer",
			InputTypes: []infotype.Tag{infotype.SourceText},
			OutputType: infotype.IndepthSummary,
		},
		agent.Contract{
			Name:       "scriptwriter",
			InputTypes: []infotype.Tag{infotype.Summary},
			OutputType: infotype.Transcript,
		},
	)
	decl := &Declaration{
		Name: "subtype-ok",
		Steps: []Step{
			{ID: "step1", Agent: "summarizer", Inputs: []Ref{Source()}, Output: infotype.IndepthSummary},
			{ID: "step2", Agent: "scriptwriter", Inputs: []Ref{StepRef("step1")}, Output: infotype.Transcript},
		},
	}
	if err := Check(decl, cat, infotype.Builtin()); err != nil {
		t.Fatalf("IndepthSummary satisfies Summary, got %v", err)
	}
}

func TestCheckRejectsUnrelatedInput(t *testing.T) {
	cat := testCatalog(t,
		agent.Contract{
			Name:       "summarizer",
			InputTypes: []infotype.Tag{infotype.SourceText},
			OutputType: infotype.IndepthSummary,
		},
		agent.Contract{
			Name:       "scriptwriter",
			InputTypes: []infotype.Tag{infotype.Acts},
			OutputType: infotype.Transcript,
		},
	)
	decl := &Declaration{
		Name: "subtype-bad",
		Steps: []Step{
			{ID: "step1", Agent: "summarizer", Inputs: []Ref{Source()}, Output: infotype.IndepthSummary},
			{ID: "step2", Agent: "scriptwriter", Inputs: []Ref{StepRef("step1")}, Output: infotype.Transcript},
		},
	}
	err := Check(decl, cat, infotype.Builtin())
	if !errors.IsCode(err, errors.CodeTypeMismatch) {
		t.Fatalf("expected TYPE_MISMATCH, got %v", err)
	}
	e := errors.AsError(err)
	if e.Context["expected"] != string(infotype.Acts) || e.Context["actual"] != string(infotype.IndepthSummary) {
		t.Fatalf("mismatch context wrong: %v", e.Context)
	}
	if e.Context["step_id"] != "step2" {
		t.Fatalf("mismatch must name step2, got %v", e.Context["step_id"])
	}
}

func TestCheckRejectsForwardReference(t *testing.T) {
	cat := testCatalog(t,
		agent.Contract{
			Name:       "expand",
			InputTypes: []infotype.Tag{infotype.Transcript},
			OutputType: infotype.Transcript,
		},
		agent.Contract{
			Name:       "scriptwriter",
			InputTypes: []infotype.Tag{infotype.SourceText},
			OutputType: infotype.Transcript,
		},
	)
	decl := &Declaration{
		Name: "forward",
		Steps: []Step{
			{ID: "step2", Agent: "expand", Inputs: []Ref{StepRef("step3")}, Output: infotype.Transcript},
			{ID: "step3", Agent: "scriptwriter", Inputs: []Ref{Source()}, Output: infotype.Transcript},
		},
	}
	err := Check(decl, cat, infotype.Builtin())
	if !errors.IsCode(err, errors.CodeForwardReference) {
		t.Fatalf("expected FORWARD_REFERENCE, got %v", err)
	}
}

func TestCheckRejectsUnboundReference(t *testing.T) {
	cat := testCatalog(t, agent.Contract{
		Name:       "expand",
		InputTypes: []infotype.Tag{infotype.Transcript},
		OutputType: infotype.Transcript,
	})
	decl := &Declaration{
		Name:  "unbound",
		Steps: []Step{{ID: "step1", Agent: "expand", Inputs: []Ref{StepRef("ghost")}, Output: infotype.Transcript}},
	}
	err := Check(decl, cat, infotype.Builtin())
	if !errors.IsCode(err, errors.CodeUnboundReference) {
		t.Fatalf("expected UNBOUND_REFERENCE, got %v", err)
	}
}

func TestCheckRejectsUnknownAgent(t *testing.T) {
	decl := &Declaration{
		Name:  "no-agent",
		Steps: []Step{{ID: "step1", Agent: "missing", Inputs: []Ref{Source()}, Output: infotype.Transcript}},
	}
	err := Check(decl, agent.NewCatalog(), infotype.Builtin())
	if !errors.IsCode(err, errors.CodeUnknownAgent) {
		t.Fatalf("expected UNKNOWN_AGENT, got %v", err)
	}
}

func TestCheckRejectsArityMismatch(t *testing.T) {
	cat := testCatalog(t, agent.Contract{
		Name:       "combine",
		InputTypes: []infotype.Tag{infotype.Transcript, infotype.Transcript},
		OutputType: infotype.Transcript,
	})
	decl := &Declaration{
		Name:  "arity",
		Steps: []Step{{ID: "step1", Agent: "combine", Inputs: []Ref{Source()}, Output: infotype.Transcript}},
	}
	err := Check(decl, cat, infotype.Builtin())
	if !errors.IsCode(err, errors.CodeTypeMismatch) {
		t.Fatalf("expected TYPE_MISMATCH on arity, got %v", err)
	}
}

func TestCheckAllowsOutputWidening(t *testing.T) {
	cat := testCatalog(t,
		agent.Contract{
			Name:       "personalize",
			InputTypes: []infotype.Tag{infotype.SourceText},
			OutputType: infotype.PersonalizedTranscript,
		},
	)
	widened := &Declaration{
		Name: "widen",
		Steps: []Step{
			// Declares the parent tag of what the agent produces.
			{ID: "step1", Agent: "personalize", Inputs: []Ref{Source()}, Output: infotype.Transcript},
		},
	}
	if err := Check(widened, cat, infotype.Builtin()); err != nil {
		t.Fatalf("widening to a supertype must pass: %v", err)
	}

	cat2 := testCatalog(t, agent.Contract{
		Name:       "scriptwriter",
		InputTypes: []infotype.Tag{infotype.SourceText},
		OutputType: infotype.Transcript,
	})
	narrowed := &Declaration{
		Name: "narrow",
		Steps: []Step{
			{ID: "step1", Agent: "scriptwriter", Inputs: []Ref{Source()}, Output: infotype.PersonalizedTranscript},
		},
	}
	err := Check(narrowed, cat2, infotype.Builtin())
	if !errors.IsCode(err, errors.CodeTypeMismatch) {
		t.Fatalf("narrowing must be rejected, got %v", err)
	}
}

func TestCheckRepeatedInputRef(t *testing.T) {
	cat := testCatalog(t,
		agent.Contract{
			Name:       "scriptwriter",
			InputTypes: []infotype.Tag{infotype.SourceText},
			OutputType: infotype.Transcript,
		},
		agent.Contract{
			Name:       "combine",
			InputTypes: []infotype.Tag{infotype.Transcript, infotype.Transcript},
			OutputType: infotype.Transcript,
		},
	)
	decl := &Declaration{
		Name: "repeat",
		Steps: []Step{
			{ID: "draft", Agent: "scriptwriter", Inputs: []Ref{Source()}, Output: infotype.Transcript},
			{ID: "merge", Agent: "combine", Inputs: []Ref{StepRef("draft"), StepRef("draft")}, Output: infotype.Transcript},
		},
	}
	if err := Check(decl, cat, infotype.Builtin()); err != nil {
		t.Fatalf("repeated reference to one prior step must pass: %v", err)
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	cat := testCatalog(t, agent.Contract{
		Name:       "scriptwriter",
		InputTypes: []infotype.Tag{infotype.SourceText},
		OutputType: infotype.Transcript,
	})
	decl := &Declaration{
		Name:  "idem",
		Steps: []Step{{ID: "step1", Agent: "scriptwriter", Inputs: []Ref{Source()}, Output: infotype.Transcript}},
	}
	for i := 0; i < 3; i++ {
		if err := Check(decl, cat, infotype.Builtin()); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
	}
}

func TestCheckBuiltinIrapodShape(t *testing.T) {
	// The full production pipeline over the built-in catalog.
	decl := &Declaration{
		Name: "irapod",
		Steps: []Step{
			{ID: "narrative", Agent: "narrative", Inputs: []Ref{Source()}, Output: infotype.Narrative},
			{ID: "acts", Agent: "acts", Inputs: []Ref{Source(), StepRef("narrative")}, Output: infotype.Acts},
			{ID: "context", Agent: "contextualize", Inputs: []Ref{Source(), StepRef("acts")}, Output: infotype.IndepthSummary},
			{ID: "analogies", Agent: "analogies", Inputs: []Ref{StepRef("context")}, Output: infotype.IndepthSummary},
			{ID: "draft1", Agent: "scriptwriter", Inputs: []Ref{StepRef("acts"), StepRef("analogies")}, Output: infotype.Transcript},
			{ID: "draft2", Agent: "scriptwriter", Inputs: []Ref{StepRef("acts"), StepRef("analogies")}, Output: infotype.Transcript},
			{ID: "draft3", Agent: "scriptwriter", Inputs: []Ref{StepRef("acts"), StepRef("analogies")}, Output: infotype.Transcript},
			{ID: "combined", Agent: "combine", Inputs: []Ref{StepRef("draft1"), StepRef("draft2"), StepRef("draft3")}, Output: infotype.Transcript},
			{ID: "expanded", Agent: "expand", Inputs: []Ref{StepRef("combined")}, Output: infotype.Transcript},
			{ID: "final", Agent: "personalize", Inputs: []Ref{StepRef("expanded")}, Output: infotype.PersonalizedTranscript},
		},
	}
	if err := Check(decl, agent.Builtin(), infotype.Builtin()); err != nil {
		t.Fatalf("irapod must type-check: %v", err)
	}
}
