package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/dlanger/typecast/pkg/config"
	"github.com/dlanger/typecast/pkg/errors"
	"github.com/dlanger/typecast/pkg/llm"
	"github.com/dlanger/typecast/pkg/telemetry"
	"github.com/dlanger/typecast/pkg/tts"
	"github.com/dlanger/typecast/pkg/workflow"

	typetest "github.com/dlanger/typecast/pkg/testing"
)

const workflowYAML = `
name: short-show
steps:
  - id: narr
    agent: narrative
    inputs: [source]
    output: Narrative
  - id: acts
    agent: acts
    inputs: [source, narr]
    output: Acts
  - id: script
    agent: simple_script
    inputs: [acts]
    output: Transcript
`

type fakeRunner struct {
	calls int
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.calls++
	return "", os.WriteFile(args[len(args)-1], []byte("mp3"), 0o644)
}

func testConfig(t *testing.T) *config.Config {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Run.OutputDir = t.TempDir()
	return cfg
}

func writeTestFiles(t *testing.T) (declPath, docPath string) {
	dir := t.TempDir()
	declPath = filepath.Join(dir, "show.yaml")
	if err := os.WriteFile(declPath, []byte(workflowYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	docPath = filepath.Join(dir, "paper.txt")
	if err := os.WriteFile(docPath, []byte("a paper about category theory"), 0o644); err != nil {
		t.Fatal(err)
	}
	return declPath, docPath
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	declPath, docPath := writeTestFiles(t)

	provider := typetest.NewScriptedProvider().
		AddResponse("an engaging narrative").
		AddResponse("Act_1: setup\nAct_2: tension\nAct_3: payoff").
		AddResponse("[Bob] Welcome.\n[Carolyn] Thanks Bob.")
	runner := &fakeRunner{}
	audit := workflow.NewMemoryAuditStore()

	p, err := New(cfg,
		WithProvider(provider),
		WithSynthesizer(&tts.MockSynthesizer{}),
		WithRunner(runner),
		WithAuditStore(audit),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer p.Close()

	summary, err := p.Run(context.Background(), declPath, docPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.State != workflow.StateCompleted || len(summary.Steps) != 3 {
		t.Fatalf("summary = %+v", summary)
	}

	data, err := os.ReadFile(summary.TranscriptPath)
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if !strings.Contains(string(data), "[Bob] Welcome.") {
		t.Fatalf("transcript = %q", data)
	}

	if summary.DocxPath == "" {
		t.Fatal("docx export missing")
	}
	if _, err := os.Stat(summary.DocxPath); err != nil {
		t.Fatalf("docx file: %v", err)
	}

	if summary.AudioPath == "" || runner.calls != 1 {
		t.Fatalf("audio not rendered: %+v, ffmpeg calls = %d", summary, runner.calls)
	}

	// Per-step artifacts are on by default.
	if _, err := os.Stat(filepath.Join(cfg.Run.OutputDir, "step1_narrative_output.json")); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}

	events, err := audit.List(context.Background(), workflow.AuditFilter{Workflow: "short-show"})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("audit events = %d", len(events))
	}

	// The generation provider saw the document text.
	reqs := provider.Requests()
	found := false
	for _, m := range reqs[0].Messages {
		if strings.Contains(m.Content, "category theory") {
			found = true
		}
	}
	if !found {
		t.Fatal("first agent never saw the source text")
	}
}

func TestRunWithoutTTS(t *testing.T) {
	cfg := testConfig(t)
	cfg.TTS.Enabled = false
	declPath, docPath := writeTestFiles(t)

	provider := typetest.NewScriptedProvider().
		AddResponse("n").AddResponse("a").AddResponse("[Bob] Hi.")
	runner := &fakeRunner{}

	p, err := New(cfg, WithProvider(provider), WithRunner(runner))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	summary, err := p.Run(context.Background(), declPath, docPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.AudioPath != "" || runner.calls != 0 {
		t.Fatalf("audio must be skipped: %+v", summary)
	}
}

func TestRunRecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	metrics, err := telemetry.NewPipelineMetrics()
	if err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t)
	cfg.TTS.Enabled = false
	declPath, docPath := writeTestFiles(t)

	p, err := New(cfg,
		WithProvider(&llm.MockProvider{Response: "[Bob] Hi."}),
		WithMetrics(metrics),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if _, err := p.Run(context.Background(), declPath, docPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got := sumCounter(rm, "typecast.runs.total"); got != 1 {
		t.Fatalf("runs recorded = %d, want 1", got)
	}
	if got := sumCounter(rm, "typecast.steps.total"); got != 3 {
		t.Fatalf("steps recorded = %d, want 3", got)
	}
	// Every mock generation call reports 20 total tokens.
	if got := sumCounter(rm, "typecast.llm.tokens"); got != 60 {
		t.Fatalf("tokens recorded = %d, want 60", got)
	}
}

func sumCounter(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestValidateRejectsBadWorkflow(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	declPath := filepath.Join(dir, "bad.yaml")
	bad := `
name: bad
steps:
  - id: script
    agent: simple_script
    inputs: [source]
    output: Transcript
`
	if err := os.WriteFile(declPath, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := New(cfg, WithProvider(typetest.NewScriptedProvider()))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	_, err = p.Validate(declPath)
	if !errors.IsCode(err, errors.CodeTypeMismatch) {
		t.Fatalf("expected TYPE_MISMATCH, got %v", err)
	}
	if errors.AsError(err).Stage != errors.StageValidate {
		t.Fatalf("stage = %s", errors.AsError(err).Stage)
	}
}

func TestRunRejectsUnsupportedDocument(t *testing.T) {
	cfg := testConfig(t)
	declPath, _ := writeTestFiles(t)

	p, err := New(cfg, WithProvider(typetest.NewScriptedProvider()))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	_, err = p.Run(context.Background(), declPath, "input.mp4")
	if !errors.IsCode(err, errors.CodeUnsupportedFormat) {
		t.Fatalf("expected UNSUPPORTED_FORMAT, got %v", err)
	}
}

func TestRunSurfacesGenerationFailure(t *testing.T) {
	cfg := testConfig(t)
	declPath, docPath := writeTestFiles(t)

	provider := typetest.NewScriptedProvider().
		AddResponse("n").
		AddErrorResponse(errors.Newf(errors.CodeGeneration, "model gone").WithRecoverable(false))

	p, err := New(cfg, WithProvider(provider))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	_, err = p.Run(context.Background(), declPath, docPath)
	if !errors.IsCode(err, errors.CodeGeneration) {
		t.Fatalf("expected GENERATION, got %v", err)
	}
	e := errors.AsError(err)
	if e.Context["step_id"] != "acts" {
		t.Fatalf("failing step not named: %v", e.Context)
	}
}

func TestBuildProviderRejectsUnknown(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = "smoke-signals"
	if _, err := New(cfg); !errors.IsCode(err, errors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}
