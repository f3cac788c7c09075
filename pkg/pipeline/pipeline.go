// SPDX-License-Identifier: Apache-2.0

// Package pipeline drives a document through the full flow: validate the
// workflow, extract the source text, execute the agents, and render the
// result to transcript files and podcast audio.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dlanger/typecast/pkg/agent"
	"github.com/dlanger/typecast/pkg/config"
	"github.com/dlanger/typecast/pkg/errors"
	"github.com/dlanger/typecast/pkg/execx"
	"github.com/dlanger/typecast/pkg/infotype"
	"github.com/dlanger/typecast/pkg/ingest"
	"github.com/dlanger/typecast/pkg/llm"
	"github.com/dlanger/typecast/pkg/resilience"
	"github.com/dlanger/typecast/pkg/telemetry"
	"github.com/dlanger/typecast/pkg/tts"
	"github.com/dlanger/typecast/pkg/workflow"
)

const (
	transcriptFileName = "final_transcript.txt"
	transcriptDocxName = "final_transcript.docx"
)

// Pipeline owns the collaborators for one configured deployment and can run
// any number of documents through any number of workflows.
type Pipeline struct {
	cfg      *config.Config
	catalog  *agent.Catalog
	types    *infotype.Registry
	provider llm.Provider
	synth    tts.Synthesizer
	runner   execx.Runner
	audit    workflow.AuditStore
	metrics  *telemetry.PipelineMetrics
	logger   *slog.Logger

	closers []func() error
}

// Option overrides a collaborator, mainly for tests.
type Option func(*Pipeline)

// WithProvider substitutes the generation provider.
func WithProvider(p llm.Provider) Option {
	return func(pl *Pipeline) { pl.provider = p }
}

// WithSynthesizer substitutes the speech synthesizer.
func WithSynthesizer(s tts.Synthesizer) Option {
	return func(pl *Pipeline) { pl.synth = s }
}

// WithRunner substitutes the external command runner.
func WithRunner(r execx.Runner) Option {
	return func(pl *Pipeline) { pl.runner = r }
}

// WithAuditStore substitutes the audit store.
func WithAuditStore(store workflow.AuditStore) Option {
	return func(pl *Pipeline) { pl.audit = store }
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(pl *Pipeline) { pl.logger = logger }
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *telemetry.PipelineMetrics) Option {
	return func(pl *Pipeline) { pl.metrics = m }
}

// New assembles a pipeline from configuration. Collaborators not overridden
// by options are built from cfg.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:     cfg,
		catalog: agent.Builtin(),
		types:   infotype.Builtin(),
		runner:  execx.New(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.provider == nil {
		provider, err := buildProvider(cfg.LLM)
		if err != nil {
			return nil, err
		}
		p.provider = provider
	}
	if p.synth == nil && cfg.TTS.Enabled {
		p.synth = tts.NewOpenAISpeech(cfg.TTS.BaseURL, cfg.TTS.APIKey, cfg.TTS.Model)
	}
	if p.audit == nil {
		store, closer, err := buildAuditStore(cfg.Audit)
		if err != nil {
			return nil, err
		}
		p.audit = store
		if closer != nil {
			p.closers = append(p.closers, closer)
		}
	}
	if p.metrics != nil {
		p.provider = &meteredProvider{next: p.provider, metrics: p.metrics}
	}

	return p, nil
}

// Close releases resources held by configured collaborators.
func (p *Pipeline) Close() error {
	var firstErr error
	for _, fn := range p.closers {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Audit exposes the audit store for inspection commands.
func (p *Pipeline) Audit() workflow.AuditStore {
	return p.audit
}

// Catalog exposes the agent catalog.
func (p *Pipeline) Catalog() *agent.Catalog {
	return p.catalog
}

// Types exposes the type hierarchy.
func (p *Pipeline) Types() *infotype.Registry {
	return p.types
}

func buildProvider(cfg config.LLMConfig) (llm.Provider, error) {
	var base llm.Provider
	switch cfg.Provider {
	case "", "openai":
		base = llm.NewOpenAI(cfg.BaseURL, cfg.APIKey)
	case "ollama":
		base = llm.NewOllama(cfg.BaseURL)
	default:
		return nil, errors.Newf(errors.CodeInvalidInput, "unknown llm provider %q", cfg.Provider).
			WithStage(errors.StageConfig)
	}

	if cfg.Temperature > 0 {
		base = &temperatureProvider{next: base, temperature: cfg.Temperature}
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry = retry.WithMaxAttempts(cfg.MaxAttempts)
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	return llm.Resilient(base, retry, timeout), nil
}

// temperatureProvider stamps the configured sampling temperature onto
// requests that do not set one.
type temperatureProvider struct {
	next        llm.Provider
	temperature float64
}

func (p *temperatureProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if req.Temperature == 0 {
		req.Temperature = p.temperature
	}
	return p.next.Chat(ctx, req)
}

// meteredProvider counts the token usage reported by each generation call.
type meteredProvider struct {
	next    llm.Provider
	metrics *telemetry.PipelineMetrics
}

func (p *meteredProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := p.next.Chat(ctx, req)
	if err == nil && resp.Usage.TotalTokens > 0 {
		p.metrics.RecordTokens(ctx, req.Model, resp.Usage.TotalTokens)
	}
	return resp, err
}

func buildAuditStore(cfg config.AuditConfig) (workflow.AuditStore, func() error, error) {
	switch cfg.Backend {
	case "", "memory":
		return workflow.NewMemoryAuditStore(), nil, nil
	case "sqlite":
		store, err := workflow.OpenSQLiteAuditStore(cfg.Path)
		if err != nil {
			return nil, nil, errors.New(errors.CodeInternal, "open audit store", err).
				WithStage(errors.StageConfig)
		}
		return store, store.Close, nil
	case "none":
		return nil, nil, nil
	default:
		return nil, nil, errors.Newf(errors.CodeInvalidInput, "unknown audit backend %q", cfg.Backend).
			WithStage(errors.StageConfig)
	}
}

// RunSummary reports one completed pipeline run.
type RunSummary struct {
	RunID          string
	Workflow       string
	State          workflow.State
	TranscriptPath string
	DocxPath       string
	AudioPath      string
	Steps          []workflow.StepResult
}

// Validate loads a workflow declaration and type-checks it against the
// catalog without executing anything.
func (p *Pipeline) Validate(declPath string) (*workflow.Declaration, error) {
	decl, err := workflow.Load(declPath)
	if err != nil {
		return nil, errors.AsError(err).WithStage(errors.StageValidate)
	}
	if err := workflow.Check(decl, p.catalog, p.types); err != nil {
		return nil, errors.AsError(err).
			WithStage(errors.StageValidate).
			WithContext("workflow", decl.Name)
	}
	return decl, nil
}

// Run validates the workflow, ingests the document, executes every step and
// writes transcript (and, if enabled, audio) outputs under the configured
// output directory.
func (p *Pipeline) Run(ctx context.Context, declPath, docPath string) (*RunSummary, error) {
	decl, err := p.Validate(declPath)
	if err != nil {
		p.recordError(ctx, err)
		return nil, err
	}

	source, err := ingest.Extract(docPath)
	if err != nil {
		p.recordError(ctx, err)
		return nil, err
	}
	p.logger.InfoContext(ctx, "document ingested",
		"path", docPath, "workflow", decl.Name, "chars", len(source.Text()))

	outDir := p.cfg.Run.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.New(errors.CodeInternal, "create output directory", err).
			WithStage(errors.StageExecute)
	}

	execOpts := []workflow.Option{workflow.WithLogger(p.logger)}
	if p.metrics != nil {
		execOpts = append(execOpts, workflow.WithMetrics(p.metrics))
	}
	if p.audit != nil {
		execOpts = append(execOpts, workflow.WithAuditStore(p.audit))
	}
	if p.cfg.Run.Artifacts {
		writer, err := workflow.NewDirArtifactWriter(outDir)
		if err != nil {
			return nil, errors.New(errors.CodeInternal, "create artifact writer", err).
				WithStage(errors.StageExecute)
		}
		execOpts = append(execOpts, workflow.WithArtifactWriter(writer))
	}

	exec := workflow.NewExecutor(p.catalog, p.types, p.provider, p.cfg.LLM.Model, execOpts...)
	result, err := exec.Run(ctx, decl, source)
	if p.metrics != nil && result != nil {
		p.metrics.RecordRun(ctx, decl.Name, string(result.State))
	}
	if err != nil {
		p.recordError(ctx, err)
		return nil, errors.AsError(err).WithStage(errors.StageExecute)
	}

	summary := &RunSummary{
		RunID:    result.RunID,
		Workflow: result.Workflow,
		State:    result.State,
		Steps:    result.Steps,
	}

	transcript := result.Output.Text()
	summary.TranscriptPath = filepath.Join(outDir, transcriptFileName)
	if err := os.WriteFile(summary.TranscriptPath, []byte(transcript), 0o644); err != nil {
		return nil, errors.New(errors.CodeInternal, "write transcript", err).
			WithStage(errors.StageExecute)
	}

	summary.DocxPath = filepath.Join(outDir, transcriptDocxName)
	if err := ingest.WriteTranscriptDocx(decl.Name, transcript, summary.DocxPath); err != nil {
		// The docx export is convenience output, the run still succeeded.
		p.logger.WarnContext(ctx, "docx export failed", "error", err)
		summary.DocxPath = ""
	}

	if p.cfg.TTS.Enabled && p.synth != nil {
		renderer := tts.NewRenderer(p.synth, p.runner, agent.DefaultHosts(), p.logger)
		audioPath, err := renderer.Render(ctx, transcript, outDir)
		if err != nil {
			p.recordError(ctx, err)
			return summary, err
		}
		summary.AudioPath = audioPath
	}

	p.logger.InfoContext(ctx, "pipeline run finished",
		"run_id", summary.RunID, "workflow", summary.Workflow,
		"transcript", summary.TranscriptPath, "audio", summary.AudioPath)
	return summary, nil
}

func (p *Pipeline) recordError(ctx context.Context, err error) {
	if p.metrics != nil {
		p.metrics.RecordError(ctx, err)
	}
}
