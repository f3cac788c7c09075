package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dlanger/typecast/pkg/agent"
	"github.com/dlanger/typecast/pkg/errors"
	"github.com/dlanger/typecast/pkg/infotype"
	"github.com/dlanger/typecast/pkg/llm"
	"github.com/dlanger/typecast/pkg/telemetry"
)

// State is the lifecycle state of a single run.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// StepResult records the outcome of one executed step.
type StepResult struct {
	StepID     string
	Agent      string
	OutputTag  infotype.Tag
	Err        string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Result is the outcome of one run.
type Result struct {
	RunID    string
	Workflow string
	State    State
	Output   infotype.Value
	Steps    []StepResult
}

// Executor runs checked declarations strictly in declared order. Each run
// owns a fresh execution context; the executor itself holds only immutable
// collaborators and may be reused for sequential runs.
type Executor struct {
	catalog   *agent.Catalog
	types     *infotype.Registry
	provider  llm.Provider
	model     string
	audit     AuditStore
	artifacts ArtifactWriter
	metrics   *telemetry.PipelineMetrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures an Executor.
type Option func(*Executor)

// WithAuditStore records one audit event per executed step.
func WithAuditStore(store AuditStore) Option {
	return func(e *Executor) { e.audit = store }
}

// WithArtifactWriter writes per-step output artifacts after each step.
func WithArtifactWriter(w ArtifactWriter) Option {
	return func(e *Executor) { e.artifacts = w }
}

// WithLogger sets the executor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithMetrics records step counts and durations on the pipeline instruments.
func WithMetrics(m *telemetry.PipelineMetrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// NewExecutor creates an executor bound to a catalog, a type hierarchy, and
// a generation provider.
func NewExecutor(catalog *agent.Catalog, types *infotype.Registry, provider llm.Provider, model string, opts ...Option) *Executor {
	e := &Executor{
		catalog:  catalog,
		types:    types,
		provider: provider,
		model:    model,
		logger:   slog.Default(),
		tracer:   otel.Tracer("typecast/workflow"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the declaration against the given source value. The checker
// runs again here even if the caller already validated, so an unchecked
// declaration can never reach an agent. Execution stops at the first failed
// step; prior step outputs are discarded with the run's context.
func (e *Executor) Run(ctx context.Context, decl *Declaration, source infotype.Value) (*Result, error) {
	result := &Result{
		RunID:    uuid.NewString(),
		Workflow: decl.Name,
		State:    StateNotStarted,
	}

	if err := Check(decl, e.catalog, e.types); err != nil {
		return result, err
	}
	if !source.Satisfies(e.types, infotype.SourceText) {
		return result, errors.Newf(errors.CodeInvalidInput,
			"source value is tagged %s, want %s", source.Tag, infotype.SourceText)
	}

	result.State = StateRunning
	values := map[string]infotype.Value{SourceID: source}

	for i, step := range decl.Steps {
		out, err := e.runStep(ctx, result, i, step, values)
		if err != nil {
			result.State = StateFailed
			return result, errors.AsError(err).
				WithContext("step_id", step.ID).
				WithContext("agent", step.Agent).
				WithContext("run_id", result.RunID)
		}
		values[step.ID] = out
	}

	result.State = StateCompleted
	result.Output = values[decl.FinalStepID()]
	return result, nil
}

func (e *Executor) runStep(ctx context.Context, result *Result, index int, step Step, values map[string]infotype.Value) (infotype.Value, error) {
	contract := e.catalog.Lookup(step.Agent)

	inputs := make([]infotype.Value, len(step.Inputs))
	for pos, ref := range step.Inputs {
		inputs[pos] = values[ref.StepID()]
	}

	stepCtx, span := e.tracer.Start(ctx, "Workflow.Step",
		trace.WithAttributes(telemetry.WorkflowAttrs(result.Workflow, result.RunID)...),
		trace.WithAttributes(telemetry.StepAttrs(step.ID, step.Agent, string(step.Output))...),
	)
	started := time.Now().UTC()
	out, err := contract.Invoke(stepCtx, e.provider, e.model, inputs)
	finished := time.Now().UTC()
	span.End()

	// The declared output type may widen what the agent produced; the
	// context binds the declared tag so later lookups match the checker's
	// environment.
	if err == nil && out.Tag != step.Output {
		out = infotype.Text(step.Output, out.Text())
	}

	sr := StepResult{
		StepID:     step.ID,
		Agent:      step.Agent,
		OutputTag:  out.Tag,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if err != nil {
		sr.Err = err.Error()
		sr.OutputTag = ""
	}
	result.Steps = append(result.Steps, sr)

	if e.metrics != nil {
		status := string(StateCompleted)
		if sr.Err != "" {
			status = string(StateFailed)
		}
		e.metrics.RecordStep(ctx, sr.Agent, status, float64(finished.Sub(started).Milliseconds()))
	}

	e.recordAudit(ctx, result, sr)

	if err == nil && e.artifacts != nil {
		if werr := e.artifacts.WriteStep(index, step, inputs, out); werr != nil {
			e.logger.WarnContext(ctx, "artifact write failed",
				"step_id", step.ID, "error", werr)
		}
	}

	if err != nil {
		e.logger.ErrorContext(ctx, "workflow step failed",
			"workflow", result.Workflow, "step_id", step.ID, "agent", step.Agent, "error", err)
		return infotype.Value{}, err
	}

	e.logger.DebugContext(ctx, "workflow step completed",
		"workflow", result.Workflow, "step_id", step.ID, "agent", step.Agent, "output_tag", string(out.Tag))
	return out, nil
}

func (e *Executor) recordAudit(ctx context.Context, result *Result, sr StepResult) {
	if e.audit == nil {
		return
	}
	status := string(StateCompleted)
	if sr.Err != "" {
		status = string(StateFailed)
	}
	event := AuditEvent{
		Workflow:   result.Workflow,
		RunID:      result.RunID,
		StepID:     sr.StepID,
		Agent:      sr.Agent,
		Status:     status,
		OutputTag:  string(sr.OutputTag),
		Error:      sr.Err,
		StartedAt:  sr.StartedAt,
		FinishedAt: sr.FinishedAt,
	}
	if err := e.audit.Record(ctx, event); err != nil {
		// Auditing is observational and never affects the run outcome.
		e.logger.WarnContext(ctx, "audit record failed", "step_id", sr.StepID, "error", err)
	}
}
