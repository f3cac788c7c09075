// SPDX-License-Identifier: Apache-2.0
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/dlanger/typecast/pkg/errors"
)

// PipelineMetrics tracks run outcomes, step latency and token usage.
type PipelineMetrics struct {
	runCounter   metric.Int64Counter
	stepCounter  metric.Int64Counter
	stepDuration metric.Float64Histogram
	tokenCounter metric.Int64Counter
	errorCounter metric.Int64Counter
}

// NewPipelineMetrics registers the pipeline instruments on the global meter.
func NewPipelineMetrics() (*PipelineMetrics, error) {
	meter := otel.Meter("typecast/pipeline")

	runCounter, err := meter.Int64Counter(
		"typecast.runs.total",
		metric.WithDescription("Workflow runs by final state"),
	)
	if err != nil {
		return nil, err
	}

	stepCounter, err := meter.Int64Counter(
		"typecast.steps.total",
		metric.WithDescription("Executed steps by agent and status"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"typecast.step.duration_ms",
		metric.WithDescription("Step wall time in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	tokenCounter, err := meter.Int64Counter(
		"typecast.llm.tokens",
		metric.WithDescription("Tokens consumed by generation calls"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"typecast.errors.total",
		metric.WithDescription("Errors by code and stage"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		runCounter:   runCounter,
		stepCounter:  stepCounter,
		stepDuration: stepDuration,
		tokenCounter: tokenCounter,
		errorCounter: errorCounter,
	}, nil
}

// RecordRun counts one finished run.
func (m *PipelineMetrics) RecordRun(ctx context.Context, workflow, state string) {
	m.runCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrWorkflowName, workflow),
		attribute.String(AttrStepStatus, state),
	))
}

// RecordStep counts one executed step and its duration.
func (m *PipelineMetrics) RecordStep(ctx context.Context, agentName, status string, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String(AttrStepAgent, agentName),
		attribute.String(AttrStepStatus, status),
	)
	m.stepCounter.Add(ctx, 1, attrs)
	m.stepDuration.Record(ctx, durationMs, attrs)
}

// RecordTokens counts token usage for one generation call.
func (m *PipelineMetrics) RecordTokens(ctx context.Context, model string, total int) {
	m.tokenCounter.Add(ctx, int64(total), metric.WithAttributes(
		attribute.String(AttrLLMModel, model),
	))
}

// RecordError counts one typed error.
func (m *PipelineMetrics) RecordError(ctx context.Context, err error) {
	e := errors.AsError(err)
	if e == nil {
		return
	}
	m.errorCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrErrorCode, string(e.Code)),
		attribute.String(AttrErrorStage, string(e.Stage)),
	))
}
