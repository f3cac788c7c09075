// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides OpenTelemetry integration and trace-aware
// structured logging for the pipeline.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for pipeline telemetry. LLM attributes follow the
// standard gen_ai conventions.
const (
	AttrWorkflowName = "typecast.workflow.name"
	AttrRunID        = "typecast.run.id"
	AttrStepID       = "typecast.step.id"
	AttrStepAgent    = "typecast.step.agent"
	AttrStepOutput   = "typecast.step.output_tag"
	AttrStepStatus   = "typecast.step.status"

	AttrDocumentPath   = "typecast.document.path"
	AttrDocumentFormat = "typecast.document.format"

	AttrRenderSegments = "typecast.render.segments"
	AttrRenderVoice    = "typecast.render.voice"

	AttrLLMModel        = "gen_ai.request.model"
	AttrLLMProvider     = "gen_ai.system"
	AttrLLMTokensInput  = "gen_ai.usage.input_tokens"
	AttrLLMTokensOutput = "gen_ai.usage.output_tokens"
	AttrLLMTokensTotal  = "gen_ai.usage.total_tokens"

	AttrErrorCode  = "typecast.error.code"
	AttrErrorStage = "typecast.error.stage"
)

// WorkflowAttrs builds the span attributes common to one run.
func WorkflowAttrs(workflow, runID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrWorkflowName, workflow),
		attribute.String(AttrRunID, runID),
	}
}

// StepAttrs builds the span attributes for one executed step.
func StepAttrs(stepID, agentName, outputTag string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrStepID, stepID),
		attribute.String(AttrStepAgent, agentName),
		attribute.String(AttrStepOutput, outputTag),
	}
}
