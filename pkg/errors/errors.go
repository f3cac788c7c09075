// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for typecast.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies typecast errors for handling and reporting.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeDuplicateType indicates a type tag name is already registered.
	CodeDuplicateType ErrorCode = "DUPLICATE_TYPE"

	// CodeUnknownParent indicates a type tag references an unregistered parent.
	CodeUnknownParent ErrorCode = "UNKNOWN_PARENT"

	// CodeDuplicateAgent indicates an agent name collision in a catalog.
	CodeDuplicateAgent ErrorCode = "DUPLICATE_AGENT"

	// CodeUnknownAgent indicates a workflow step names an agent that is not declared.
	CodeUnknownAgent ErrorCode = "UNKNOWN_AGENT"

	// CodeForwardReference indicates a step consumes the output of a later step.
	CodeForwardReference ErrorCode = "FORWARD_REFERENCE"

	// CodeUnboundReference indicates a step consumes an output that no step produces.
	CodeUnboundReference ErrorCode = "UNBOUND_REFERENCE"

	// CodeTypeMismatch indicates an input or declared output violates an agent contract.
	CodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// CodeInvalidWorkflowOutput indicates the final step does not produce a transcript.
	CodeInvalidWorkflowOutput ErrorCode = "INVALID_WORKFLOW_OUTPUT"

	// CodeGeneration indicates the language model collaborator failed.
	CodeGeneration ErrorCode = "GENERATION_ERROR"

	// CodeUnsupportedFormat indicates the source document format is not handled.
	CodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"

	// CodeExtraction indicates source text extraction failed.
	CodeExtraction ErrorCode = "EXTRACTION_ERROR"

	// CodeRender indicates text-to-speech rendering failed.
	CodeRender ErrorCode = "RENDER_ERROR"

	// CodeRateLimit indicates rate limiting was triggered.
	CodeRateLimit ErrorCode = "RATE_LIMITED"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"
)

// Stage identifies which pipeline stage produced an error.
type Stage string

const (
	StageConfig   Stage = "config"
	StageValidate Stage = "validate"
	StageExtract  Stage = "extract"
	StageExecute  Stage = "execute"
	StageRender   Stage = "render"
)

// Error is a typed error with structured context.
// It implements the error interface and can be unwrapped with errors.As().
type Error struct {
	Code        ErrorCode
	Stage       Stage
	Message     string
	Err         error
	Context     map[string]any
	Recoverable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.Stage != "" {
		prefix = fmt.Sprintf("%s/%s", e.Stage, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", prefix, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *Error) MarshalJSON() ([]byte, error) {
	payload := struct {
		Code        string         `json:"code"`
		Stage       string         `json:"stage,omitempty"`
		Message     string         `json:"message"`
		Cause       string         `json:"cause,omitempty"`
		Context     map[string]any `json:"context,omitempty"`
		Recoverable bool           `json:"recoverable"`
	}{
		Code:        string(e.Code),
		Stage:       string(e.Stage),
		Message:     e.Message,
		Context:     e.Context,
		Recoverable: e.Recoverable,
	}
	if e.Err != nil {
		payload.Cause = e.Err.Error()
	}
	return json.Marshal(payload)
}

// New creates a new Error with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *Error {
	return &Error{
		Code:        code,
		Message:     msg,
		Err:         cause,
		Context:     make(map[string]any),
		Recoverable: recoverableDefault(code),
	}
}

// Newf creates a new Error with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithStage tags the error with the pipeline stage that produced it.
func (e *Error) WithStage(stage Stage) *Error {
	e.Stage = stage
	return e
}

// WithRecoverable sets whether the error can be recovered from.
func (e *Error) WithRecoverable(recoverable bool) *Error {
	e.Recoverable = recoverable
	return e
}

// AsError converts err to *Error, wrapping unknown errors as internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if te, ok := err.(*Error); ok {
		return te
	}
	return New(CodeInternal, "wrapped error", err)
}

// CodeOf returns the error code of err, or CodeInternal for untyped errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if te, ok := err.(*Error); ok {
		return te.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	te, ok := err.(*Error)
	return ok && te.Code == code
}

// recoverableDefault marks transient collaborator failures as retryable.
// Author-time mistakes (type system, configuration, validation) never are.
func recoverableDefault(code ErrorCode) bool {
	switch code {
	case CodeGeneration, CodeRateLimit, CodeTimeout:
		return true
	default:
		return false
	}
}
