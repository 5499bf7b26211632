// Package errors defines the taxonomy of failures the model pipeline raises:
// ParseError for malformed source documents, ValidationError for aggregated
// diagnostics, and CompileError for expression/path compiler failures.
package errors

import (
	"fmt"
	"strings"

	"github.com/cuulee/zb-bpmn-model/internal/validate"
)

// ParseError represents a malformed BPMN XML or YAML document.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError aggregates one or more ERROR diagnostics produced by the
// validator. It is what reader/builder entry points raise; explicit
// Facade.Validate calls return the Result directly instead.
type ValidationError struct {
	Result validate.Result
}

// NewValidationError constructs a ValidationError from a validation result.
// Returns nil if the result carries no ERROR diagnostics.
func NewValidationError(result validate.Result) error {
	if !result.HasErrors() {
		return nil
	}
	return &ValidationError{Result: result}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Result) == 0 {
		return "validation error"
	}
	lines := make([]string, 0, len(e.Result))
	for _, d := range e.Result {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}

// CompileError signals that an expression or JSON-path compiler rejected its
// input. No code path in this module constructs one: the JSON-path compiler
// returns a plain error and the condition compiler an invalid
// CompiledCondition, which the Transformer records on the mapping or flow
// and the Validator surfaces as a diagnostic.
type CompileError struct {
	Expression string
	Reason     string
}

// NewCompileError constructs a CompileError.
func NewCompileError(expression, reason string) *CompileError {
	return &CompileError{Expression: expression, Reason: reason}
}

func (e *CompileError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("compile error: %q: %s", e.Expression, e.Reason)
}
