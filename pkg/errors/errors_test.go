package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuulee/zb-bpmn-model/internal/validate"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("process.bpmn", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "process.bpmn", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "process.bpmn")
}

func TestNewValidationErrorNilWithoutErrors(t *testing.T) {
	t.Parallel()

	result := validate.Result{
		{Severity: validate.SeverityWarning, Message: "missing default flow"},
	}
	require.Nil(t, NewValidationError(result))
}

func TestNewValidationErrorAggregatesDiagnostics(t *testing.T) {
	t.Parallel()

	result := validate.Result{
		{Severity: validate.SeverityError, ElementRef: "process", Message: "BPMN process id is required."},
	}
	err := NewValidationError(result)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Result, 1)
	require.Contains(t, err.Error(), "BPMN process id is required.")
}

func TestCompileErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewCompileError("foo", "JSON path query 'foo' is not valid!")
	require.Contains(t, err.Error(), "foo")
	require.Contains(t, err.Error(), "not valid")
}
