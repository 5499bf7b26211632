package model

import (
	"github.com/cuulee/zb-bpmn-model/internal/conditionc"
	"github.com/cuulee/zb-bpmn-model/internal/jsonpathc"
)

// ExtensionElements owns a ServiceTask's optional Zeebe-namespaced
// configuration. The Transformer ensures all three sub-structures are
// present (possibly empty) before the Validator runs.
type ExtensionElements struct {
	TaskDefinition *TaskDefinition
	TaskHeaders    *TaskHeaders
	IOMapping      *InputOutputMapping
}

// TaskDefinition names the job type a ServiceTask dispatches to and its
// retry budget.
type TaskDefinition struct {
	Type    string
	Retries int32
}

// DefaultRetries is the retry count a TaskDefinition receives when none is
// supplied by the source document or Builder call.
const DefaultRetries int32 = 3

// HeaderEntry is a single custom task header key/value pair.
type HeaderEntry struct {
	Key   string
	Value string
}

// TaskHeaders is the ordered set of custom headers attached to a
// ServiceTask, plus the Transformer's pre-encoded msgpack form.
type TaskHeaders struct {
	Headers []HeaderEntry

	// EncodedMsgpack is populated by the Transformer.
	EncodedMsgpack []byte
}

// Mapping is a single source/target JSON-path pair as declared in the
// source document, prior to compilation.
type Mapping struct {
	SourcePath string
	TargetPath string
}

// CompiledMapping is a Mapping after Transformer compilation. SourcePath
// is carried forward for diagnostics; Source is nil when compilation
// failed, in which case CompileErr carries the compiler's reason and the
// Validator reports it (the Transformer itself never fails on this).
type CompiledMapping struct {
	SourcePath string
	Source     *jsonpathc.Query
	CompileErr string

	Target string
}

// InputOutputMapping is a ServiceTask's variable mapping configuration.
type InputOutputMapping struct {
	Inputs  []Mapping
	Outputs []Mapping

	OutputBehavior OutputBehavior

	// OutputBehaviorRaw carries the unrecognized textual value of an
	// outputBehavior attribute/field that failed to parse into an
	// OutputBehavior variant. The parser/builder perform no validation of
	// their own, so OutputBehavior is left at its zero value
	// (OutputBehaviorMerge) and this field is set instead; the Validator
	// is the sole place that reports it. Empty when the value was absent
	// or parsed successfully.
	OutputBehaviorRaw string

	// CompiledInputs/CompiledOutputs are populated by the Transformer.
	// A lone root-to-root identity mapping collapses to an empty slice
	// rather than a one-element CompiledMapping.
	CompiledInputs  []CompiledMapping
	CompiledOutputs []CompiledMapping
}

// ConditionExpression is a SequenceFlow's condition: the raw text plus the
// Transformer's compiled form (which may be invalid; invalidity is
// reported by the Validator, not by the Transformer).
type ConditionExpression struct {
	Text     string
	Compiled *conditionc.CompiledCondition
}
