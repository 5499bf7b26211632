// Package bpmn is the public entry point for the workflow model library:
// it orchestrates the parser bridge, transformer, and validator for XML
// and YAML reads, exposes the fluent builder for programmatic
// construction, and delegates to the XML writer for serialization.
//
// A Facade value is immutable after construction (its only field is an
// optional Logger); a single instance is safely shareable only if its
// embedded compilers are thread-safe, which is not assumed.
package bpmn

import (
	"context"
	"io"
	"os"

	"github.com/cuulee/zb-bpmn-model/internal/builder"
	"github.com/cuulee/zb-bpmn-model/internal/logging"
	"github.com/cuulee/zb-bpmn-model/internal/model"
	"github.com/cuulee/zb-bpmn-model/internal/transform"
	"github.com/cuulee/zb-bpmn-model/internal/validate"
	"github.com/cuulee/zb-bpmn-model/internal/xmlio"
	zberrors "github.com/cuulee/zb-bpmn-model/pkg/errors"
)

// Type aliases re-export the typed graph so callers never import the
// internal packages directly.
type (
	Definitions        = model.Definitions
	Process            = model.Process
	FlowElement        = model.FlowElement
	NodeData           = model.NodeData
	ServiceTaskData    = model.ServiceTaskData
	GatewayData        = model.GatewayData
	SequenceFlowData   = model.SequenceFlowData
	ExtensionElements  = model.ExtensionElements
	TaskDefinition     = model.TaskDefinition
	TaskHeaders        = model.TaskHeaders
	HeaderEntry        = model.HeaderEntry
	InputOutputMapping = model.InputOutputMapping
	Mapping            = model.Mapping
	CompiledMapping    = model.CompiledMapping
	ConditionExpression = model.ConditionExpression
	ElementKind         = model.ElementKind
	Aspect              = model.Aspect
	OutputBehavior      = model.OutputBehavior

	ProcessBuilder     = builder.ProcessBuilder
	ServiceTaskBuilder = builder.ServiceTaskBuilder
	SequenceFlowOption = builder.SequenceFlowOption

	ValidationResult = validate.Result
	Diagnostic       = validate.Diagnostic
	Severity         = validate.Severity
)

// Element kind and aspect constants, re-exported for callers inspecting a
// read or built Definitions.
const (
	KindStartEvent       = model.KindStartEvent
	KindEndEvent         = model.KindEndEvent
	KindServiceTask      = model.KindServiceTask
	KindExclusiveGateway = model.KindExclusiveGateway
	KindSequenceFlow     = model.KindSequenceFlow

	AspectNone             = model.AspectNone
	AspectConsumeToken      = model.AspectConsumeToken
	AspectTakeSequenceFlow  = model.AspectTakeSequenceFlow
	AspectExclusiveSplit    = model.AspectExclusiveSplit

	OutputBehaviorMerge     = model.OutputBehaviorMerge
	OutputBehaviorOverwrite = model.OutputBehaviorOverwrite
	OutputBehaviorNone      = model.OutputBehaviorNone

	SeverityError   = validate.SeverityError
	SeverityWarning = validate.SeverityWarning
)

var (
	// Condition and DefaultFlow configure a builder sequence flow.
	Condition   = builder.Condition
	DefaultFlow = builder.DefaultFlow
)

// Logger is re-exported so callers can construct one for NewWithLogger
// without importing the internal logging package directly.
type Logger = logging.Logger

// LoggerOptions configures NewLogger.
type LoggerOptions = logging.Options

// NewLogger builds a Logger backed by charmbracelet/log.
func NewLogger(opts LoggerOptions) (Logger, error) {
	return logging.New(opts)
}

// Facade is the single public entry point over the read/build/validate/
// write pipeline. The zero value is ready to use and logs nothing.
type Facade struct {
	log logging.Logger
}

// New returns a ready-to-use Facade that discards its phase/diagnostic
// logging.
func New() Facade {
	return Facade{log: logging.NoOp()}
}

// NewWithLogger returns a Facade that logs phase boundaries at debug
// level and validation failures at warn level through log.
func NewWithLogger(log Logger) Facade {
	if log == nil {
		log = logging.NoOp()
	}
	return Facade{log: log}
}

func (f Facade) logger() logging.Logger {
	if f.log == nil {
		return logging.NoOp()
	}
	return f.log
}

// ReadXML parses, transforms, and validates a BPMN XML document from r,
// failing with a ValidationError on any ERROR diagnostic.
func (f Facade) ReadXML(r io.Reader) (*Definitions, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, zberrors.NewParseError("", 0, err)
	}
	return f.readXMLBytes(data, "")
}

// ReadXMLFile is the path-based convenience form of ReadXML.
func (f Facade) ReadXMLFile(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zberrors.NewParseError(path, 0, err)
	}
	return f.readXMLBytes(data, path)
}

func (f Facade) readXMLBytes(data []byte, path string) (*Definitions, error) {
	ctx := context.Background()
	log := f.logger().With("source", path)

	log.Debug(ctx, "parsing bpmn xml")
	raw, err := xmlio.ReadXML(data, path)
	if err != nil {
		return nil, err
	}

	log.Debug(ctx, "transforming definitions")
	transform.Transform(raw)

	log.Debug(ctx, "validating definitions")
	result := validate.Validate(raw)
	if err := zberrors.NewValidationError(result); err != nil {
		log.Warn(ctx, "validation failed", "errors", len(result.Errors()))
		return nil, err
	}
	return raw, nil
}

// ReadYAML parses the YAML task-list surface into Builder calls and
// finalizes via the same transform+validate pipeline.
func (f Facade) ReadYAML(r io.Reader) (*Definitions, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, zberrors.NewParseError("", 0, err)
	}
	return f.translateYAML(data)
}

// ReadYAMLFile is the path-based convenience form of ReadYAML.
func (f Facade) ReadYAMLFile(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zberrors.NewParseError(path, 0, err)
	}
	return f.translateYAML(data)
}

func (f Facade) translateYAML(data []byte) (*Definitions, error) {
	ctx := context.Background()
	log := f.logger()

	log.Debug(ctx, "parsing bpmn yaml")
	defs, err := builder.Translate(data)
	if err != nil {
		if _, ok := err.(*zberrors.ValidationError); ok {
			log.Warn(ctx, "validation failed")
		}
		return nil, err
	}
	return defs, nil
}

// CreateExecutableWorkflow starts a fluent, programmatic build of a new
// executable Process.
func (Facade) CreateExecutableWorkflow(id string) *ProcessBuilder {
	return builder.NewExecutableWorkflow(id)
}

// Validate re-runs the Transformer idempotently and returns the
// Validator's diagnostics without raising.
func (f Facade) Validate(defs *Definitions) ValidationResult {
	ctx := context.Background()
	log := f.logger()

	log.Debug(ctx, "transforming definitions")
	transform.Transform(defs)

	log.Debug(ctx, "validating definitions")
	result := validate.Validate(defs)
	if result.HasErrors() {
		log.Warn(ctx, "validation failed", "errors", len(result.Errors()))
	}
	return result
}

// WriteXML serializes a transformed Definitions back to BPMN XML.
func (f Facade) WriteXML(defs *Definitions) ([]byte, error) {
	f.logger().Debug(context.Background(), "writing bpmn xml")
	return xmlio.WriteXML(defs)
}
