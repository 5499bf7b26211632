package validate

import (
	"fmt"

	"github.com/cuulee/zb-bpmn-model/internal/model"
)

// Validate runs the executable-subset semantic checks over a transformed
// Definitions and returns the diagnostics in process order, then the order
// of each process's Elements (grouped by kind by the Transformer), then
// rule-listed order.
func Validate(defs *model.Definitions) Result {
	var out Result
	if defs == nil {
		return out
	}

	anyExecutable := false
	for _, proc := range defs.Processes {
		if proc.IsExecutable {
			anyExecutable = true
			break
		}
	}
	if !anyExecutable {
		return append(out, Diagnostic{
			Severity:   SeverityError,
			ElementRef: "bpmn:definitions",
			Message:    "BPMN model must contain at least one executable process.",
		})
	}

	for _, proc := range defs.Processes {
		if !proc.IsExecutable {
			continue
		}
		out = append(out, validateProcess(proc)...)
	}
	return out
}

func validateProcess(proc *model.Process) Result {
	var out Result

	if missing, tooLong := idViolation(proc.BpmnProcessID); missing || tooLong {
		if missing {
			out = append(out, Diagnostic{Severity: SeverityError, ElementRef: "bpmn:process", Message: "BPMN process id is required."})
		}
		if tooLong {
			out = append(out, Diagnostic{
				Severity:   SeverityError,
				ElementRef: "bpmn:process",
				Message:    fmt.Sprintf("BPMN process id must not be longer than %d.", model.IDMaxLen),
			})
		}
	}

	if proc.InitialStartEvent == nil {
		out = append(out, Diagnostic{
			Severity:   SeverityError,
			ElementRef: "bpmn:process",
			Message:    "The process must contain at least one none start event.",
		})
	}

	for _, el := range proc.Elements {
		out = append(out, validateFlowElement(el)...)
	}
	return out
}

func validateFlowElement(el *model.FlowElement) Result {
	var out Result
	ref := elementRef(el)

	if missing, tooLong := idViolation(el.ID); missing || tooLong {
		if missing {
			out = append(out, Diagnostic{Severity: SeverityError, ElementRef: ref, Line: el.Line, Message: "Activity id is required."})
		}
		if tooLong {
			out = append(out, Diagnostic{
				Severity:   SeverityError,
				ElementRef: ref,
				Line:       el.Line,
				Message:    fmt.Sprintf("Activity id must not be longer than %d.", model.IDMaxLen),
			})
		}
	}

	switch el.Kind {
	case model.KindStartEvent, model.KindEndEvent, model.KindServiceTask:
		out = append(out, validateNonGatewayNode(el, ref)...)
	}

	switch el.Kind {
	case model.KindServiceTask:
		out = append(out, validateServiceTask(el, ref)...)
	case model.KindEndEvent:
		out = append(out, validateEndEvent(el, ref)...)
	case model.KindExclusiveGateway:
		out = append(out, validateExclusiveGateway(el, ref)...)
	}

	return out
}

func validateNonGatewayNode(el *model.FlowElement, ref string) Result {
	var out Result
	if el.Node == nil {
		return out
	}

	if len(el.Node.Outgoing) > 1 {
		out = append(out, Diagnostic{
			Severity:   SeverityError,
			ElementRef: ref,
			Line:       el.Line,
			Message:    "The flow element must not have more than one outgoing sequence flow.",
		})
	}

	for _, in := range el.Node.Incoming {
		if in.Flow == nil || in.Flow.SourceNode == nil {
			out = append(out, Diagnostic{
				Severity:   SeverityError,
				ElementRef: ref,
				Line:       el.Line,
				Message:    "Cannot find source of sequence flow.",
			})
		}
	}
	for _, o := range el.Node.Outgoing {
		if o.Flow == nil || o.Flow.TargetNode == nil {
			out = append(out, Diagnostic{
				Severity:   SeverityError,
				ElementRef: ref,
				Line:       el.Line,
				Message:    "Cannot find target of sequence flow.",
			})
		}
	}
	return out
}

func validateEndEvent(el *model.FlowElement, ref string) Result {
	var out Result
	if el.Node != nil && len(el.Node.Outgoing) != 0 {
		out = append(out, Diagnostic{
			Severity:   SeverityError,
			ElementRef: ref,
			Line:       el.Line,
			Message:    "An end event must not have an outgoing sequence flow.",
		})
	}
	return out
}

func validateServiceTask(el *model.FlowElement, ref string) Result {
	var out Result
	if el.Node == nil || el.Node.Task == nil || el.Node.Task.Extensions == nil {
		out = append(out, Diagnostic{
			Severity:   SeverityError,
			ElementRef: ref,
			Line:       el.Line,
			Message:    "A service task must contain a 'taskDefinition' extension element.",
		})
		return out
	}

	ext := el.Node.Task.Extensions

	if ext.TaskDefinition == nil {
		out = append(out, Diagnostic{
			Severity:   SeverityError,
			ElementRef: ref,
			Line:       el.Line,
			Message:    "A service task must contain a 'taskDefinition' extension element.",
		})
	} else {
		if ext.TaskDefinition.Type == "" {
			out = append(out, Diagnostic{Severity: SeverityError, ElementRef: ref, Line: el.Line, Message: "TaskDefinition type is required."})
		}
		if ext.TaskDefinition.Retries < 1 {
			out = append(out, Diagnostic{Severity: SeverityError, ElementRef: ref, Line: el.Line, Message: "TaskDefinition retries must be at least 1."})
		}
	}

	if ext.TaskHeaders != nil {
		for _, h := range ext.TaskHeaders.Headers {
			if h.Key == "" {
				out = append(out, Diagnostic{Severity: SeverityError, ElementRef: ref, Line: el.Line, Message: "Task header key is required."})
			}
			if h.Value == "" {
				out = append(out, Diagnostic{Severity: SeverityError, ElementRef: ref, Line: el.Line, Message: "Task header value is required."})
			}
		}
	}

	if ext.IOMapping != nil {
		out = append(out, validateIOMapping(ext.IOMapping, ref, el.Line)...)
	}

	return out
}

func validateIOMapping(io *model.InputOutputMapping, ref string, line int) Result {
	var out Result

	if io.OutputBehaviorRaw != "" {
		out = append(out, Diagnostic{
			Severity:   SeverityError,
			ElementRef: ref,
			Line:       line,
			Message:    fmt.Sprintf("Output behavior '%s' is not supported. Valid values are [MERGE, OVERWRITE, NONE].", io.OutputBehaviorRaw),
		})
	}

	if io.OutputBehavior == model.OutputBehaviorNone && len(io.Outputs) > 0 {
		out = append(out, Diagnostic{
			Severity:   SeverityError,
			ElementRef: ref,
			Line:       line,
			Message:    "Output behavior 'NONE' must not be combined with output mappings.",
		})
	}

	out = append(out, validateMappingSet("Source", io.Inputs, io.CompiledInputs, ref, line)...)
	out = append(out, validateMappingSet("Target", io.Outputs, io.CompiledOutputs, ref, line)...)

	return out
}

func validateMappingSet(label string, raw []model.Mapping, compiled []model.CompiledMapping, ref string, line int) Result {
	var out Result

	for _, m := range raw {
		if isProhibitedExpression(m.SourcePath) {
			out = append(out, Diagnostic{
				Severity:   SeverityError,
				ElementRef: ref,
				Line:       line,
				Message:    fmt.Sprintf("%s mapping: JSON path '%s' contains prohibited expression", label, m.SourcePath),
			})
		}
		if isProhibitedExpression(m.TargetPath) {
			out = append(out, Diagnostic{
				Severity:   SeverityError,
				ElementRef: ref,
				Line:       line,
				Message:    fmt.Sprintf("%s mapping: JSON path '%s' contains prohibited expression", label, m.TargetPath),
			})
		}
	}

	if len(raw) >= 2 {
		for _, m := range raw {
			if m.TargetPath == "$" {
				out = append(out, Diagnostic{
					Severity:   SeverityError,
					ElementRef: ref,
					Line:       line,
					Message:    fmt.Sprintf("%s mapping must not target the root path '$' when more than one mapping is present.", label),
				})
			}
		}
	}

	for _, cm := range compiled {
		if cm.Source == nil {
			out = append(out, Diagnostic{
				Severity:   SeverityError,
				ElementRef: ref,
				Line:       line,
				Message:    cm.CompileErr,
			})
		}
	}

	return out
}

func validateExclusiveGateway(el *model.FlowElement, ref string) Result {
	var out Result
	if el.Node == nil || el.Node.Gateway == nil {
		return out
	}
	gw := el.Node.Gateway

	if el.Aspect != model.AspectExclusiveSplit {
		if len(el.Node.Outgoing) > 1 {
			out = append(out, Diagnostic{
				Severity:   SeverityError,
				ElementRef: ref,
				Line:       el.Line,
				Message:    "An exclusive gateway with more than one outgoing sequence flow must have conditions on the sequence flows.",
			})
		}
		return out
	}

	if gw.DefaultFlow != nil {
		if gw.DefaultFlow.HasCondition() {
			out = append(out, Diagnostic{
				Severity:   SeverityError,
				ElementRef: ref,
				Line:       el.Line,
				Message:    "A default sequence flow must not have a condition.",
			})
		}
		if !containsFlow(el.Node.Outgoing, gw.DefaultFlow) {
			out = append(out, Diagnostic{
				Severity:   SeverityError,
				ElementRef: ref,
				Line:       el.Line,
				Message:    "The default sequence flow must be one of the gateway's outgoing sequence flows.",
			})
		}
	} else {
		out = append(out, Diagnostic{
			Severity:   SeverityWarning,
			ElementRef: ref,
			Line:       el.Line,
			Message:    "An exclusive gateway should have a default sequence flow without condition.",
		})
	}

	for _, flow := range gw.OutgoingWithConditions {
		if flow.Flow != nil && flow.Flow.Condition != nil && flow.Flow.Condition.Compiled != nil && !flow.Flow.Condition.Compiled.Valid {
			out = append(out, Diagnostic{
				Severity:   SeverityError,
				ElementRef: ref,
				Line:       flow.Line,
				Message:    fmt.Sprintf("Condition expression %q is invalid: %s", flow.Flow.Condition.Text, flow.Flow.Condition.Compiled.Reason),
			})
		}
	}

	for _, flow := range el.Node.Outgoing {
		if flow == gw.DefaultFlow {
			continue
		}
		if !flow.HasCondition() {
			out = append(out, Diagnostic{
				Severity:   SeverityError,
				ElementRef: ref,
				Line:       flow.Line,
				Message:    "A sequence flow on an exclusive gateway must have a condition, if it is not the default flow.",
			})
		}
	}

	return out
}

func containsFlow(flows []*model.FlowElement, target *model.FlowElement) bool {
	for _, f := range flows {
		if f == target {
			return true
		}
	}
	return false
}

func elementRef(el *model.FlowElement) string {
	return "bpmn:" + el.Kind.String()
}
