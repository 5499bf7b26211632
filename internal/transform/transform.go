// Package transform implements the post-construction graph closure run
// over a raw workflow model produced by either the builder or the XML
// parser bridge: link resolution, default extension insertion,
// compilation of conditions and JSON-path mappings, msgpack
// pre-encoding of task headers, and aspect classification.
package transform

import (
	"github.com/cuulee/zb-bpmn-model/internal/conditionc"
	"github.com/cuulee/zb-bpmn-model/internal/jsonpathc"
	"github.com/cuulee/zb-bpmn-model/internal/model"
	"github.com/cuulee/zb-bpmn-model/internal/msgpackenc"
)

// Transform runs the transformer over every process in raw and returns the
// same root, mutated in place. It is deterministic and idempotent:
// running it twice over an already-transformed Definitions yields an
// equivalent result, provided the external compilers are pure.
func Transform(raw *model.Definitions) *model.Definitions {
	if raw == nil {
		return raw
	}
	processMap := make(map[string]*model.Process, len(raw.Processes))
	for _, proc := range raw.Processes {
		transformProcess(proc)
		processMap[proc.BpmnProcessID] = proc
	}
	raw.ProcessMap = processMap
	return raw
}

func transformProcess(proc *model.Process) {
	collectFlowElements(proc)
	selectInitialStartEvent(proc)
	linkSequenceFlows(proc)

	for _, el := range proc.Elements {
		if el.Kind != model.KindSequenceFlow || el.Flow == nil || el.Flow.Condition == nil {
			continue
		}
		el.Flow.Condition.Compiled = conditionc.Compile(el.Flow.Condition.Text)
	}

	for _, el := range proc.Elements {
		if el.Kind != model.KindServiceTask || el.Node == nil || el.Node.Task == nil {
			continue
		}
		normalizeServiceTask(el.Node.Task)
	}

	for _, el := range proc.Elements {
		if el.Kind != model.KindExclusiveGateway || el.Node == nil {
			continue
		}
		annotateGateway(el)
	}

	for _, el := range proc.Elements {
		classifyAspect(el)
	}
}

// collectFlowElements reorders proc.Elements into the fixed group order
// (start events, end events, sequence flows, service tasks, exclusive
// gateways), preserving relative order within each group, and rebuilds
// flow_element_map (last write wins on duplicate id).
func collectFlowElements(proc *model.Process) {
	var starts, ends, flows, tasks, gateways []*model.FlowElement
	for _, el := range proc.Elements {
		switch el.Kind {
		case model.KindStartEvent:
			starts = append(starts, el)
		case model.KindEndEvent:
			ends = append(ends, el)
		case model.KindSequenceFlow:
			flows = append(flows, el)
		case model.KindServiceTask:
			tasks = append(tasks, el)
		case model.KindExclusiveGateway:
			gateways = append(gateways, el)
		}
	}

	ordered := make([]*model.FlowElement, 0, len(proc.Elements))
	ordered = append(ordered, starts...)
	ordered = append(ordered, ends...)
	ordered = append(ordered, flows...)
	ordered = append(ordered, tasks...)
	ordered = append(ordered, gateways...)
	proc.Elements = ordered

	elementMap := make(map[string]*model.FlowElement, len(ordered))
	for _, el := range ordered {
		elementMap[el.ID] = el
	}
	proc.ElementMap = elementMap
}

func selectInitialStartEvent(proc *model.Process) {
	for _, el := range proc.Elements {
		if el.Kind == model.KindStartEvent {
			proc.InitialStartEvent = el
			return
		}
	}
	proc.InitialStartEvent = nil
}

func linkSequenceFlows(proc *model.Process) {
	for _, el := range proc.Elements {
		if el.Node != nil {
			el.Node.Incoming = nil
			el.Node.Outgoing = nil
		}
	}

	for _, el := range proc.Elements {
		if el.Kind != model.KindSequenceFlow || el.Flow == nil {
			continue
		}
		flow := el.Flow

		if source, ok := proc.ElementMap[flow.SourceRef]; ok {
			flow.SourceNode = source
			if source.Node != nil {
				source.Node.Outgoing = append(source.Node.Outgoing, el)
			}
		}
		if target, ok := proc.ElementMap[flow.TargetRef]; ok {
			flow.TargetNode = target
			if target.Node != nil {
				target.Node.Incoming = append(target.Node.Incoming, el)
			}
		}
	}
}

func normalizeServiceTask(task *model.ServiceTaskData) {
	if task.Extensions == nil {
		task.Extensions = &model.ExtensionElements{}
	}
	ext := task.Extensions

	if ext.TaskHeaders == nil {
		ext.TaskHeaders = &model.TaskHeaders{}
	}
	encodeHeaders(ext.TaskHeaders)

	if ext.IOMapping == nil {
		ext.IOMapping = &model.InputOutputMapping{}
	}
	compileMappings(ext.IOMapping)
}

func encodeHeaders(headers *model.TaskHeaders) {
	encHeaders := make([]msgpackenc.Header, 0, len(headers.Headers))
	for _, h := range headers.Headers {
		encHeaders = append(encHeaders, msgpackenc.Header{Key: h.Key, Value: h.Value})
	}
	headers.EncodedMsgpack = msgpackenc.EncodeHeaders(encHeaders)
}

func compileMappings(io *model.InputOutputMapping) {
	io.CompiledInputs = compileMappingSet(io.Inputs)
	io.CompiledOutputs = compileMappingSet(io.Outputs)
}

// compileMappingSet compiles each mapping's source path, including the
// root-mapping elision special case: a lone input/output whose source and
// target both equal "$" collapses to an empty array rather than a
// one-element CompiledMapping.
func compileMappingSet(mappings []model.Mapping) []model.CompiledMapping {
	if len(mappings) == 0 {
		return nil
	}
	if len(mappings) == 1 && mappings[0].SourcePath == "$" && mappings[0].TargetPath == "$" {
		return nil
	}

	out := make([]model.CompiledMapping, 0, len(mappings))
	for _, m := range mappings {
		cm := model.CompiledMapping{SourcePath: m.SourcePath, Target: m.TargetPath}
		query, err := jsonpathc.Compile(m.SourcePath)
		if err != nil {
			cm.CompileErr = err.Error()
		} else {
			cm.Source = query
		}
		out = append(out, cm)
	}
	return out
}

// classifyAspect derives a node's runtime aspect purely from its shape, in
// the priority order spec'd by §4.4 step 8: the outgoing-count/condition
// checks run before the "is ExclusiveGateway" check, so a gateway with a
// single unconditional outgoing flow (a pass-through/merge gateway) is
// TakeSequenceFlow, not ExclusiveSplit.
func classifyAspect(el *model.FlowElement) {
	if el.Node == nil {
		return
	}
	switch {
	case len(el.Node.Outgoing) == 0:
		el.Aspect = model.AspectConsumeToken
	case len(el.Node.Outgoing) == 1 && !el.Node.Outgoing[0].HasCondition():
		el.Aspect = model.AspectTakeSequenceFlow
	case el.Kind == model.KindExclusiveGateway:
		el.Aspect = model.AspectExclusiveSplit
	default:
		el.Aspect = model.AspectNone
	}
}

// annotateGateway populates OutgoingWithConditions and resolves
// DefaultFlow from DefaultFlowRef.
func annotateGateway(el *model.FlowElement) {
	gw := el.Node.Gateway
	if gw == nil {
		gw = &model.GatewayData{}
		el.Node.Gateway = gw
	}

	var withConditions []*model.FlowElement
	for _, flow := range el.Node.Outgoing {
		if flow.HasCondition() {
			withConditions = append(withConditions, flow)
		}
	}
	gw.OutgoingWithConditions = withConditions

	if gw.DefaultFlow == nil && gw.DefaultFlowRef != "" {
		for _, flow := range el.Node.Outgoing {
			if flow.ID == gw.DefaultFlowRef {
				gw.DefaultFlow = flow
				break
			}
		}
	}
}
