package model

// Process is a single BPMN process: a flat arena of FlowElements plus the
// indices the Transformer builds over it. Elements owns every StartEvent,
// EndEvent, ServiceTask, ExclusiveGateway, and SequenceFlow that belongs to
// the process; all cross-element references (SequenceFlow.SourceNode/
// TargetNode, Gateway.DefaultFlow, NodeData.Incoming/Outgoing) are
// non-owning pointers into this slice, so the process can be torn down by
// simply discarding it, with no reference cycles to break.
type Process struct {
	BpmnProcessID string
	IsExecutable  bool

	Elements []*FlowElement

	// ElementMap indexes Elements by ID. Populated by the Transformer (spec
	// §4.4 step 1); nil on a freshly parsed or built Process.
	ElementMap map[string]*FlowElement

	// InitialStartEvent is the process's entry point: the first StartEvent
	// in Elements, chosen by the Transformer. Nil until the Transformer
	// runs, and nil permanently on a process with no StartEvent, which the
	// Validator rejects.
	InitialStartEvent *FlowElement

	// UnknownXML holds the verbatim source bytes of any BPMN element the
	// parser bridge read as a direct child of this process but did not
	// recognize as one of the five executable-subset flow element kinds
	// (e.g. bpmn:textAnnotation, bpmn:association). The reader does not
	// interpret them; the writer re-emits them unchanged so a read/write
	// round trip does not silently drop diagram-adjacent markup it cannot
	// understand. Nil for a Process built via the Builder.
	UnknownXML [][]byte
}

// FindElement looks up a FlowElement by ID, preferring the transformed
// index when present and falling back to a linear scan over Elements
// otherwise (so the lookup also works on a raw, untransformed Process).
func (p *Process) FindElement(id string) (*FlowElement, bool) {
	if p == nil {
		return nil, false
	}
	if p.ElementMap != nil {
		el, ok := p.ElementMap[id]
		return el, ok
	}
	for _, el := range p.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return nil, false
}
