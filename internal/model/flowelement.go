package model

// FlowElement is the tagged-sum representation of every executable-subset
// BPMN element: StartEvent, EndEvent, ServiceTask, ExclusiveGateway share
// the FlowNode capability via Node; SequenceFlow is a sibling variant via
// Flow. This replaces the source hierarchy's FlowElement -> FlowNode ->
// {StartEvent, EndEvent, ServiceTask, ExclusiveGateway} inheritance chain
// with a single struct switched on Kind, so no runtime type assertion is
// needed to tell a FlowNode from a SequenceFlow.
type FlowElement struct {
	Kind   ElementKind
	ID     string
	Name   string
	Aspect Aspect

	// Line is the 1-based source line the element was declared on, when
	// known (populated only by the XML parser bridge; zero for elements
	// produced by the Builder).
	Line int

	// Node is non-nil for StartEvent, EndEvent, ServiceTask, and
	// ExclusiveGateway kinds.
	Node *NodeData
	// Flow is non-nil for the SequenceFlow kind.
	Flow *SequenceFlowData
}

// NodeData is the FlowNode capability: the incoming/outgoing sequence flow
// back-references plus any kind-specific payload. Back-references are
// pointers into the owning Process's Elements slice (an arena), set only
// by the Transformer; they are nil/empty on a freshly parsed or built
// model.
type NodeData struct {
	Incoming []*FlowElement
	Outgoing []*FlowElement

	// Task is non-nil only when the owning FlowElement.Kind is
	// KindServiceTask.
	Task *ServiceTaskData
	// Gateway is non-nil only when the owning FlowElement.Kind is
	// KindExclusiveGateway.
	Gateway *GatewayData
}

// ServiceTaskData carries a ServiceTask's engine extension elements.
type ServiceTaskData struct {
	Extensions *ExtensionElements
}

// GatewayData carries an ExclusiveGateway's default-flow configuration and
// the Transformer-computed subset of outgoing flows that carry conditions.
type GatewayData struct {
	DefaultFlowRef string
	DefaultFlow    *FlowElement

	OutgoingWithConditions []*FlowElement
}

// SequenceFlowData carries a SequenceFlow's source/target references, the
// Transformer-resolved node back-references, and an optional condition.
type SequenceFlowData struct {
	SourceRef string
	TargetRef string

	SourceNode *FlowElement
	TargetNode *FlowElement

	Condition *ConditionExpression
}

// IsNode reports whether the element carries the FlowNode capability.
func (e *FlowElement) IsNode() bool {
	return e != nil && e.Node != nil
}

// HasCondition reports whether a SequenceFlow carries a condition
// expression. Always false for non-SequenceFlow elements.
func (e *FlowElement) HasCondition() bool {
	return e != nil && e.Flow != nil && e.Flow.Condition != nil
}
