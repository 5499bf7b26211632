// Package builder is the fluent, programmatic constructor for a workflow
// Definitions: it is the Go-native surface both direct callers and the
// YAML translator issue calls against. IDs are auto-generated when
// omitted using a monotonically increasing per-builder sequence; implicit
// sequence flows between successive nodes are wired automatically unless
// the caller supplies an explicit one.
package builder

import (
	"fmt"

	zberrors "github.com/cuulee/zb-bpmn-model/pkg/errors"

	"github.com/cuulee/zb-bpmn-model/internal/model"
	"github.com/cuulee/zb-bpmn-model/internal/transform"
	"github.com/cuulee/zb-bpmn-model/internal/validate"
)

// ProcessBuilder incrementally constructs a single executable Process. A
// zero-value ProcessBuilder is not usable; obtain one via
// NewExecutableWorkflow.
type ProcessBuilder struct {
	defs *model.Definitions
	proc *model.Process

	idSeq int

	// cursor is the implicit predecessor: the next node-adding call wires
	// an auto-generated sequence flow from cursor to the new node, unless
	// pendingFlow is set.
	cursor *model.FlowElement

	// pendingFlow is an explicitly created SequenceFlow awaiting a target,
	// set by SequenceFlow and consumed by the next node-adding call.
	pendingFlow *model.FlowElement
}

// NewExecutableWorkflow initializes a Definitions with a single executable
// Process and returns its ProcessBuilder.
func NewExecutableWorkflow(id string) *ProcessBuilder {
	proc := &model.Process{BpmnProcessID: id, IsExecutable: true}
	return &ProcessBuilder{
		defs: &model.Definitions{Processes: []*model.Process{proc}},
		proc: proc,
	}
}

func (b *ProcessBuilder) nextID() string {
	b.idSeq++
	return fmt.Sprintf("_id_%d", b.idSeq)
}

func resolveID(b *ProcessBuilder, id []string) string {
	if len(id) > 0 {
		return id[0]
	}
	return b.nextID()
}

// addNode appends a FlowNode-capable element, wiring it to the current
// cursor (explicit pending flow if one is open, else an auto-generated
// implicit flow), and advances the cursor to the new node.
func (b *ProcessBuilder) addNode(kind model.ElementKind, id string, node *model.NodeData) *model.FlowElement {
	el := &model.FlowElement{Kind: kind, ID: id, Node: node}
	b.proc.Elements = append(b.proc.Elements, el)

	switch {
	case b.pendingFlow != nil:
		b.pendingFlow.Flow.TargetRef = id
		b.pendingFlow = nil
	case b.cursor != nil:
		flow := &model.FlowElement{
			Kind: model.KindSequenceFlow,
			ID:   b.nextID(),
			Flow: &model.SequenceFlowData{SourceRef: b.cursor.ID, TargetRef: id},
		}
		b.proc.Elements = append(b.proc.Elements, flow)
	}

	b.cursor = el
	return el
}

// StartEvent appends a none start event. id is auto-generated when
// omitted.
func (b *ProcessBuilder) StartEvent(id ...string) *ProcessBuilder {
	b.addNode(model.KindStartEvent, resolveID(b, id), &model.NodeData{})
	return b
}

// EndEvent appends an end event.
func (b *ProcessBuilder) EndEvent(id ...string) *ProcessBuilder {
	b.addNode(model.KindEndEvent, resolveID(b, id), &model.NodeData{})
	return b
}

// ExclusiveGateway appends an exclusive gateway.
func (b *ProcessBuilder) ExclusiveGateway(id ...string) *ProcessBuilder {
	b.addNode(model.KindExclusiveGateway, resolveID(b, id), &model.NodeData{Gateway: &model.GatewayData{}})
	return b
}

// ServiceTask appends a service task and returns a ServiceTaskBuilder for
// configuring its extension elements.
func (b *ProcessBuilder) ServiceTask(id ...string) *ServiceTaskBuilder {
	el := b.addNode(model.KindServiceTask, resolveID(b, id), &model.NodeData{
		Task: &model.ServiceTaskData{Extensions: &model.ExtensionElements{
			TaskHeaders: &model.TaskHeaders{},
			IOMapping:   &model.InputOutputMapping{},
		}},
	})
	return &ServiceTaskBuilder{pb: b, task: el}
}

// flowConfig accumulates the SequenceFlowOptions applied to one flow.
type flowConfig struct {
	conditionText string
	hasCondition  bool
	isDefault     bool
}

// SequenceFlowOption configures a SequenceFlow created via SequenceFlow.
type SequenceFlowOption func(*flowConfig)

// Condition attaches a condition expression to a sequence flow.
func Condition(text string) SequenceFlowOption {
	return func(c *flowConfig) {
		c.conditionText = text
		c.hasCondition = true
	}
}

// DefaultFlow marks the flow as its gateway's default flow. Only
// meaningful when the flow's source is an ExclusiveGateway.
func DefaultFlow() SequenceFlowOption {
	return func(c *flowConfig) { c.isDefault = true }
}

// SequenceFlow opens an explicit sequence flow from the current cursor,
// awaiting a target supplied by the next node-adding call. Use From to
// branch a second explicit flow off an earlier node (e.g. an exclusive
// gateway's second outgoing flow).
func (b *ProcessBuilder) SequenceFlow(id string, opts ...SequenceFlowOption) *ProcessBuilder {
	if id == "" {
		id = b.nextID()
	}
	flow := &model.FlowElement{
		Kind: model.KindSequenceFlow,
		ID:   id,
		Flow: &model.SequenceFlowData{SourceRef: b.cursor.ID},
	}

	cfg := &flowConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.hasCondition {
		flow.Flow.Condition = &model.ConditionExpression{Text: cfg.conditionText}
	}
	if cfg.isDefault && b.cursor.Node != nil && b.cursor.Node.Gateway != nil {
		b.cursor.Node.Gateway.DefaultFlowRef = id
	}

	b.proc.Elements = append(b.proc.Elements, flow)
	b.pendingFlow = flow
	return b
}

// From resets the builder's cursor to a previously added node without
// creating a sequence flow, so a second branch can be built off it (e.g.
// an exclusive gateway's other outgoing flow).
func (b *ProcessBuilder) From(id string) *ProcessBuilder {
	if el, ok := b.proc.FindElement(id); ok {
		b.cursor = el
	}
	return b
}

// Done finalizes construction: it runs the Transformer and Validator and
// returns the finished Definitions. A validation failure fails with a
// ValidationError carrying the diagnostic bag.
func (b *ProcessBuilder) Done() (*model.Definitions, error) {
	transform.Transform(b.defs)
	result := validate.Validate(b.defs)
	if err := zberrors.NewValidationError(result); err != nil {
		return nil, err
	}
	return b.defs, nil
}
