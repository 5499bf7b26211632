// Package xmlio is the BPMN XML parser bridge: a streaming pull reader
// that materializes the tagged FlowElement variants directly from XML
// tokens, and the symmetric writer that serializes a transformed
// Definitions back to BPMN XML. It performs no link resolution or
// defaulting — that is the Transformer's job — so the Definitions it
// produces is raw.
package xmlio

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cuulee/zb-bpmn-model/internal/model"
	zberrors "github.com/cuulee/zb-bpmn-model/pkg/errors"
)

const (
	bpmnNS  = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	zeebeNS = "http://camunda.org/schema/zeebe/1.0"
)

// ReadXML parses BPMN 2.0 XML restricted to the executable subset into a
// raw Definitions: SequenceFlow back-references are unresolved and
// derived fields (aspect, compiled forms, encoded headers) are empty.
func ReadXML(data []byte, sourcePath string) (*model.Definitions, error) {
	r := &reader{
		data:    data,
		dec:     xml.NewDecoder(bytes.NewReader(data)),
		path:    sourcePath,
		defs:    &model.Definitions{},
	}
	if err := r.run(); err != nil {
		return nil, err
	}
	return r.defs, nil
}

type reader struct {
	data []byte
	dec  *xml.Decoder
	path string

	defs *model.Definitions

	proc *model.Process
	node *model.FlowElement // current FlowNode or SequenceFlow being built

	inCondition   bool
	conditionText strings.Builder

	// captureDepth/captureStart track verbatim capture of an unrecognized
	// BPMN element (and its full subtree) so the writer can re-emit it.
	// captureDepth is 0 outside a capture; it counts nested start/end
	// elements so a capture only closes on its own matching end tag.
	captureDepth int
	captureStart int
}

func (r *reader) line() int {
	offset := int(r.dec.InputOffset())
	if offset > len(r.data) {
		offset = len(r.data)
	}
	return bytes.Count(r.data[:offset], []byte("\n")) + 1
}

func (r *reader) parseErr(format string, args ...interface{}) error {
	return zberrors.NewParseError(r.path, r.line(), fmt.Errorf(format, args...))
}

func (r *reader) run() error {
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return zberrors.NewParseError(r.path, r.line(), err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if r.captureDepth > 0 {
				r.captureDepth++
				continue
			}
			if err := r.handleStart(t); err != nil {
				return err
			}
		case xml.EndElement:
			if r.captureDepth > 0 {
				r.captureDepth--
				if r.captureDepth == 0 {
					end := int(r.dec.InputOffset())
					if end > len(r.data) {
						end = len(r.data)
					}
					if r.proc != nil {
						r.proc.UnknownXML = append(r.proc.UnknownXML, append([]byte(nil), r.data[r.captureStart:end]...))
					}
				}
				continue
			}
			if err := r.handleEnd(t); err != nil {
				return err
			}
		case xml.CharData:
			if r.captureDepth > 0 {
				continue
			}
			if r.inCondition {
				r.conditionText.Write(t)
			}
		}
	}
	return nil
}

// lastOpenTag returns the offset of the '<' that opens the tag ending at
// or before offset. Valid XML escapes any literal '<' inside attribute
// values, so the nearest preceding '<' is always the tag's own opener.
func lastOpenTag(data []byte, offset int) int {
	if offset > len(data) {
		offset = len(data)
	}
	idx := bytes.LastIndexByte(data[:offset], '<')
	if idx < 0 {
		return offset
	}
	return idx
}

func attr(start xml.StartElement, local string) (string, bool) {
	for _, a := range start.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (r *reader) handleStart(start xml.StartElement) error {
	ns := start.Name.Space
	local := start.Name.Local

	switch {
	case ns == bpmnNS && local == "definitions":
		return nil
	case ns == bpmnNS && local == "process":
		id, _ := attr(start, "id")
		isExecutable, _ := attr(start, "isExecutable")
		proc := &model.Process{BpmnProcessID: id, IsExecutable: isExecutable == "true"}
		r.defs.Processes = append(r.defs.Processes, proc)
		r.proc = proc
		return nil
	case ns == bpmnNS && local == "startEvent":
		return r.startNode(model.KindStartEvent, start)
	case ns == bpmnNS && local == "endEvent":
		return r.startNode(model.KindEndEvent, start)
	case ns == bpmnNS && local == "serviceTask":
		return r.startNode(model.KindServiceTask, start)
	case ns == bpmnNS && local == "exclusiveGateway":
		if err := r.startNode(model.KindExclusiveGateway, start); err != nil {
			return err
		}
		defaultRef, ok := attr(start, "default")
		if ok {
			r.node.Node.Gateway.DefaultFlowRef = defaultRef
		}
		return nil
	case ns == bpmnNS && local == "sequenceFlow":
		return r.startSequenceFlow(start)
	case ns == bpmnNS && local == "conditionExpression":
		r.inCondition = true
		r.conditionText.Reset()
		return nil
	case ns == bpmnNS && local == "extensionElements":
		return nil
	case ns == zeebeNS && local == "taskDefinition":
		return r.readTaskDefinition(start)
	case ns == zeebeNS && local == "taskHeaders":
		return nil
	case ns == zeebeNS && local == "header":
		return r.readHeader(start)
	case ns == zeebeNS && local == "ioMapping":
		return r.readIOMapping(start)
	case ns == zeebeNS && local == "input":
		return r.readMapping(start, true)
	case ns == zeebeNS && local == "output":
		return r.readMapping(start, false)
	case ns == zeebeNS:
		return r.parseErr("unknown zeebe extension element %q", local)
	default:
		// Unknown BPMN-namespace or unnamespaced elements are ignored for
		// read, per the "unknown elements tolerated" rule. When the
		// element is a direct child of a process, capture its full
		// subtree verbatim so the writer can preserve it.
		if r.proc != nil {
			r.captureDepth = 1
			r.captureStart = lastOpenTag(r.data, int(r.dec.InputOffset()))
		}
		return nil
	}
}

func (r *reader) startNode(kind model.ElementKind, start xml.StartElement) error {
	id, _ := attr(start, "id")
	name, _ := attr(start, "name")
	el := &model.FlowElement{Kind: kind, ID: id, Name: name, Line: r.line(), Node: &model.NodeData{}}
	if kind == model.KindExclusiveGateway {
		el.Node.Gateway = &model.GatewayData{}
	}
	if kind == model.KindServiceTask {
		el.Node.Task = &model.ServiceTaskData{}
	}
	r.proc.Elements = append(r.proc.Elements, el)
	r.node = el
	return nil
}

func (r *reader) startSequenceFlow(start xml.StartElement) error {
	id, _ := attr(start, "id")
	sourceRef, _ := attr(start, "sourceRef")
	targetRef, _ := attr(start, "targetRef")
	el := &model.FlowElement{
		Kind: model.KindSequenceFlow, ID: id, Line: r.line(),
		Flow: &model.SequenceFlowData{SourceRef: sourceRef, TargetRef: targetRef},
	}
	r.proc.Elements = append(r.proc.Elements, el)
	r.node = el
	return nil
}

func (r *reader) readTaskDefinition(start xml.StartElement) error {
	jobType, _ := attr(start, "type")
	retries := model.DefaultRetries
	if raw, ok := attr(start, "retries"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return r.parseErr("taskDefinition retries %q is not an integer", raw)
		}
		retries = int32(n)
	}
	r.ext().TaskDefinition = &model.TaskDefinition{Type: jobType, Retries: retries}
	return nil
}

func (r *reader) readHeader(start xml.StartElement) error {
	key, _ := attr(start, "key")
	value, _ := attr(start, "value")
	headers := r.ext().TaskHeaders
	if headers == nil {
		headers = &model.TaskHeaders{}
		r.ext().TaskHeaders = headers
	}
	headers.Headers = append(headers.Headers, model.HeaderEntry{Key: key, Value: value})
	return nil
}

// readIOMapping performs no validation of outputBehavior: an unrecognized
// value is carried through as OutputBehaviorRaw for the Validator to
// report, per the parser's "no validation, no resolution" contract.
func (r *reader) readIOMapping(start xml.StartElement) error {
	io := &model.InputOutputMapping{OutputBehavior: model.OutputBehaviorMerge}
	if raw, ok := attr(start, "outputBehavior"); ok {
		behavior, valid := model.ParseOutputBehavior(raw)
		if !valid {
			io.OutputBehaviorRaw = raw
		} else {
			io.OutputBehavior = behavior
		}
	}
	r.ext().IOMapping = io
	return nil
}

func (r *reader) readMapping(start xml.StartElement, isInput bool) error {
	source, _ := attr(start, "source")
	target, _ := attr(start, "target")
	io := r.ext().IOMapping
	if io == nil {
		io = &model.InputOutputMapping{OutputBehavior: model.OutputBehaviorMerge}
		r.ext().IOMapping = io
	}
	m := model.Mapping{SourcePath: source, TargetPath: target}
	if isInput {
		io.Inputs = append(io.Inputs, m)
	} else {
		io.Outputs = append(io.Outputs, m)
	}
	return nil
}

// ext returns the ExtensionElements for the service task currently being
// parsed, creating it on first use.
func (r *reader) ext() *model.ExtensionElements {
	if r.node.Node.Task.Extensions == nil {
		r.node.Node.Task.Extensions = &model.ExtensionElements{}
	}
	return r.node.Node.Task.Extensions
}

func (r *reader) handleEnd(end xml.EndElement) error {
	switch {
	case end.Name.Space == bpmnNS && end.Name.Local == "conditionExpression":
		r.inCondition = false
		if r.node != nil && r.node.Flow != nil {
			r.node.Flow.Condition = &model.ConditionExpression{Text: r.conditionText.String()}
		}
	case end.Name.Space == bpmnNS && end.Name.Local == "process":
		r.proc = nil
	}
	return nil
}
