package xmlio

import (
	"bytes"
	"encoding/xml"
	"strconv"

	"github.com/cuulee/zb-bpmn-model/internal/model"
)

func bpmnName(local string) xml.Name  { return xml.Name{Space: bpmnNS, Local: local} }
func zeebeName(local string) xml.Name { return xml.Name{Space: zeebeNS, Local: local} }

// WriteXML serializes Definitions back to BPMN 2.0 XML using the same
// element/attribute shape ReadXML consumes. A taskHeaders element with no
// headers and an ioMapping with no input or output mappings are not
// written (so an outputBehavior given on its own is lost), and an
// unrecognized outputBehavior value is written as MERGE.
func WriteXML(defs *model.Definitions) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	definitions := xml.StartElement{
		Name: bpmnName("definitions"),
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns:bpmn"}, Value: bpmnNS},
			{Name: xml.Name{Local: "xmlns:zeebe"}, Value: zeebeNS},
		},
	}
	if err := enc.EncodeToken(definitions); err != nil {
		return nil, err
	}

	for _, proc := range defs.Processes {
		if err := writeProcess(enc, &buf, proc); err != nil {
			return nil, err
		}
	}

	if err := enc.EncodeToken(definitions.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeProcess(enc *xml.Encoder, buf *bytes.Buffer, proc *model.Process) error {
	start := xml.StartElement{
		Name: bpmnName("process"),
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "id"}, Value: proc.BpmnProcessID},
			{Name: xml.Name{Local: "isExecutable"}, Value: strconv.FormatBool(proc.IsExecutable)},
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	for _, el := range proc.Elements {
		if err := writeElement(enc, el); err != nil {
			return err
		}
	}

	// Unrecognized elements captured verbatim by the reader (spec §6:
	// "unknown BPMN elements are ignored for read but preserved on write
	// if the external writer supports it") are flushed around, since the
	// encoder buffers tokens and has no API for splicing in raw bytes.
	for _, raw := range proc.UnknownXML {
		if err := enc.Flush(); err != nil {
			return err
		}
		if _, err := buf.Write(raw); err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}

func writeElement(enc *xml.Encoder, el *model.FlowElement) error {
	switch el.Kind {
	case model.KindStartEvent:
		return writeSimpleNode(enc, "startEvent", el, nil)
	case model.KindEndEvent:
		return writeSimpleNode(enc, "endEvent", el, nil)
	case model.KindExclusiveGateway:
		var attrs []xml.Attr
		if el.Node.Gateway != nil && el.Node.Gateway.DefaultFlowRef != "" {
			attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "default"}, Value: el.Node.Gateway.DefaultFlowRef})
		}
		return writeSimpleNode(enc, "exclusiveGateway", el, attrs)
	case model.KindServiceTask:
		return writeServiceTask(enc, el)
	case model.KindSequenceFlow:
		return writeSequenceFlow(enc, el)
	default:
		return nil
	}
}

func writeSimpleNode(enc *xml.Encoder, local string, el *model.FlowElement, extraAttrs []xml.Attr) error {
	attrs := []xml.Attr{{Name: xml.Name{Local: "id"}, Value: el.ID}}
	if el.Name != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "name"}, Value: el.Name})
	}
	attrs = append(attrs, extraAttrs...)
	start := xml.StartElement{Name: bpmnName(local), Attr: attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func writeSequenceFlow(enc *xml.Encoder, el *model.FlowElement) error {
	flow := el.Flow
	start := xml.StartElement{
		Name: bpmnName("sequenceFlow"),
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "id"}, Value: el.ID},
			{Name: xml.Name{Local: "sourceRef"}, Value: flow.SourceRef},
			{Name: xml.Name{Local: "targetRef"}, Value: flow.TargetRef},
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if flow.Condition != nil {
		condStart := xml.StartElement{Name: bpmnName("conditionExpression")}
		if err := enc.EncodeToken(condStart); err != nil {
			return err
		}
		if err := enc.EncodeToken(xml.CharData(flow.Condition.Text)); err != nil {
			return err
		}
		if err := enc.EncodeToken(condStart.End()); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func writeServiceTask(enc *xml.Encoder, el *model.FlowElement) error {
	start := xml.StartElement{Name: bpmnName("serviceTask"), Attr: []xml.Attr{{Name: xml.Name{Local: "id"}, Value: el.ID}}}
	if el.Name != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "name"}, Value: el.Name})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	ext := el.Node.Task.Extensions
	if ext != nil {
		extStart := xml.StartElement{Name: bpmnName("extensionElements")}
		if err := enc.EncodeToken(extStart); err != nil {
			return err
		}
		if err := writeTaskDefinition(enc, ext.TaskDefinition); err != nil {
			return err
		}
		if err := writeTaskHeaders(enc, ext.TaskHeaders); err != nil {
			return err
		}
		if err := writeIOMapping(enc, ext.IOMapping); err != nil {
			return err
		}
		if err := enc.EncodeToken(extStart.End()); err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}

func writeTaskDefinition(enc *xml.Encoder, def *model.TaskDefinition) error {
	if def == nil {
		return nil
	}
	start := xml.StartElement{
		Name: zeebeName("taskDefinition"),
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "type"}, Value: def.Type},
			{Name: xml.Name{Local: "retries"}, Value: strconv.Itoa(int(def.Retries))},
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func writeTaskHeaders(enc *xml.Encoder, headers *model.TaskHeaders) error {
	if headers == nil || len(headers.Headers) == 0 {
		return nil
	}
	start := xml.StartElement{Name: zeebeName("taskHeaders")}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, h := range headers.Headers {
		hStart := xml.StartElement{
			Name: zeebeName("header"),
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "key"}, Value: h.Key},
				{Name: xml.Name{Local: "value"}, Value: h.Value},
			},
		}
		if err := enc.EncodeToken(hStart); err != nil {
			return err
		}
		if err := enc.EncodeToken(hStart.End()); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func writeIOMapping(enc *xml.Encoder, io *model.InputOutputMapping) error {
	if io == nil || (len(io.Inputs) == 0 && len(io.Outputs) == 0) {
		return nil
	}
	start := xml.StartElement{
		Name: zeebeName("ioMapping"),
		Attr: []xml.Attr{{Name: xml.Name{Local: "outputBehavior"}, Value: io.OutputBehavior.String()}},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, m := range io.Inputs {
		if err := writeMapping(enc, "input", m); err != nil {
			return err
		}
	}
	for _, m := range io.Outputs {
		if err := writeMapping(enc, "output", m); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func writeMapping(enc *xml.Encoder, local string, m model.Mapping) error {
	start := xml.StartElement{
		Name: zeebeName(local),
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "source"}, Value: m.SourcePath},
			{Name: xml.Name{Local: "target"}, Value: m.TargetPath},
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}
