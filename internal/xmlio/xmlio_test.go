package xmlio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuulee/zb-bpmn-model/internal/model"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL" xmlns:zeebe="http://camunda.org/schema/zeebe/1.0">
  <bpmn:process id="order-process" isExecutable="true">
    <bpmn:startEvent id="start" />
    <bpmn:serviceTask id="charge">
      <bpmn:extensionElements>
        <zeebe:taskDefinition type="charge-card" retries="5" />
        <zeebe:taskHeaders>
          <zeebe:header key="x-correlation-key" value="order-id" />
        </zeebe:taskHeaders>
        <zeebe:ioMapping outputBehavior="OVERWRITE">
          <zeebe:input source="$.amount" target="$.chargeAmount" />
          <zeebe:output source="$.result" target="$.chargeResult" />
        </zeebe:ioMapping>
      </bpmn:extensionElements>
    </bpmn:serviceTask>
    <bpmn:endEvent id="end" />
    <bpmn:sequenceFlow id="f1" sourceRef="start" targetRef="charge" />
    <bpmn:sequenceFlow id="f2" sourceRef="charge" targetRef="end" />
  </bpmn:process>
</bpmn:definitions>
`

func TestReadXMLParsesRawModel(t *testing.T) {
	t.Parallel()

	defs, err := ReadXML([]byte(sampleDoc), "order.bpmn")
	require.NoError(t, err)
	require.Len(t, defs.Processes, 1)

	proc := defs.Processes[0]
	require.Equal(t, "order-process", proc.BpmnProcessID)
	require.True(t, proc.IsExecutable)
	require.Len(t, proc.Elements, 5)

	var charge *model.FlowElement
	for _, el := range proc.Elements {
		if el.ID == "charge" {
			charge = el
		}
	}
	require.NotNil(t, charge)
	require.Equal(t, model.KindServiceTask, charge.Kind)
	require.NotNil(t, charge.Node.Task.Extensions.TaskDefinition)
	require.Equal(t, "charge-card", charge.Node.Task.Extensions.TaskDefinition.Type)
	require.Equal(t, int32(5), charge.Node.Task.Extensions.TaskDefinition.Retries)
	require.Equal(t, model.OutputBehaviorOverwrite, charge.Node.Task.Extensions.IOMapping.OutputBehavior)
	require.Len(t, charge.Node.Task.Extensions.IOMapping.Inputs, 1)
	require.Len(t, charge.Node.Task.Extensions.IOMapping.Outputs, 1)

	// Raw model: link resolution has not run yet.
	require.Nil(t, charge.Node.Incoming)
	require.Nil(t, charge.Node.Outgoing)
}

func TestReadXMLRejectsUnknownZeebeElement(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(sampleDoc, "<zeebe:header", "<zeebe:bogus", 1)

	_, err := ReadXML([]byte(doc), "order.bpmn")
	require.Error(t, err)
}

func TestReadXMLCarriesUnrecognizedOutputBehaviorForValidator(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(sampleDoc, `outputBehavior="OVERWRITE"`, `outputBehavior="asdf"`, 1)

	defs, err := ReadXML([]byte(doc), "order.bpmn")
	require.NoError(t, err)

	charge, _ := defs.Processes[0].FindElement("charge")
	io := charge.Node.Task.Extensions.IOMapping
	require.Equal(t, model.OutputBehaviorMerge, io.OutputBehavior)
	require.Equal(t, "asdf", io.OutputBehaviorRaw)
}

func TestWriteXMLRoundTripsThroughReadXML(t *testing.T) {
	t.Parallel()

	defs, err := ReadXML([]byte(sampleDoc), "order.bpmn")
	require.NoError(t, err)

	out, err := WriteXML(defs)
	require.NoError(t, err)

	reparsed, err := ReadXML(out, "order.bpmn")
	require.NoError(t, err)

	require.Equal(t, defs.Processes[0].BpmnProcessID, reparsed.Processes[0].BpmnProcessID)
	require.Len(t, reparsed.Processes[0].Elements, len(defs.Processes[0].Elements))
}

func TestReadXMLPreservesUnknownElementForWrite(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(sampleDoc, "<bpmn:endEvent id=\"end\" />",
		"<bpmn:endEvent id=\"end\" />\n    <bpmn:textAnnotation id=\"note\"><bpmn:text>needs review</bpmn:text></bpmn:textAnnotation>", 1)

	defs, err := ReadXML([]byte(doc), "order.bpmn")
	require.NoError(t, err)
	require.Len(t, defs.Processes[0].Elements, 5)
	require.Len(t, defs.Processes[0].UnknownXML, 1)
	require.Contains(t, string(defs.Processes[0].UnknownXML[0]), "needs review")

	out, err := WriteXML(defs)
	require.NoError(t, err)
	require.Contains(t, string(out), "<bpmn:textAnnotation")
	require.Contains(t, string(out), "needs review")

	reparsed, err := ReadXML(out, "order.bpmn")
	require.NoError(t, err)
	require.Len(t, reparsed.Processes[0].UnknownXML, 1)
}

func TestReadXMLTracksLineNumbers(t *testing.T) {
	t.Parallel()

	defs, err := ReadXML([]byte(sampleDoc), "order.bpmn")
	require.NoError(t, err)

	start := defs.Processes[0].Elements[0]
	require.Equal(t, model.KindStartEvent, start.Kind)
	require.Greater(t, start.Line, 0)
}
