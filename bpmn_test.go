package bpmn

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	cblog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

const validXML = `<?xml version="1.0" encoding="UTF-8"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL" xmlns:zeebe="http://camunda.org/schema/zeebe/1.0">
  <bpmn:process id="order-process" isExecutable="true">
    <bpmn:startEvent id="start" />
    <bpmn:serviceTask id="charge">
      <bpmn:extensionElements>
        <zeebe:taskDefinition type="charge-card" retries="5" />
        <zeebe:ioMapping outputBehavior="OVERWRITE">
          <zeebe:input source="$.amount" target="$.chargeAmount" />
        </zeebe:ioMapping>
      </bpmn:extensionElements>
    </bpmn:serviceTask>
    <bpmn:exclusiveGateway id="gw" default="toShip" />
    <bpmn:endEvent id="shipped" />
    <bpmn:endEvent id="rejected" />
    <bpmn:sequenceFlow id="f1" sourceRef="start" targetRef="charge" />
    <bpmn:sequenceFlow id="f2" sourceRef="charge" targetRef="gw" />
    <bpmn:sequenceFlow id="toShip" sourceRef="gw" targetRef="shipped" />
    <bpmn:sequenceFlow id="toReject" sourceRef="gw" targetRef="rejected">
      <bpmn:conditionExpression>$.chargeResult == "declined"</bpmn:conditionExpression>
    </bpmn:sequenceFlow>
  </bpmn:process>
</bpmn:definitions>
`

func TestFacadeReadXMLValidRoundTrip(t *testing.T) {
	t.Parallel()

	f := New()
	defs, err := f.ReadXML(strings.NewReader(validXML))
	require.NoError(t, err)
	require.Len(t, defs.Processes, 1)

	proc := defs.Processes[0]
	gw, ok := proc.FindElement("gw")
	require.True(t, ok)
	require.Equal(t, AspectExclusiveSplit, gw.Aspect)
	require.NotNil(t, gw.Node.Gateway.DefaultFlow)
	require.Equal(t, "toShip", gw.Node.Gateway.DefaultFlow.ID)

	out, err := f.WriteXML(defs)
	require.NoError(t, err)

	reparsed, err := f.ReadXML(strings.NewReader(string(out)))
	require.NoError(t, err)
	require.Equal(t, "order-process", reparsed.Processes[0].BpmnProcessID)
}

func TestFacadeReadXMLMissingStartEventFails(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(validXML, `<bpmn:startEvent id="start" />`, "", 1)
	doc = strings.Replace(doc, `sourceRef="start"`, `sourceRef="charge"`, 1)

	f := New()
	_, err := f.ReadXML(strings.NewReader(doc))
	require.Error(t, err)
}

// TestFacadeReadXMLInvalidOutputBehaviorFails covers the Validator's
// output-behavior rule surfacing through the full read pipeline as a
// ValidationError, not a parser-level failure.
func TestFacadeReadXMLInvalidOutputBehaviorFails(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(validXML, `outputBehavior="OVERWRITE"`, `outputBehavior="bogus"`, 1)

	f := New()
	_, err := f.ReadXML(strings.NewReader(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), "Output behavior 'bogus' is not supported")
}

func TestFacadeReadXMLMissingActivityIDFails(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(validXML, `<bpmn:startEvent id="start" />`, `<bpmn:startEvent id="" />`, 1)

	f := New()
	_, err := f.ReadXML(strings.NewReader(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), "Activity id is required.")
}

func TestFacadeReadXMLLogsPhaseBoundariesAndValidationFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := NewLogger(LoggerOptions{Writer: &buf, Level: "debug", Formatter: cblog.JSONFormatter})
	require.NoError(t, err)

	f := NewWithLogger(log)
	doc := strings.Replace(validXML, `<bpmn:startEvent id="start" />`, "", 1)
	doc = strings.Replace(doc, `sourceRef="start"`, `sourceRef="charge"`, 1)

	_, err = f.ReadXML(strings.NewReader(doc))
	require.Error(t, err)

	var levels []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &payload))
		levels = append(levels, payload["level"].(string))
	}
	require.Contains(t, levels, "debug")
	require.Contains(t, levels, "warn")
}

func TestFacadeReadXMLZeroValueLogsNothing(t *testing.T) {
	t.Parallel()

	var f Facade
	defs, err := f.ReadXML(strings.NewReader(validXML))
	require.NoError(t, err)
	require.Len(t, defs.Processes, 1)
}

func TestFacadeBuilderProhibitedMappingExpressionFails(t *testing.T) {
	t.Parallel()

	f := New()
	_, err := f.CreateExecutableWorkflow("p").
		StartEvent().
		ServiceTask().TaskType("charge").Input("$.*", "$.x").Done().
		EndEvent().
		Done()
	require.Error(t, err)
}

func TestFacadeBuilderInvalidJSONPathFails(t *testing.T) {
	t.Parallel()

	f := New()
	_, err := f.CreateExecutableWorkflow("p").
		StartEvent().
		ServiceTask().TaskType("charge").Input("$[invalid", "$.x").Done().
		EndEvent().
		Done()
	require.Error(t, err)
}

func TestFacadeBuilderExclusiveGatewayMissingConditionFails(t *testing.T) {
	t.Parallel()

	f := New()
	b := f.CreateExecutableWorkflow("p").
		StartEvent().
		ExclusiveGateway("gw").
		SequenceFlow("toA").
		EndEvent("a").
		From("gw")
	_, err := b.EndEvent("b").Done()
	require.Error(t, err)
}

func TestFacadeBuilderDefaultFlowWithConditionFails(t *testing.T) {
	t.Parallel()

	f := New()
	b := f.CreateExecutableWorkflow("p").
		StartEvent().
		ExclusiveGateway("gw").
		SequenceFlow("toA", Condition("$.x == 1"), DefaultFlow()).
		EndEvent("a").
		From("gw").
		SequenceFlow("toB", Condition("$.x == 2")).
		EndEvent("b")
	_, err := b.Done()
	require.Error(t, err)
}

func TestFacadeValidateReturnsDiagnosticsWithoutRaising(t *testing.T) {
	t.Parallel()

	f := New()
	defs, err := f.ReadXML(strings.NewReader(validXML))
	require.NoError(t, err)

	result := f.Validate(defs)
	require.False(t, result.HasErrors())
}

func TestFacadeReadYAML(t *testing.T) {
	t.Parallel()

	doc := `
name: order-process
tasks:
  - type: charge-card
`
	f := New()
	defs, err := f.ReadYAML(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "order-process", defs.Processes[0].BpmnProcessID)
}
