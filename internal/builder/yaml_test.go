package builder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuulee/zb-bpmn-model/internal/model"
)

func TestTranslateLinearWorkflow(t *testing.T) {
	t.Parallel()

	doc := `
name: order-process
tasks:
  - type: charge-card
    retries: 5
    headers:
      x-correlation-key: order-id
      retries: "5"
    inputs:
      - source: $.amount
        target: $.chargeAmount
    outputBehavior: OVERWRITE
    outputs:
      - source: $.result
        target: $.chargeResult
  - type: ship-order
`

	defs, err := Translate([]byte(doc))
	require.NoError(t, err)

	proc := defs.Processes[0]
	require.Equal(t, "order-process", proc.BpmnProcessID)

	charge, ok := proc.FindElement("_id_2")
	require.True(t, ok)
	require.Equal(t, model.KindServiceTask, charge.Kind)
	require.Equal(t, "charge-card", charge.Node.Task.Extensions.TaskDefinition.Type)
	require.Equal(t, int32(5), charge.Node.Task.Extensions.TaskDefinition.Retries)
	require.Equal(t, model.OutputBehaviorOverwrite, charge.Node.Task.Extensions.IOMapping.OutputBehavior)

	headers := charge.Node.Task.Extensions.TaskHeaders.Headers
	require.Equal(t, []model.HeaderEntry{
		{Key: "x-correlation-key", Value: "order-id"},
		{Key: "retries", Value: "5"},
	}, headers)
}

func TestTranslateDefaultsRetriesAndOutputBehavior(t *testing.T) {
	t.Parallel()

	doc := `
name: minimal
tasks:
  - type: noop
`
	defs, err := Translate([]byte(doc))
	require.NoError(t, err)

	proc := defs.Processes[0]
	task, ok := proc.FindElement("_id_2")
	require.True(t, ok)
	require.Equal(t, int32(model.DefaultRetries), task.Node.Task.Extensions.TaskDefinition.Retries)
	require.Equal(t, model.OutputBehaviorMerge, task.Node.Task.Extensions.IOMapping.OutputBehavior)
}

func TestTranslateSurfacesUnrecognizedOutputBehaviorAsValidationError(t *testing.T) {
	t.Parallel()

	doc := `
name: minimal
tasks:
  - type: noop
    outputBehavior: bogus
`
	_, err := Translate([]byte(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), "Output behavior 'bogus' is not supported. Valid values are [MERGE, OVERWRITE, NONE].")
}

func TestTranslateRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := Translate([]byte("not: [valid"))
	require.Error(t, err)
}
