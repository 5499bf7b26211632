package builder

import (
	"fmt"

	"gopkg.in/yaml.v3"

	zberrors "github.com/cuulee/zb-bpmn-model/pkg/errors"

	"github.com/cuulee/zb-bpmn-model/internal/model"
)

// yamlDocument is the top-level YAML surface shape: a name and an ordered
// list of tasks. Order of tasks defines the linear workflow.
type yamlDocument struct {
	Name  string      `yaml:"name"`
	Tasks []yaml.Node `yaml:"tasks"`
}

// yamlTaskFields is the fixed-shape subset of a task entry decoded
// directly; headers are extracted separately to preserve declaration
// order, which a plain map[string]string cannot guarantee.
type yamlTaskFields struct {
	Type           string        `yaml:"type"`
	Retries        *int32        `yaml:"retries"`
	Inputs         []yamlMapping `yaml:"inputs"`
	Outputs        []yamlMapping `yaml:"outputs"`
	OutputBehavior string        `yaml:"outputBehavior"`
}

type yamlMapping struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Translate reads a YAML document in the surface shape described above
// and issues the equivalent builder calls, producing the same
// transformed and validated Definitions a direct builder chain would.
func Translate(data []byte) (*model.Definitions, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, zberrors.NewParseError("", 0, fmt.Errorf("yaml translator: %w", err))
	}

	b := NewExecutableWorkflow(doc.Name)
	b.StartEvent()

	for i := range doc.Tasks {
		taskNode := &doc.Tasks[i]

		var fields yamlTaskFields
		if err := taskNode.Decode(&fields); err != nil {
			return nil, zberrors.NewParseError("", 0, fmt.Errorf("yaml translator: task %d: %w", i, err))
		}

		st := b.ServiceTask().TaskType(fields.Type)
		if fields.Retries != nil {
			st.TaskRetries(*fields.Retries)
		}
		for _, h := range orderedHeaders(taskNode) {
			st.Header(h.Key, h.Value)
		}
		for _, m := range fields.Inputs {
			st.Input(m.Source, m.Target)
		}
		for _, m := range fields.Outputs {
			st.Output(m.Source, m.Target)
		}
		if fields.OutputBehavior != "" {
			st.OutputBehaviorText(fields.OutputBehavior)
		}
		b = st.Done()
	}

	b.EndEvent()
	return b.Done()
}

// orderedHeaders walks the raw YAML mapping node for a task entry to pull
// the "headers" sub-mapping's key/value pairs in document order, since
// map[string]string (used by a plain struct tag) does not preserve it.
func orderedHeaders(taskNode *yaml.Node) []model.HeaderEntry {
	if taskNode.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(taskNode.Content); i += 2 {
		key := taskNode.Content[i]
		value := taskNode.Content[i+1]
		if key.Value != "headers" || value.Kind != yaml.MappingNode {
			continue
		}
		headers := make([]model.HeaderEntry, 0, len(value.Content)/2)
		for j := 0; j+1 < len(value.Content); j += 2 {
			headers = append(headers, model.HeaderEntry{
				Key:   value.Content[j].Value,
				Value: value.Content[j+1].Value,
			})
		}
		return headers
	}
	return nil
}
