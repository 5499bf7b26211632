package builder

import "github.com/cuulee/zb-bpmn-model/internal/model"

// ServiceTaskBuilder configures the extension elements of a ServiceTask
// just appended to a ProcessBuilder. Its Done method returns to the
// owning ProcessBuilder to continue the fluent chain.
type ServiceTaskBuilder struct {
	pb   *ProcessBuilder
	task *model.FlowElement
}

func (s *ServiceTaskBuilder) ext() *model.ExtensionElements {
	return s.task.Node.Task.Extensions
}

// TaskType sets the job type the task dispatches to, creating the
// TaskDefinition on first use. Retries defaults to model.DefaultRetries.
func (s *ServiceTaskBuilder) TaskType(jobType string) *ServiceTaskBuilder {
	def := s.ext().TaskDefinition
	if def == nil {
		def = &model.TaskDefinition{Retries: model.DefaultRetries}
		s.ext().TaskDefinition = def
	}
	def.Type = jobType
	return s
}

// TaskRetries overrides the task's retry budget.
func (s *ServiceTaskBuilder) TaskRetries(n int32) *ServiceTaskBuilder {
	def := s.ext().TaskDefinition
	if def == nil {
		def = &model.TaskDefinition{}
		s.ext().TaskDefinition = def
	}
	def.Retries = n
	return s
}

// Header appends a custom task header in declaration order.
func (s *ServiceTaskBuilder) Header(key, value string) *ServiceTaskBuilder {
	headers := s.ext().TaskHeaders
	headers.Headers = append(headers.Headers, model.HeaderEntry{Key: key, Value: value})
	return s
}

// Input appends an input mapping.
func (s *ServiceTaskBuilder) Input(source, target string) *ServiceTaskBuilder {
	io := s.ext().IOMapping
	io.Inputs = append(io.Inputs, model.Mapping{SourcePath: source, TargetPath: target})
	return s
}

// Output appends an output mapping.
func (s *ServiceTaskBuilder) Output(source, target string) *ServiceTaskBuilder {
	io := s.ext().IOMapping
	io.Outputs = append(io.Outputs, model.Mapping{SourcePath: source, TargetPath: target})
	return s
}

// OutputBehavior sets how output mappings merge into the parent scope.
func (s *ServiceTaskBuilder) OutputBehavior(b model.OutputBehavior) *ServiceTaskBuilder {
	s.ext().IOMapping.OutputBehavior = b
	return s
}

// OutputBehaviorText sets output behavior from its textual surface form
// (the YAML/XML spelling), performing no validation itself: an
// unrecognized value is carried through as OutputBehaviorRaw for the
// Validator to report, matching the XML parser's contract.
func (s *ServiceTaskBuilder) OutputBehaviorText(raw string) *ServiceTaskBuilder {
	io := s.ext().IOMapping
	if behavior, ok := model.ParseOutputBehavior(raw); ok {
		io.OutputBehavior = behavior
		io.OutputBehaviorRaw = ""
	} else {
		io.OutputBehaviorRaw = raw
	}
	return s
}

// Done returns to the owning ProcessBuilder to continue the fluent chain.
func (s *ServiceTaskBuilder) Done() *ProcessBuilder {
	return s.pb
}
