// Package model defines the typed BPMN executable-subset graph: the
// WorkflowDefinition/Process/FlowElement tree, its engine extensions
// (task definitions, headers, I/O mappings), and the derived fields the
// Transformer populates. Model exposes accessors only; state-changing logic
// lives in the builder, xmlio, transform, and validate packages.
package model

// IDMaxLen is the maximum byte length of a BPMN id or process id. It
// mirrors the Zeebe engine's historical limit.
const IDMaxLen = 255
