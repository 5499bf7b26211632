// Package jsonpathc is the JSON-path compiler collaborator the Transformer
// calls when compiling InputOutputMapping sources. It
// wraps github.com/tidwall/gjson, the JSON query library the wider example
// corpus reaches for whenever it needs to address a JSON document by path
// (jordigilh-kubernaut, rashadism-openchoreo, stacklok-toolhive,
// vinayprograms-agent, dshills-langgraph-go, mwdz519-adk-go all depend on
// it directly or transitively).
package jsonpathc

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Query is a compiled JSON-path expression ready to evaluate against a JSON
// document. It is the concrete type behind the external
// "JsonPathCompiler::compile(bytes) -> Result<Query, CompileError>"
// capability described in the model specification's design notes.
type Query struct {
	path string
	gjsonPath string
}

// Path returns the original path text the query was compiled from.
func (q *Query) Path() string {
	if q == nil {
		return ""
	}
	return q.path
}

// Get evaluates the query against a JSON document, returning the matched
// result and whether the path resolved to a value.
func (q *Query) Get(doc []byte) (gjson.Result, bool) {
	if q == nil {
		return gjson.Result{}, false
	}
	res := gjson.GetBytes(doc, q.gjsonPath)
	return res, res.Exists()
}

// Compile validates and compiles a JSON-path expression. Paths must be
// root-relative ("$" or "$.field", "$[0]", "$.a.b[2]", ...); anything else
// is rejected the way the engine's JSON-path compiler rejects bare,
// non-root-anchored text.
func Compile(path string) (*Query, error) {
	if !rootAnchored(path) {
		return nil, fmt.Errorf("JSON path query '%s' is not valid!", path)
	}
	return &Query{path: path, gjsonPath: toGjsonPath(path)}, nil
}

// rootAnchored reports whether path is "$" or starts with "$." / "$[" and
// has balanced bracket/paren nesting throughout.
func rootAnchored(path string) bool {
	if path == "$" {
		return true
	}
	if !strings.HasPrefix(path, "$.") && !strings.HasPrefix(path, "$[") {
		return false
	}
	depth := 0
	for _, r := range path {
		switch r {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// toGjsonPath strips the leading "$" root anchor gjson's own dotted path
// syntax does not use.
func toGjsonPath(path string) string {
	trimmed := strings.TrimPrefix(path, "$")
	trimmed = strings.TrimPrefix(trimmed, ".")
	return trimmed
}
