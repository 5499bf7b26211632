// Command bpmnlint is a thin CLI driver over the Facade: it parses,
// transforms, and validates a BPMN XML or YAML workflow file and prints
// diagnostics in the library's documented format, or re-serializes a
// parsed file back to BPMN XML.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
