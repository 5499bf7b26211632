package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	bpmn "github.com/cuulee/zb-bpmn-model"
	zberrors "github.com/cuulee/zb-bpmn-model/pkg/errors"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Parse, transform, and validate a BPMN XML or YAML workflow file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, path string) error {
	_, err := readByExtension(bpmn.New(), path)

	var verr *zberrors.ValidationError
	switch {
	case err == nil:
		fmt.Fprintln(cmd.OutOrStdout(), "valid")
		return nil
	case isValidationError(err, &verr):
		colorize := supportsColor(cmd.OutOrStdout())
		for _, d := range verr.Result {
			fmt.Fprintln(cmd.OutOrStdout(), formatDiagnostic(d, colorize))
		}
		return fmt.Errorf("%d diagnostic(s), %d error(s)", len(verr.Result), len(verr.Result.Errors()))
	default:
		return err
	}
}

// supportsColor reports whether w is a terminal, the way cmd/streamy
// decides between unicode and ASCII status glyphs for its own output.
func supportsColor(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func formatDiagnostic(d bpmn.Diagnostic, colorize bool) string {
	if !colorize {
		return d.String()
	}
	const (
		red    = "\x1b[31m"
		yellow = "\x1b[33m"
		reset  = "\x1b[0m"
	)
	color := yellow
	if d.Severity == bpmn.SeverityError {
		color = red
	}
	return color + d.String() + reset
}

func isValidationError(err error, out **zberrors.ValidationError) bool {
	verr, ok := err.(*zberrors.ValidationError)
	if ok {
		*out = verr
	}
	return ok
}

// readByExtension dispatches to the YAML or XML reader based on the
// file's extension, the way the builder's YAML translator and the XML
// parser bridge are the library's only two source surfaces.
func readByExtension(f bpmn.Facade, path string) (*bpmn.Definitions, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return f.ReadYAMLFile(path)
	default:
		return f.ReadXMLFile(path)
	}
}
