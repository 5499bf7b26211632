package main

import (
	"os"

	"github.com/spf13/cobra"

	bpmn "github.com/cuulee/zb-bpmn-model"
)

func newWriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <file> <out>",
		Short: "Parse, transform, validate, and re-serialize a workflow file to BPMN XML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrite(args[0], args[1])
		},
	}
}

func runWrite(in, out string) error {
	f := bpmn.New()

	defs, err := readByExtension(f, in)
	if err != nil {
		return err
	}

	data, err := f.WriteXML(defs)
	if err != nil {
		return err
	}

	return os.WriteFile(out, data, 0o644)
}
