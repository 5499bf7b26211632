package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bpmnlint",
		Short:         "bpmnlint validates and re-serializes executable-subset BPMN workflow files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newWriteCmd())

	return cmd
}
