package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reef",
		Short:         "bash compatibility layer for fish",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDetectCmd())
	root.AddCommand(newTranslateCmd())
	root.AddCommand(newBashExecCmd())
	root.AddCommand(newDaemonCmd())
	return root
}
