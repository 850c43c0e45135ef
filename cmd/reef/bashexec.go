package main

import (
	"github.com/reef-shell/reef/internal/passthrough"
	"github.com/spf13/cobra"
)

func newBashExecCmd() *cobra.Command {
	var envDiff bool
	var stateFile string

	cmd := &cobra.Command{
		Use:   "bash-exec [--env-diff] [--state-file PATH] -- <input>",
		Short: "Execute input under bash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case stateFile != "":
				exitCode = passthrough.ExecWithState(args[0], stateFile)
			case envDiff:
				exitCode = passthrough.ExecEnvDiff(args[0])
			default:
				exitCode = passthrough.Exec(args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&envDiff, "env-diff", false, "print the resulting environment diff to stdout")
	cmd.Flags().StringVar(&stateFile, "state-file", "", "restore and persist environment state across invocations")
	return cmd
}
