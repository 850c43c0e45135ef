package main

import (
	"github.com/reef-shell/reef/internal/detect"
	"github.com/spf13/cobra"
)

func newDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect -- <input>",
		Short: "Report whether input needs bash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if detect.LooksLikeBash(args[0]) {
				exitCode = exitSuccess
			} else {
				exitCode = exitFailure
			}
			return nil
		},
	}
	// --quick is accepted for CLI compatibility; the detector is already
	// the O(n) heuristic scan spec.md's --quick mode asks for, so this
	// flag currently has no effect on behavior.
	cmd.Flags().Bool("quick", false, "force the O(n) heuristic scan")
	return cmd
}
