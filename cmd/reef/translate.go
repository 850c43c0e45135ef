package main

import (
	"fmt"

	"github.com/reef-shell/reef/internal/emit"
	"github.com/spf13/cobra"
)

func newTranslateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate -- <input>",
		Short: "Translate bash input to fish source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := emit.Translate(args[0])
			if err != nil {
				exitCode = exitFailure
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			exitCode = exitSuccess
			return nil
		},
	}
}
