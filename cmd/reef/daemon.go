package main

import (
	"fmt"

	"github.com/reef-shell/reef/internal/daemon"
	"github.com/spf13/cobra"
)

func newDaemonCmd() *cobra.Command {
	var socket string

	root := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the persistent bash coprocess",
	}
	root.PersistentFlags().StringVar(&socket, "socket", "", "Unix domain socket path")

	start := &cobra.Command{
		Use:   "start",
		Short: "Start the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if socket == "" {
				exitCode = exitInternal
				return fmt.Errorf("--socket is required")
			}
			if err := daemon.Start(socket); err != nil {
				exitCode = exitInternal
				return err
			}
			exitCode = exitSuccess
			return nil
		},
	}

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if socket == "" {
				exitCode = exitInternal
				return fmt.Errorf("--socket is required")
			}
			daemon.Stop(socket)
			exitCode = exitSuccess
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Report whether the daemon is alive",
		RunE: func(cmd *cobra.Command, args []string) error {
			if socket == "" {
				exitCode = exitInternal
				return fmt.Errorf("--socket is required")
			}
			if daemon.Status(socket) {
				exitCode = exitSuccess
			} else {
				exitCode = exitFailure
			}
			return nil
		},
	}

	execCmd := &cobra.Command{
		Use:   "exec -- <input>",
		Short: "Run input through the daemon's bash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if socket == "" {
				exitCode = exitInternal
				return fmt.Errorf("--socket is required")
			}
			exitCode = daemon.Exec(socket, args[0])
			return nil
		},
	}

	serve := &cobra.Command{
		Use:    "_serve",
		Short:  "Run the daemon server loop (internal, not user-facing)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if socket == "" {
				exitCode = exitInternal
				return fmt.Errorf("--socket is required")
			}
			if err := daemon.Serve(socket); err != nil {
				exitCode = exitInternal
				return err
			}
			exitCode = exitSuccess
			return nil
		},
	}

	root.AddCommand(start, stop, status, execCmd, serve)
	return root
}
