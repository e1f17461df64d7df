package main

import (
	"github.com/spf13/cobra"

	"tryon/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current job slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if watch {
				return watchJob(ctx, out)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				renderJob(out, resp.Job)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Poll every second until the job settles")
	return cmd
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Reset the job slot to idle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Clear()
				if err != nil {
					return err
				}
				renderJob(cmd.OutOrStdout(), resp.Job)
				return nil
			})
		},
	}
}
