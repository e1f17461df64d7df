package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tryon/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and bootstrap the configuration",
	}
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote sample configuration to %s\n", path)
			return nil
		},
	}
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rows := [][2]string{
				{"data_dir", cfg.Paths.DataDir},
				{"log_dir", cfg.Paths.LogDir},
				{"api_bind", cfg.Paths.APIBind},
				{"socket", cfg.SocketPath()},
				{"store", cfg.StorePath()},
				{"service.base_url", cfg.Service.BaseURL},
				{"service.timeout", strconv.Itoa(cfg.Service.TimeoutSeconds) + "s"},
				{"fetch.timeout", strconv.Itoa(cfg.Fetch.TimeoutSeconds) + "s"},
				{"workflow.stale_job_timeout", strconv.Itoa(cfg.Workflow.StaleJobTimeoutSeconds) + "s"},
				{"workflow.reaper_interval", strconv.Itoa(cfg.Workflow.ReaperIntervalSeconds) + "s"},
				{"workflow.poll_interval", strconv.Itoa(cfg.Workflow.PollIntervalSeconds) + "s"},
				{"notifications.ntfy_topic", cfg.Notifications.NtfyTopic},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderKV(rows))
			return nil
		},
	}
}
