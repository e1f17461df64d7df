package main

import (
	"fmt"
	"io"
	"time"

	"tryon/internal/ipc"
	"tryon/internal/job"
)

// watchJob polls the daemon once a second and stops on its own as soon as
// it observes a terminal or idle snapshot. The poll never runs unbounded;
// an unreachable daemon ends the watch with the dial error.
func watchJob(ctx *commandContext, out io.Writer) error {
	interval := time.Second
	if cfg, err := ctx.ensureConfig(); err == nil && cfg != nil && cfg.PollInterval() > 0 {
		interval = cfg.PollInterval()
	}

	lastStatus := ""
	for {
		var snapshot ipc.JobSnapshot
		err := ctx.withClient(func(client *ipc.Client) error {
			resp, err := client.Status()
			if err != nil {
				return err
			}
			snapshot = resp.Job
			return nil
		})
		if err != nil {
			return err
		}

		if snapshot.Status != lastStatus {
			lastStatus = snapshot.Status
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "%s %s\n", time.Now().Format("15:04:05"), colorizeStatus(snapshot.Status, colorize))
		}

		status := job.Status(snapshot.Status)
		if status.IsTerminal() || status == job.StatusIdle {
			renderJob(out, snapshot)
			return nil
		}
		time.Sleep(interval)
	}
}
