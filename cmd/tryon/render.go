package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"tryon/internal/ipc"
	"tryon/internal/job"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func statusColor(status string) string {
	switch job.Status(status) {
	case job.StatusComplete:
		return ansiGreen
	case job.StatusGenerating:
		return ansiYellow
	case job.StatusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

func colorizeStatus(status string, colorize bool) string {
	if !colorize {
		return status
	}
	return statusColor(status) + status + ansiReset
}

func renderJob(out io.Writer, snapshot ipc.JobSnapshot) {
	colorize := shouldColorize(out)
	rows := [][2]string{
		{"status", colorizeStatus(snapshot.Status, colorize)},
	}
	if snapshot.GarmentURL != "" {
		rows = append(rows, [2]string{"garment", snapshot.GarmentURL})
	}
	if snapshot.SourcePage != "" {
		rows = append(rows, [2]string{"page", snapshot.SourcePage})
	}
	if snapshot.Description != "" {
		rows = append(rows, [2]string{"description", truncateForDisplay(snapshot.Description, 120)})
	}
	if !snapshot.StartedAt.IsZero() {
		rows = append(rows, [2]string{"started", snapshot.StartedAt.Local().Format(time.RFC3339)})
	}
	if !snapshot.UpdatedAt.IsZero() {
		rows = append(rows, [2]string{"updated", snapshot.UpdatedAt.Local().Format(time.RFC3339)})
	}
	if snapshot.Error != "" {
		rows = append(rows, [2]string{"error", snapshot.Error})
	}
	if snapshot.Result != "" {
		rows = append(rows, [2]string{"result", fmt.Sprintf("%d bytes (use `tryon result` to save)", len(snapshot.Result))})
	}
	fmt.Fprintln(out, renderKV(rows))
}

func truncateForDisplay(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
