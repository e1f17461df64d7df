// Package logs reads the daemon log file for CLI display.
//
// Tail returns bounded slices of log lines keyed by byte offsets, so the
// CLI can show the trailing lines of the file or follow it for new output
// without holding the file open between calls.
package logs
