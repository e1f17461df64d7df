// Package daemon coordinates the long-running tryond process.
//
// It wires configuration, the slot store, the job orchestrator, and the IPC
// server into a single lifecycle with flock-based locking to prevent
// multiple instances. When an API bind address is configured it also serves
// a small HTTP surface for browser clients.
//
// Keep orchestration logic in the orchestrator; the daemon focuses on
// startup, shutdown, and high level coordination.
package daemon
