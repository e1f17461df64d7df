// Package logging assembles structured slog loggers shared by the tryon
// daemon and CLI.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and exposes typed attribute helpers plus a no-op logger
// for tests and wiring code that cannot fail. Prefer these constructors
// over hand-rolled slog setup so every component emits data with the same
// shape.
package logging
