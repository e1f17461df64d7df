// Package config loads, normalizes, and validates the TOML configuration
// shared by the tryon daemon and CLI.
package config
