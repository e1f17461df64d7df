// Package notifications delivers job lifecycle events via pluggable
// notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Delivery is strictly best-effort; the durable job record is the
// authority and nothing may depend on a push arriving.
package notifications
