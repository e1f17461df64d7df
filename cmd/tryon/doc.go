// Command tryon is the foreground CLI for the try-on daemon.
//
// It talks to tryond over the JSON-RPC Unix socket: submitting jobs,
// polling status, managing the saved reference photo, and running page
// extraction. The CLI holds no job state of its own; every command
// re-derives truth from the daemon.
package main
