// Package status is the out-of-band side channel that reports pool and
// operation state while computations run.
//
// Producers (the pool, the ephemeral dispatcher, the engine) call
// Broadcaster.Publish, which never blocks: a snapshot that no subscriber can
// take right now is dropped and counted. Consumers subscribe with a buffer of
// their choosing and render the stream with Monitor (plain lines), Model (a
// bubbletea TUI) or Server (a websocket feed next to /metrics and /healthz).
//
// Snapshots are ephemeral and never persisted.
package status
