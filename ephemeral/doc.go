// Package ephemeral implements the one-executor-per-task dispatch strategy.
//
// Every Task Unit gets its own short-lived executor goroutine running
// protocol.Serve. The dispatcher preloads the executor's request channel
// with the request followed by EXIT, so each executor handles exactly one
// request and ends. Completions arrive on a buffered channel and are counted;
// results are placed by request position, never by completion order. Before
// Dispatch returns, every executor it spawned has been reaped, including on
// the spawn-failure path.
package ephemeral
