// Package app is the composition root for statekit.
//
// Run wires one demo end to end:
//
//	config.Load()        read ~/.config/statekit/config.toml
//	prefs.Load()         theme and last demo
//	logger.OpenFile()    slog text handler on the log file (the TUI owns the terminal)
//	Build()              mutation logger plugin, blob store and persistence for todo,
//	                     mock or remote api, then the demo's store
//	StartPoller()        chat only: receive a simulated reply every poll interval
//	ui.Run()             bubbletea program bridged to the store (blocks)
//
// Build is exported so the store can be constructed without the UI, which
// is how the tests exercise it.
//
// # Error Handling
//
// Configuration errors, unknown demos and resources that cannot be opened
// (log files, the SQLite database, a malformed api base_url) are returned
// from Run. Failures after startup are logged: a failed poll backs off
// exponentially up to 30 seconds, and persistence errors are logged by the
// writer without reaching the store.
package app
