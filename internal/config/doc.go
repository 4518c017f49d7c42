// Package config loads statekit's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/statekit/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default
//  4. If the file exists but fields are missing or empty, use defaults
//
// String values are trimmed and paths beginning with ~ are expanded to the
// user's home directory.
//
// # Default Values
//
//   - demo: counter
//   - strict: true
//   - log_level: info
//   - log_file: ~/.local/share/statekit/statekit.log
//   - mutation_log: ~/.local/share/statekit/mutations.log
//   - storage.path: ~/.local/share/statekit/state.db
//   - logger.collapsed, logger.actions: true
//   - api.shop_latency_ms: 100, api.chat_latency_ms: 16, api.failure_rate: 0.5
//   - chat.poll_seconds: 5
//
// # TOML Format
//
//	demo = "cart"
//	strict = true
//	log_level = "debug"
//
//	[storage]
//	path = "~/.local/share/statekit/state.db"
//
//	[logger]
//	collapsed = true
//	actions = true
//
//	[api]
//	base_url = ""        # empty uses the in-process mock
//	failure_rate = 0.5
//
//	[chat]
//	poll_seconds = 5
//
// # Validation
//
// Load fails on malformed TOML, an unknown demo, an unparseable log level,
// or a failure rate outside [0, 1]. Unknown keys are ignored.
package config
