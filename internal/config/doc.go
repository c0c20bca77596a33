// Package config loads the roomperms configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/roomperms/config.toml (default)
//  3. If the file doesn't exist, start from Default()
//  4. Apply ROOMPERMS_* environment variables on top
//
// Load does not validate. Commands that talk to a homeserver call Validate,
// so commands that don't (for example listing sections) work without any
// configuration.
//
// # TOML Format
//
//	homeserver_url = "https://matrix.example.org"
//	access_token = "syt_..."
//	room = "#lobby:example.org"
//	request_timeout = "10s"
//
//	[log]
//	level = "info"
//	dir = "~/.local/state/roomperms"
//	file = "roomperms.log"
//	max_size_mb = 10
//	max_backups = 3
//	max_age_days = 28
//	console = false
//
// A homeserver without a scheme gets https://. Tilde expansion is applied
// to the log directory.
//
// # Environment
//
//   - ROOMPERMS_HOMESERVER_URL
//   - ROOMPERMS_ACCESS_TOKEN
//   - ROOMPERMS_ROOM
//   - ROOMPERMS_REQUEST_TIMEOUT (Go duration)
//   - ROOMPERMS_LOG_LEVEL
//   - ROOMPERMS_LOG_DIR
//
// Empty variables are ignored.
//
// # Validation
//
// Validate checks that the homeserver is a URL, a token is present, the
// room (when set) starts with ! or #, the timeout is positive and the log
// level is one zerolog understands.
package config
