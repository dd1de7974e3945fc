package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasks configuration file
# Values can be overridden by environment variables or CLI flags

# Tasks file (relative to the working directory)
tasks_file = "tasks.json"

# Treat an unreadable tasks file as an empty list instead of failing
lenient_read = false

# Log edits made to the tasks file by other programs
watch_file = true

# Web frontend directory; the copy built into the binary is used if missing
static_dir = "public"

# Listen address (PORT env var also sets the port)
host = ""
port = 3001

# Allowed CORS origins
cors_origins = ["*"]

# Include internal error text in 500 responses
expose_errors = true

# Maximum request body size in bytes
max_body_bytes = 1048576

# Graceful shutdown timeout (seconds)
shutdown_timeout_seconds = 5

# Server used by "tasks tui" and "tasks ls"
server_url = "http://localhost:3001"

# Log directory for terminal client sessions (supports ~ expansion)
log_dir = "~/.tasks"

# Logging
log_level = "info"     # debug, info, warn, error
log_format = "text"    # text, json, logfmt
log_timestamps = true
log_caller = false
`
}
