package config

import (
	"flag"

	"github.com/nibzard/tasks-go/internal/utils"
)

// flagFields maps flag names to the TOML key they override.
var flagFields = map[string]string{
	"tasks-file":       "tasks_file",
	"lenient-read":     "lenient_read",
	"watch":            "watch_file",
	"static-dir":       "static_dir",
	"host":             "host",
	"port":             "port",
	"cors-origins":     "cors_origins",
	"expose-errors":    "expose_errors",
	"max-body-bytes":   "max_body_bytes",
	"shutdown-timeout": "shutdown_timeout_seconds",
	"server":           "server_url",
	"log-dir":          "log_dir",
	"log-level":        "log_level",
	"log-format":       "log_format",
	"log-timestamps":   "log_timestamps",
	"log-caller":       "log_caller",
}

// parseFlags defines the configuration flags on fs, parses args and
// records every flag that was set explicitly in sources.
//
// Flags are bound straight to cfg, so their defaults are whatever the
// earlier layers produced and unset flags change nothing.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	// Storage
	fs.StringVar(&cfg.TasksFile, "tasks-file", cfg.TasksFile, "Path to the tasks JSON file")
	fs.BoolVar(&cfg.LenientRead, "lenient-read", cfg.LenientRead, "Treat an unreadable tasks file as empty")
	fs.BoolVar(&cfg.WatchFile, "watch", cfg.WatchFile, "Log edits made to the tasks file by other programs")

	// HTTP server
	fs.StringVar(&cfg.StaticDir, "static-dir", cfg.StaticDir, "Directory with the web frontend (embedded copy used if missing)")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "Interface to listen on (empty for all)")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "Port to listen on")
	fs.Func("cors-origins", "Comma-separated allowed CORS origins (default *)", func(s string) error {
		cfg.CORSOrigins = utils.SplitAndTrim(s, ",")
		return nil
	})
	fs.BoolVar(&cfg.ExposeErrors, "expose-errors", cfg.ExposeErrors, "Include internal error text in 500 responses")
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", cfg.MaxBodyBytes, "Maximum request body size")
	fs.IntVar(&cfg.ShutdownTimeoutSeconds, "shutdown-timeout", cfg.ShutdownTimeoutSeconds, "Graceful shutdown timeout (seconds)")

	// Clients
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL used by tui and ls")

	// Logging
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if field, ok := flagFields[f.Name]; ok {
				sources[field] = SourceFlag
			}
		})
	}
	return nil
}
