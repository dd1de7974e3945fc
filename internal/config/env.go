package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/nibzard/tasks-go/internal/utils"
)

// loadFromEnv overrides config from environment variables and updates
// source tracking when sources is non-nil. Malformed numbers and booleans
// are reported instead of silently ignored.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	mark := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	setString := func(env, field string, target *string) {
		if v := os.Getenv(env); v != "" {
			*target = v
			mark(field)
		}
	}
	setBool := func(env, field string, target *bool) error {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		b, ok := utils.ParseBool(v)
		if !ok {
			return fmt.Errorf("%s: invalid boolean %q", env, v)
		}
		*target = b
		mark(field)
		return nil
	}

	setString("TASKS_FILE", "tasks_file", &cfg.TasksFile)
	setString("TASKS_STATIC_DIR", "static_dir", &cfg.StaticDir)
	setString("TASKS_HOST", "host", &cfg.Host)
	setString("TASKS_SERVER", "server_url", &cfg.ServerURL)
	setString("TASKS_LOG_DIR", "log_dir", &cfg.LogDir)
	setString("TASKS_LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("TASKS_LOG_FORMAT", "log_format", &cfg.LogFormat)

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: invalid number %q", v)
		}
		cfg.Port = port
		mark("port")
	}

	if v := os.Getenv("TASKS_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = utils.SplitAndTrim(v, ",")
		mark("cors_origins")
	}

	bools := []struct {
		env    string
		field  string
		target *bool
	}{
		{"TASKS_EXPOSE_ERRORS", "expose_errors", &cfg.ExposeErrors},
		{"TASKS_LENIENT_READ", "lenient_read", &cfg.LenientRead},
		{"TASKS_WATCH", "watch_file", &cfg.WatchFile},
		{"TASKS_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps},
		{"TASKS_LOG_CALLER", "log_caller", &cfg.LogCaller},
	}
	for _, b := range bools {
		if err := setBool(b.env, b.field, b.target); err != nil {
			return err
		}
	}

	return nil
}
