package config

import (
	"os"
	"path/filepath"
)

// fileLayer is one config file level. The first candidate that exists is
// read; later layers override earlier ones.
type fileLayer struct {
	name       string
	source     ConfigSource
	candidates []string
}

func fileLayers() []fileLayer {
	var user []string
	if home, err := os.UserHomeDir(); err == nil {
		user = append(user, filepath.Join(home, ".tasks", "tasks.toml"))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		user = append(user, filepath.Join(dir, "tasks", "tasks.toml"))
	}
	return []fileLayer{
		{name: "user", source: SourceUserFile, candidates: user},
		{name: "project", source: SourceProjFile, candidates: []string{"tasks.toml", ".tasks.toml"}},
	}
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.TasksFile = DefaultTasksFile
	cfg.LenientRead = false
	cfg.WatchFile = true

	cfg.StaticDir = DefaultStaticDir
	cfg.Host = ""
	cfg.Port = DefaultPort
	cfg.CORSOrigins = []string{"*"}
	cfg.ExposeErrors = true
	cfg.MaxBodyBytes = DefaultMaxBodyBytes
	cfg.ShutdownTimeoutSeconds = DefaultShutdownTimeout

	cfg.ServerURL = DefaultServerURL

	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = "info"
	cfg.LogFormat = "text"
	cfg.LogTimestamps = true
	cfg.LogCaller = false
}

// GetConfigFile returns the config file with the highest precedence that
// was read, or "" when only defaults, env and flags were used.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
