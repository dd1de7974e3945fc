package config

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load builds the Config from its layers, each overriding the one before:
// defaults, the user file (~/.tasks/tasks.toml, else tasks/tasks.toml under
// os.UserConfigDir), the project file (tasks.toml or .tasks.toml in the
// working directory), the environment and finally flags.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources is Load that also records, per TOML key, which layer set
// the final value, and which config files were read.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cfg := &Config{}
	setDefaults(cfg)
	sources := make(map[string]ConfigSource, len(configFields()))
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	var files []string
	for _, layer := range fileLayers() {
		path := firstExisting(layer.candidates)
		if path == "" {
			continue
		}
		if err := loadConfigFile(cfg, path, sources, layer.source); err != nil {
			return nil, fmt.Errorf("loading %s config file %s: %w", layer.name, path, err)
		}
		files = append(files, path)
	}

	if err := loadFromEnv(cfg, sources); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if fs != nil {
		if err := parseFlags(cfg, fs, args, sources); err != nil {
			return nil, fmt.Errorf("parsing flags: %w", err)
		}
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return &ConfigWithSources{Config: cfg, Sources: sources, Files: files}, nil
}

// configFields returns the TOML keys of every configurable field.
func configFields() []string {
	return []string{
		"tasks_file",
		"lenient_read",
		"watch_file",
		"static_dir",
		"host",
		"port",
		"cors_origins",
		"expose_errors",
		"max_body_bytes",
		"shutdown_timeout_seconds",
		"server_url",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// loadConfigFile decodes the TOML file at path over cfg and marks every key
// present in the file as coming from source. Unknown keys are an error.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	for _, field := range configFields() {
		if md.IsDefined(field) {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig resolves paths and validates the result.
func finalizeConfig(cfg *Config) error {
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}
	resolvePaths(cfg)
	cfg.ServerURL = strings.TrimRight(strings.TrimSpace(cfg.ServerURL), "/")

	return cfg.Validate()
}
