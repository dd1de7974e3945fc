// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultTasksFile       = "tasks.json"
	DefaultStaticDir       = "public"
	DefaultPort            = 3001
	DefaultServerURL       = "http://localhost:3001"
	DefaultLogDir          = "~/.tasks"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 5
)

// Config holds the full configuration for the server and its clients.
type Config struct {
	// Storage
	TasksFile   string `toml:"tasks_file"`
	LenientRead bool   `toml:"lenient_read"`
	WatchFile   bool   `toml:"watch_file"`

	// HTTP server
	StaticDir              string   `toml:"static_dir"`
	Host                   string   `toml:"host"`
	Port                   int      `toml:"port"`
	CORSOrigins            []string `toml:"cors_origins"`
	ExposeErrors           bool     `toml:"expose_errors"`
	MaxBodyBytes           int64    `toml:"max_body_bytes"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds"`

	// Clients (tui, ls)
	ServerURL string `toml:"server_url"`

	// Logging configuration
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if c.TasksFile == "" {
		return fmt.Errorf("tasks_file must not be empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.ShutdownTimeoutSeconds < 0 {
		return fmt.Errorf("shutdown_timeout_seconds must not be negative, got %d", c.ShutdownTimeoutSeconds)
	}
	return nil
}
