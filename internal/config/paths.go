package config

import (
	"os"
	"path/filepath"
)

// resolvePaths expands environment variables and a leading "~" in
// tasks_file, static_dir and log_dir, then anchors the first two at
// ProjectRoot when they are relative.
func resolvePaths(cfg *Config) {
	home, _ := os.UserHomeDir()
	for _, p := range []*string{&cfg.TasksFile, &cfg.StaticDir, &cfg.LogDir} {
		*p = expandHome(os.ExpandEnv(*p), home)
	}
	cfg.TasksFile = anchor(cfg.ProjectRoot, cfg.TasksFile)
	cfg.StaticDir = anchor(cfg.ProjectRoot, cfg.StaticDir)
}

// expandHome replaces a leading "~" with home. "~user" forms and an
// unknown home leave p untouched.
func expandHome(p, home string) string {
	if home == "" || p == "" || p[0] != '~' {
		return p
	}
	rest := p[1:]
	if rest != "" && !os.IsPathSeparator(rest[0]) {
		return p
	}
	return filepath.Join(home, rest)
}

func anchor(root, p string) string {
	if p == "" || root == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
