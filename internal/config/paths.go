package config

import (
	"os"
	"path/filepath"
	"strings"
)

// LogsDir returns the absolute log directory.
func (p PathsConfig) LogsDir() string { return ResolveRuntimePath(p.Logs, defaultLogsDir) }

// MediaDir returns the absolute directory used by the local image store.
func (p PathsConfig) MediaDir() string { return ResolveRuntimePath(p.Media, defaultMediaDir) }

// ResolveRuntimePath resolves relative runtime directories against the working directory.
func ResolveRuntimePath(raw string, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = fallback
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	wd, err := os.Getwd()
	if err != nil || strings.TrimSpace(wd) == "" {
		wd = "."
	}
	return filepath.Clean(filepath.Join(wd, target))
}
