// Package paths resolves sbin's well-known file locations.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName = "sbin"

	// LocalConfigFile is the project-local config, relative to the working
	// directory.
	LocalConfigFile = ".sbin/config.yaml"
)

// ConfigDir returns ~/.config/sbin, or "" when the home directory is unknown.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// UserConfigFile returns ~/.config/sbin/config.yaml, or "".
func UserConfigFile() string {
	return join(ConfigDir(), "config.yaml")
}

// UserCatalogFile returns ~/.config/sbin/commands.yaml, or "".
func UserCatalogFile() string {
	return join(ConfigDir(), "commands.yaml")
}

// DefaultTracesFile returns ~/.config/sbin/traces/traces.jsonl, or "".
func DefaultTracesFile() string {
	return join(ConfigDir(), "traces", "traces.jsonl")
}

// DefaultDebugLog returns sbin-debug.log in the system temp directory.
func DefaultDebugLog() string {
	return filepath.Join(os.TempDir(), appName+"-debug.log")
}

// ExpandHome replaces a leading "~/" with the home directory.
func ExpandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// ResolveWorkDir returns dir as an absolute path to an existing directory.
// An empty dir resolves to the current working directory.
func ResolveWorkDir(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(ExpandHome(dir))
	if err != nil {
		return "", fmt.Errorf("resolving work dir %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("work dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("work dir %q is not a directory", dir)
	}
	return abs, nil
}

func join(dir string, elem ...string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(append([]string{dir}, elem...)...)
}
