package config

import (
	"os"
	"path/filepath"
)

const appName = "vgtrends"

// XDGConfigHome returns $XDG_CONFIG_HOME, falling back to ~/.config.
func XDGConfigHome() string {
	return xdgBase("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns $XDG_DATA_HOME, falling back to ~/.local/share.
func XDGDataHome() string {
	return xdgBase("XDG_DATA_HOME", ".local", "share")
}

// xdgBase resolves an XDG base directory. Without a home directory it
// degrades to the working directory.
func xdgBase(env string, underHome ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, underHome...)...)
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultDBPath returns the default path for the SQLite export.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, appName+".db")
}
