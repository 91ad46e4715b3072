// Package config loads recon configuration from viper, config files and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDatabasePath returns the database location used when none is configured.
func DefaultDatabasePath() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "recon", "recon.db")
	}
	return ExpandPath("~/.local/share/recon/recon.db")
}

// DefaultConfigDir returns the directory searched for config.yaml.
func DefaultConfigDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "recon")
	}
	return ExpandPath("~/.config/recon")
}
