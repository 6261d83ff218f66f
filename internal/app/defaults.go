package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - AWAKE_CONFIG_PATH: config file location (default: ~/.config/awake.toml)
//   - AWAKE_HOME: base directory for awake data (default: ~/.local/share/awake)
func GetDefaults() (map[string]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	configPath := os.Getenv("AWAKE_CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join(homeDir, ".config", "awake.toml")
	}

	baseDir := os.Getenv("AWAKE_HOME")
	if baseDir == "" {
		baseDir = filepath.Join(homeDir, ".local", "share", "awake")
	}

	return map[string]string{
		"home_dir":    homeDir,
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}
