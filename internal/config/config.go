package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for awake.
type Config struct {
	BaseDir   string          `toml:"base_dir"`
	LogDir    string          `toml:"log_dir"`
	Database  DatabaseConfig  `toml:"database"`
	PMSet     PMSetConfig     `toml:"pmset"`
	Elevation ElevationConfig `toml:"elevation"`
	Login     LoginConfig     `toml:"login"`
}

// DatabaseConfig represents configuration for the preference database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// PMSetConfig locates the power management tool used for schedule queries.
type PMSetConfig struct {
	Path string `toml:"path"`
}

// ElevationConfig selects how privileged scheduler commands are run.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ElevationConfig struct {
	Type          string `toml:"type"`                     // "osascript" (default), "sudo" or "dryrun"
	OsascriptPath string `toml:"osascript_path,omitempty"` // only used for type=osascript
	SudoPath      string `toml:"sudo_path,omitempty"`      // only used for type=sudo
}

// LoginConfig describes the LaunchAgent used for launch at login.
type LoginConfig struct {
	Label     string `toml:"label"`
	AgentsDir string `toml:"agents_dir"`
	Program   string `toml:"program,omitempty"` // defaults to the running executable
}

// NewConfig creates a Config with default settings rooted at baseDir.
// homeDir locates the per-user LaunchAgents directory.
func NewConfig(baseDir, homeDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		PMSet: PMSetConfig{Path: "/usr/bin/pmset"},
		Elevation: ElevationConfig{
			Type:          "osascript",
			OsascriptPath: "/usr/bin/osascript",
			SudoPath:      "/usr/bin/sudo",
		},
		Login: LoginConfig{
			Label:     "dev.awake.agent",
			AgentsDir: filepath.Join(homeDir, "Library", "LaunchAgents"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader on top of base, so keys
// absent from the file keep base's values. base may be nil.
func (m *Manager) Read(r io.Reader, base *Config) (*Config, error) {
	var cfg Config
	if base != nil {
		cfg = *base
	}
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path, layered over base.
func ReadFromFile(path string, base *Config) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f, base)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path over base. A missing file is not an error:
// base is returned unchanged.
func Load(path string, base *Config) (*Config, error) {
	cfg, err := ReadFromFile(path, base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return base, nil
		}
		return nil, err
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to a new config file at path. It refuses to overwrite.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
