package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("AWAKE_CONFIG_PATH", "/custom/awake.toml")
		t.Setenv("AWAKE_HOME", "/custom/awake")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/awake.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/awake.toml")
		}
		if defaults["base_dir"] != "/custom/awake" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/awake")
		}
		if defaults["log_dir"] != "/custom/awake/log" {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/awake/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("AWAKE_CONFIG_PATH", "")
		t.Setenv("AWAKE_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		if want := filepath.Join(homeDir, ".config", "awake.toml"); defaults["config_path"] != want {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], want)
		}
		wantBase := filepath.Join(homeDir, ".local", "share", "awake")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}
		if want := filepath.Join(wantBase, "log"); defaults["log_dir"] != want {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], want)
		}
		if defaults["home_dir"] != homeDir {
			t.Errorf("home_dir = %q, want %q", defaults["home_dir"], homeDir)
		}
	})
}
