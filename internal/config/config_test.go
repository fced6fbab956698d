package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)
	t.Setenv(EnvConfigFile, "")
	for _, k := range []string{EnvPort, EnvLogLevel, EnvAuthToken, EnvProjectID, EnvUndoLimit,
		EnvPixelsPerSecond, EnvSnapDisabled, EnvMediaDir, EnvSuggestionsFile, EnvCloudURL, EnvCloudToken, EnvFrameRate} {
		t.Setenv(k, "")
	}
	return dir
}

func TestNew_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.UndoLimit() != 50 {
		t.Errorf("UndoLimit = %d, want 50", cfg.UndoLimit())
	}
	if !cfg.SnapEnabled() {
		t.Error("SnapEnabled = false, want true")
	}
	if cfg.DBPath() != filepath.Join(dir, DBFilename) {
		t.Errorf("DBPath = %q", cfg.DBPath())
	}
	if cfg.MediaDir() != filepath.Join(dir, "media") {
		t.Errorf("MediaDir = %q", cfg.MediaDir())
	}
	if cfg.ConfigFile() != "" {
		t.Errorf("ConfigFile = %q, want none", cfg.ConfigFile())
	}
}

func TestNew_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	body := `
[server]
port = 9100
auth_token = "from-file"

[editor]
undo_limit = 20
snap = false
pixels_per_second = 80.5

[sync]
timeout_seconds = 3
cloud_url = "https://cloud.example"
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFilename), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvAuthToken, "from-env")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port())
	}
	if cfg.AuthToken() != "from-env" {
		t.Errorf("AuthToken = %q, want env to win", cfg.AuthToken())
	}
	if cfg.UndoLimit() != 20 || cfg.SnapEnabled() || cfg.PixelsPerSecond() != 80.5 {
		t.Errorf("editor section = %d/%v/%v", cfg.UndoLimit(), cfg.SnapEnabled(), cfg.PixelsPerSecond())
	}
	if cfg.SyncTimeout() != 3*time.Second || cfg.CloudURL() != "https://cloud.example" {
		t.Errorf("sync section = %v/%q", cfg.SyncTimeout(), cfg.CloudURL())
	}
}

func TestNew_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port not a number", EnvPort, "abc"},
		{"port out of range", EnvPort, "70000"},
		{"undo limit zero", EnvUndoLimit, "0"},
		{"zoom negative", EnvPixelsPerSecond, "-3"},
		{"snap flag", EnvSnapDisabled, "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)
			if _, err := New(); err == nil {
				t.Errorf("New() with %s=%q succeeded, want error", tt.key, tt.value)
			}
		})
	}
}

func TestNew_BadFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("[server\nport = "), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigFile, path)

	if _, err := New(); err == nil {
		t.Error("New() with malformed TOML succeeded, want error")
	}
}
