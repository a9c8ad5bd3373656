package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autolib", "config.toml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.Web.Port != 8765 || !cfg.Clipboard.Restore || cfg.Clipboard.PollAttempts != 20 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}

	again, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.SettleDelay() != 20*time.Millisecond {
		t.Errorf("SettleDelay() = %v, want 20ms", again.SettleDelay())
	}
}

func TestLoadFromValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
log_level = "loud"

[injection]
settle_delay_ms = 500

[clipboard]
poll_attempts = 0
restore = false

[web]
port = 70000
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Injection.SettleDelayMs != 20 {
		t.Errorf("SettleDelayMs = %d, want 20", cfg.Injection.SettleDelayMs)
	}
	if cfg.Clipboard.PollAttempts != 20 {
		t.Errorf("PollAttempts = %d, want 20", cfg.Clipboard.PollAttempts)
	}
	if cfg.Clipboard.Restore {
		t.Error("Restore = true, want false from file")
	}
	if cfg.Web.Port != 8765 {
		t.Errorf("Port = %d, want 8765", cfg.Web.Port)
	}
}

func TestLoadFromRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[web\nport = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom succeeded on malformed TOML")
	}
}

func TestParseLogLevel(t *testing.T) {
	for _, name := range []string{"debug", "INFO", "warn", "error", ""} {
		if _, err := ParseLogLevel(name); err != nil {
			t.Errorf("ParseLogLevel(%q): %v", name, err)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Error("ParseLogLevel(verbose) succeeded")
	}
}
