package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Timer.Duration != nil || cfg.Speech.Voice != nil {
		t.Fatalf("expected empty config")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `[timer]
duration = 1800
presets = [600, 1800]
mode = "down"

[speech]
voice = "Yuna"
rate = 1.25
desktop-alert = true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Timer.Duration == nil || *cfg.Timer.Duration != 1800 {
		t.Fatalf("unexpected duration: %v", cfg.Timer.Duration)
	}
	if len(cfg.Timer.Presets) != 2 || cfg.Timer.Presets[0] != 600 {
		t.Fatalf("unexpected presets: %v", cfg.Timer.Presets)
	}
	if cfg.Timer.Mode == nil || *cfg.Timer.Mode != "down" {
		t.Fatalf("unexpected mode")
	}
	if cfg.Speech.Voice == nil || *cfg.Speech.Voice != "Yuna" {
		t.Fatalf("unexpected voice")
	}
	if cfg.Speech.Rate == nil || *cfg.Speech.Rate != 1.25 {
		t.Fatalf("unexpected rate")
	}
	if cfg.Speech.DesktopAlert == nil || !*cfg.Speech.DesktopAlert {
		t.Fatalf("unexpected desktop-alert")
	}
	if cfg.Speech.Lang != nil {
		t.Fatalf("expected unset lang to stay nil")
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[timer]\nduraton = 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for misspelled key")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != "/tmp/cfg/stretchy/config.toml" {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != "/tmp/data/stretchy/stretchy.db" {
		t.Fatalf("unexpected db path: %s", got)
	}
	if got := DefaultLogPath(); got != "/tmp/data/stretchy/stretchy.log" {
		t.Fatalf("unexpected log path: %s", got)
	}
}
