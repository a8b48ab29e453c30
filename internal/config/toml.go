// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Timer  TimerConfig  `toml:"timer"`
	Speech SpeechConfig `toml:"speech"`
	Log    LogConfig    `toml:"log"`
}

// TimerConfig maps timer-related settings.
type TimerConfig struct {
	Duration *int    `toml:"duration"`
	Presets  []int   `toml:"presets"`
	Mode     *string `toml:"mode"`
}

// SpeechConfig maps announcement settings.
type SpeechConfig struct {
	Enabled       *bool    `toml:"enabled"`
	Message       *string  `toml:"message"`
	Banner        *string  `toml:"banner"`
	Lang          *string  `toml:"lang"`
	Rate          *float64 `toml:"rate"`
	Voice         *string  `toml:"voice"`
	VoiceLocale   *string  `toml:"voice-locale"`
	Command       *string  `toml:"command"`
	VoicesCommand *string  `toml:"voices-command"`
	VoicesFormat  *string  `toml:"voices-format"`
	DesktopAlert  *bool    `toml:"desktop-alert"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Debug *bool   `toml:"debug"`
	Path  *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
