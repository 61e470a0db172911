package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the settings masp reads from an optional TOML file,
// grounded on lookbusy1344-arm_emulator/config/config.go's
// DefaultConfig+LoadFrom shape: a struct decoded in place over
// defaults, never failing merely because the file is absent.
type Config struct {
	IncludePaths []string          `toml:"include_paths"`
	CommentChar  string            `toml:"comment_char"`
	Alternate    bool              `toml:"alternate"`
	Symbols      map[string]string `toml:"symbols"`
}

// DefaultConfig returns the built-in defaults applied when no config
// file is found.
func DefaultConfig() *Config {
	return &Config{
		CommentChar: ";",
	}
}

// DefaultConfigPath returns the platform-specific default config file
// location, following the same GOOS switch the teacher's
// GetConfigPath uses.
func DefaultConfigPath() string {
	var dir string
	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		dir = filepath.Join(dir, "masp")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "masp.toml"
		}
		dir = filepath.Join(home, ".config", "masp")
	}
	return filepath.Join(dir, "config.toml")
}

// LoadConfig loads configuration from path, falling back to defaults
// if the file does not exist.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
