// Package config loads vtscope settings from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/vtscope/internal/broadcast"
)

// Config holds the operator-tunable settings. Every field has a default
// matching the tool's historical constants, so running with no config
// file at all behaves identically to the original.
type Config struct {
	// Listen is the loopback address clients connect to.
	Listen string `yaml:"listen"`

	// HistoryFile persists shell command history across runs.
	HistoryFile string `yaml:"history_file"`

	// CatalogPath is the sqlite database recording opened captures.
	// Empty disables the catalog.
	CatalogPath string `yaml:"catalog"`

	// DelayMS is the initial per-character pacing delay in milliseconds.
	DelayMS int `yaml:"delay_ms"`
}

// Default returns the built-in settings.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Listen:      broadcast.DefaultListenAddr,
		HistoryFile: filepath.Join(home, ".vtscope_history"),
		CatalogPath: filepath.Join(home, ".vtscope_catalog.db"),
		DelayMS:     0,
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vtscope.yaml"
	}
	return filepath.Join(home, ".vtscope.yaml")
}

// Load reads the config file at path, filling unset fields with defaults.
// A missing file is not an error: the defaults are returned as-is. A file
// that exists but does not parse is an error, since silently ignoring a
// typo'd config would be worse.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DelayMS < 0 {
		return cfg, fmt.Errorf("config %s: delay_ms must be >= 0", path)
	}
	return cfg, nil
}
