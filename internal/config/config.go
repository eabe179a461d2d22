// Package config loads the optional dcp configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the optional dcp configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Output   OutputConfig   `toml:"output"`
}

// DefaultsConfig holds persistent flag defaults. Nil means "not set", so an
// explicit false in the file is distinguishable from an absent key.
type DefaultsConfig struct {
	Buffer    *string  `toml:"buffer,omitempty"`
	Overwrite *bool    `toml:"overwrite,omitempty"`
	Preserve  *bool    `toml:"preserve,omitempty"`
	Verify    *bool    `toml:"verify,omitempty"`
	Compare   *string  `toml:"compare,omitempty"`
	BWLimit   *string  `toml:"bwlimit,omitempty"`
	Exclude   []string `toml:"exclude,omitempty"`
}

// OutputConfig controls terminal output.
type OutputConfig struct {
	// Color is "auto" (default), "always" or "never".
	Color *string `toml:"color,omitempty"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "dcp", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}

// LoadFile reads and validates the config file at path. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values. Sizes are checked where they are used.
func (c Config) Validate() error {
	if c.Defaults.Compare != nil && !slices.Contains([]string{"hash", "bytes"}, *c.Defaults.Compare) {
		return fmt.Errorf("defaults.compare: %q is not one of hash, bytes", *c.Defaults.Compare)
	}
	if c.Output.Color != nil && !slices.Contains([]string{"auto", "always", "never"}, *c.Output.Color) {
		return fmt.Errorf("output.color: %q is not one of auto, always, never", *c.Output.Color)
	}
	return nil
}
