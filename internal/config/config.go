// Manages store configuration stored in recordstore.yaml.

// Package config loads and validates the store configuration. The behavior
// knobs (set on a missing file, remove of an absent key) are explicit
// settings here rather than implicit code paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the full store configuration.
// Loaded from recordstore.yaml, created with defaults if missing.
type Config struct {
	// Dir is the store directory holding all record files.
	Dir string `yaml:"dir"`

	// LogFile is the operation log. Relative paths resolve under Dir.
	LogFile string `yaml:"log_file"`

	// MergeFile is the aggregate written by the merge operation. It lives in
	// Dir and is excluded from merge inputs.
	MergeFile string `yaml:"merge_file"`

	// SetCreatesMissing makes set create a missing record file instead of
	// failing.
	SetCreatesMissing bool `yaml:"set_creates_missing"`

	// StrictRemove makes remove of an absent key an error instead of an
	// idempotent no-op.
	StrictRemove bool `yaml:"strict_remove"`

	// History enables git versioning of the store directory; every
	// successful mutation becomes a commit.
	History bool `yaml:"history"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Dir:       "./data",
		LogFile:   "log.txt",
		MergeFile: "merge.json",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return errors.New("dir is required")
	}
	if c.LogFile == "" {
		return errors.New("log_file is required")
	}
	if c.MergeFile == "" {
		return errors.New("merge_file is required")
	}
	if c.MergeFile != filepath.Base(c.MergeFile) {
		return errors.New("merge_file must be a bare file name")
	}
	if !strings.HasSuffix(c.MergeFile, ".json") {
		return errors.New("merge_file must end with .json")
	}
	return nil
}

// Load reads configuration from path. Creates the file with defaults if it
// doesn't exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a CLI flag, not user input
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: config holds no secrets
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// LogPath returns the operation log path, resolving relative paths under Dir.
func (c *Config) LogPath() string {
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(c.Dir, c.LogFile)
}
