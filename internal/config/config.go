package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vjjda/suttaworks/internal/hierarchy"
	"github.com/vjjda/suttaworks/internal/sources"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor SUTTAWORKS_CONFIG is set.
const DefaultPath = "config/builder_config.yaml"

// ErrMissingKey is wrapped by Validate for every absent required key.
var ErrMissingKey = errors.New("missing required config key")

// Config is the builder section of the config file.
type Config struct {
	// Output location for the built hierarchy.
	Path string `yaml:"path"`
	Name string `yaml:"name"`

	// Tree sources, in processing order.
	Tree sources.Descriptors `yaml:"tree"`

	// Suttaplex card directory feeding the validity oracle.
	Suttaplex string `yaml:"suttaplex"`

	// Canonical parent corrections.
	Overrides hierarchy.Overrides `yaml:"overrides"`

	baseDir string
}

type file struct {
	Builder *Config `yaml:"suttacentral-sqlite"`
}

// PathFromEnv returns SUTTAWORKS_CONFIG, or DefaultPath when unset.
func PathFromEnv() string {
	if v := os.Getenv("SUTTAWORKS_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads and validates the config file at path. Relative paths inside
// the file resolve against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if f.Builder == nil {
		return nil, fmt.Errorf("%w: suttacentral-sqlite", ErrMissingKey)
	}

	cfg := f.Builder
	cfg.baseDir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every required key is present.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: path", ErrMissingKey)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingKey)
	}
	if len(c.Tree) == 0 {
		return fmt.Errorf("%w: tree", ErrMissingKey)
	}
	if c.Suttaplex == "" {
		return fmt.Errorf("%w: suttaplex", ErrMissingKey)
	}
	return nil
}

// BaseDir is the directory relative paths resolve against.
func (c *Config) BaseDir() string {
	return c.baseDir
}

// Resolve makes p absolute relative to the config file.
func (c *Config) Resolve(p string) string {
	if filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}
	return filepath.Join(c.baseDir, p)
}

// OutputPath is where the built hierarchy is written.
func (c *Config) OutputPath() string {
	return c.Resolve(filepath.Join(c.Path, c.Name))
}
