// Package config loads the CLI configuration file.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds CLI defaults. Command-line flags override these values.
type Config struct {
	// StoreDir is the learner store directory.
	StoreDir string `yaml:"store_dir"`
	// Backend selects the persistence backend: "file" or "sqlite".
	Backend string `yaml:"backend"`
	// Scaffold selects the behavior variant: "none", "classifier" or "qa".
	Scaffold string `yaml:"scaffold"`
	// TopK is the default result count for search and explain.
	TopK int `yaml:"topk"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		StoreDir: "lexmem_store",
		Backend:  "file",
		Scaffold: "none",
		TopK:     5,
	}
}

// Load reads a config from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
