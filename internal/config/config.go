// Package config holds the settings of the ranger commands: which external
// programs provide frecency data, selection and trashing, and the argument
// length budget used when batching.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/svrvt/vc-ranger/internal/batch"
	"gopkg.in/yaml.v3"
)

// Selectors names the interactive selector programs.
type Selectors struct {
	Directory string `yaml:"directory"`
	File      string `yaml:"file"`
}

// Config holds all ranger-cmd configuration.
type Config struct {
	// Frecency is the frecency index program (fasd compatible flags).
	Frecency  string    `yaml:"frecency"`
	Selectors Selectors `yaml:"selectors"`
	// Trash receives the files to delete, batched under Budget.
	Trash string `yaml:"trash"`
	// LineCount lists "<count> <file>" lines through its own selector.
	LineCount     string `yaml:"line_count"`
	SearchedFiles string `yaml:"searched_files"`
	Budget        int    `yaml:"budget"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Frecency: "fasd",
		Selectors: Selectors{
			Directory: "fzf-select-dir",
			File:      "fzf-select-file",
		},
		Trash:         "trash-put",
		LineCount:     "line-count-by-file-fzf",
		SearchedFiles: "list-searched-files",
		Budget:        batch.DefaultBudget,
	}
}

// Load reads the YAML file at path on top of the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of the defaults. Unknown keys are
// rejected.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every program is named and the budget is usable.
func (c *Config) Validate() error {
	if c.Budget <= 0 {
		return fmt.Errorf("%w: budget must be positive, got %d", batch.ErrInvalidBudget, c.Budget)
	}
	programs := map[string]string{
		"frecency":            c.Frecency,
		"selectors.directory": c.Selectors.Directory,
		"selectors.file":      c.Selectors.File,
		"trash":               c.Trash,
		"line_count":          c.LineCount,
		"searched_files":      c.SearchedFiles,
	}
	for key, value := range programs {
		if value == "" {
			return fmt.Errorf("config key %s must name a program", key)
		}
	}
	return nil
}
