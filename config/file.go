package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"seamless/internal/ticker"
)

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

// DefaultFeed is the feed pattern written by Default.
const DefaultFeed = "${HOME}/.config/seamless/feed/**/*.{yaml,yml,md}"

// File is the on-disk configuration.
type File struct {
	Ticker ticker.Options `yaml:"ticker"`
	// Feed is a doublestar glob of item files. ${VAR} references expand.
	Feed string `yaml:"feed"`
	// RootFontSize scales single-stop distances when ticker.is_rem_unit is
	// set.
	RootFontSize float64 `yaml:"root_font_size,omitempty"`
	// Stats records loop counts to the local database.
	Stats bool `yaml:"stats"`
}

// Default returns the configuration used when no file exists.
func Default() File {
	return File{
		Ticker:       ticker.DefaultOptions(),
		Feed:         DefaultFeed,
		RootFontSize: 1,
		Stats:        true,
	}
}

// Load reads path on top of the defaults. Missing keys keep their default.
func Load(path string) (File, error) {
	f := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return f, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &f); err != nil {
		return Default(), fmt.Errorf("failed to parse config: %w", err)
	}
	return f, nil
}

// FeedPattern returns the feed glob with environment variables expanded.
func (f File) FeedPattern() string { return expandEnvVars(f.Feed) }

// Save writes f to path, creating the directory when needed.
func Save(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandEnvVars expands environment variables in the format ${VAR_NAME}
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}

	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}
