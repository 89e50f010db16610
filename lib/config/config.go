// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/lottiepack/lib/archive"
	"github.com/bureau-foundation/lottiepack/lib/dedup"
	"github.com/bureau-foundation/lottiepack/lib/manifest"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "LOTTIEPACK_CONFIG"

// Config is the lottiepack configuration.
type Config struct {
	// Build sets the defaults for `lottiepack build`.
	Build BuildConfig `yaml:"build"`

	// Dedup tunes perceptual image matching.
	Dedup DedupConfig `yaml:"dedup"`

	// Compression sets archive entry options per category.
	Compression CompressionConfig `yaml:"compression"`

	// Cache configures the persistent fingerprint cache.
	Cache CacheConfig `yaml:"cache"`

	// Fetch configures retrieval of url sources.
	Fetch FetchConfig `yaml:"fetch"`
}

// BuildConfig holds build defaults. Command-line flags override them.
type BuildConfig struct {
	// Version is the manifest generation: "1" or "2".
	// Default: 2
	Version string `yaml:"version"`

	// Dedup merges identical and near-identical assets.
	// Default: true
	Dedup bool `yaml:"dedup"`

	// Generator overrides the manifest generator tag.
	// Default: empty (the lottiepack version)
	Generator string `yaml:"generator"`
}

// DedupConfig tunes perceptual matching of raster images.
type DedupConfig struct {
	// ColorTolerance is the largest per-channel difference of any grid
	// cell's mean colour that still counts as a match.
	// Default: 8
	ColorTolerance int `yaml:"color_tolerance"`

	// ContrastTolerance is the largest change of any grid cell's
	// darkest or brightest luma that still counts as a match.
	// Default: 48
	ContrastTolerance int `yaml:"contrast_tolerance"`
}

// CompressionConfig sets entry options per category. Unset categories
// use the default for the entry's media type.
type CompressionConfig struct {
	Animations    archive.Options `yaml:"animations"`
	Themes        archive.Options `yaml:"themes"`
	StateMachines archive.Options `yaml:"state_machines"`
	GlobalInputs  archive.Options `yaml:"global_inputs"`
	Images        archive.Options `yaml:"images"`
	Audio         archive.Options `yaml:"audio"`
	Fonts         archive.Options `yaml:"fonts"`
}

// CacheConfig configures the fingerprint cache.
type CacheConfig struct {
	// Path is the cache file. Empty disables caching.
	// Default: empty
	Path string `yaml:"path"`
}

// FetchConfig configures url retrieval.
type FetchConfig struct {
	// Timeout bounds each request, as a Go duration string.
	// Default: 30s
	Timeout string `yaml:"timeout"`

	// MaxBytes caps a single response body.
	// Default: 256 MiB
	MaxBytes int64 `yaml:"max_bytes"`
}

// Default returns the configuration used when no file is given, and
// the base that a loaded file is merged into.
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			Version: "2",
			Dedup:   true,
		},
		Dedup: DedupConfig{
			ColorTolerance:    dedup.DefaultColorTolerance,
			ContrastTolerance: dedup.DefaultContrastTolerance,
		},
		Fetch: FetchConfig{
			Timeout:  "30s",
			MaxBytes: 256 << 20,
		},
	}
}

// Load loads configuration from the file named by LOTTIEPACK_CONFIG.
// There is no discovery: if the variable is not set, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your lottiepack.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path over [Default]. Unknown keys
// are errors. ${HOME} and ${VAR:-default} are expanded in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

// loadFile decodes one file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Cache.Path = expandVars(c.Cache.Path, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Generation returns the configured manifest generation.
func (c *Config) Generation() (manifest.Generation, error) {
	return manifest.ParseGeneration(c.Build.Version)
}

// FetchTimeout returns the parsed fetch timeout.
func (c *Config) FetchTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Fetch.Timeout)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Generation(); err != nil {
		errs = append(errs, fmt.Errorf("build.version: %w", err))
	}
	if c.Dedup.ColorTolerance < 0 || c.Dedup.ColorTolerance > 255 {
		errs = append(errs, fmt.Errorf("dedup.color_tolerance must be in [0, 255], got %d", c.Dedup.ColorTolerance))
	}
	if c.Dedup.ContrastTolerance < 0 || c.Dedup.ContrastTolerance > 255 {
		errs = append(errs, fmt.Errorf("dedup.contrast_tolerance must be in [0, 255], got %d", c.Dedup.ContrastTolerance))
	}

	categories := []struct {
		name    string
		options archive.Options
	}{
		{"animations", c.Compression.Animations},
		{"themes", c.Compression.Themes},
		{"state_machines", c.Compression.StateMachines},
		{"global_inputs", c.Compression.GlobalInputs},
		{"images", c.Compression.Images},
		{"audio", c.Compression.Audio},
		{"fonts", c.Compression.Fonts},
	}
	for _, category := range categories {
		if err := category.options.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("compression.%s: %w", category.name, err))
		}
	}

	if timeout, err := c.FetchTimeout(); err != nil {
		errs = append(errs, fmt.Errorf("fetch.timeout: %w", err))
	} else if timeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout must be positive, got %s", timeout))
	}
	if c.Fetch.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("fetch.max_bytes must be positive, got %d", c.Fetch.MaxBytes))
	}

	return errors.Join(errs...)
}
