// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/lottiepack/cmd/lottiepack/cli"
	"github.com/bureau-foundation/lottiepack/lib/config"
	"github.com/bureau-foundation/lottiepack/lib/dedup"
	"github.com/bureau-foundation/lottiepack/lib/dotlottie"
	"github.com/bureau-foundation/lottiepack/lib/fetch"
	"github.com/bureau-foundation/lottiepack/lib/manifest"
	"github.com/bureau-foundation/lottiepack/lib/recipe"
)

type buildParams struct {
	cli.Verbosity
	Output  string `json:"output"   flag:"output,o" desc:"container path (default: <recipe name>.lottie)"`
	Version string `json:"version"  flag:"version"  desc:"manifest version, 1 or 2 (default: from config)"`
	NoDedup bool   `json:"no_dedup" flag:"no-dedup" desc:"store every embedded payload as its own asset"`
	Config  string `json:"config"   flag:"config"   desc:"config file (default: $LOTTIEPACK_CONFIG, else built-in defaults)"`
}

func buildCommand() *cli.Command {
	var params buildParams

	return &cli.Command{
		Name:    "build",
		Summary: "Build a container from a recipe",
		Description: `Read a JSONC recipe, assemble the documents it names and write a
dotLottie container.

Paths in the recipe are relative to the recipe file. Url sources are
fetched at build time. Embedded images, audio and fonts are moved out of
the animations into shared asset entries; visually identical images are
stored once unless --no-dedup is given.

Defaults come from the config file (--config or LOTTIEPACK_CONFIG).
Without one, a second generation container is built with perceptual
deduplication.`,
		Usage: "lottiepack build <recipe.jsonc> [flags]",
		Examples: []cli.Example{
			{
				Description: "Build loader.lottie next to the current directory",
				Command:     "lottiepack build recipes/loader.jsonc",
			},
			{
				Description: "Build a first generation container for older players",
				Command:     "lottiepack build loader.jsonc --version 1 -o loader-v1.lottie",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("build requires exactly one recipe path, got %d arguments", len(args))
			}
			_, err := runBuild(ctx, args[0], &params, logger)
			return err
		},
	}
}

// loadConfig resolves the config for a command: an explicit path, then
// LOTTIEPACK_CONFIG, then the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// runBuild builds the recipe at recipePath and returns the output path.
func runBuild(ctx context.Context, recipePath string, params *buildParams, logger *slog.Logger) (string, error) {
	cfg, err := loadConfig(params.Config)
	if err != nil {
		return "", err
	}

	generation, err := cfg.Generation()
	if err != nil {
		return "", err
	}
	if params.Version != "" {
		generation, err = manifest.ParseGeneration(params.Version)
		if err != nil {
			return "", fmt.Errorf("--version: %w", err)
		}
	}

	parsed, err := recipe.ReadFile(recipePath)
	if err != nil {
		return "", err
	}
	container, err := parsed.Container(filepath.Dir(recipePath))
	if err != nil {
		return "", fmt.Errorf("%s: %w", recipePath, err)
	}

	outputPath := params.Output
	if outputPath == "" {
		outputPath = recipe.NameFromPath(recipePath) + ".lottie"
	}
	logger = logger.With("recipe", recipePath, "output", outputPath)

	cache := openCache(cfg.Cache.Path, logger)
	timeout, err := cfg.FetchTimeout()
	if err != nil {
		return "", err
	}

	options := dotlottie.BuildOptions{
		Version:      generation,
		DisableDedup: params.NoDedup || !cfg.Build.Dedup,
		Fingerprinter: &dedup.Perceptual{
			ColorTolerance:    cfg.Dedup.ColorTolerance,
			ContrastTolerance: cfg.Dedup.ContrastTolerance,
			Cache:             cache,
		},
		Fetcher:   fetch.NewHTTP(fetch.HTTPOptions{Timeout: timeout, MaxBytes: cfg.Fetch.MaxBytes}),
		Generator: cfg.Build.Generator,
		Logger:    logger,
		Compression: dotlottie.Compression{
			Animations:    cfg.Compression.Animations,
			Themes:        cfg.Compression.Themes,
			StateMachines: cfg.Compression.StateMachines,
			GlobalInputs:  cfg.Compression.GlobalInputs,
			Images:        cfg.Compression.Images,
			Audio:         cfg.Compression.Audio,
			Fonts:         cfg.Compression.Fonts,
		},
	}

	data, err := container.Build(ctx, options)
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(outputPath, data); err != nil {
		return "", fmt.Errorf("writing %s: %w", outputPath, err)
	}

	if cache != nil {
		if err := cache.Save(); err != nil {
			// The container is already written.
			logger.Warn("saving fingerprint cache failed", "cache", cfg.Cache.Path, "error", err)
		}
	}

	logger.Info("container written", "generation", generation.String(), "bytes", len(data))
	return outputPath, nil
}

// openCache loads the fingerprint cache, starting over when the file
// is unreadable. An empty path disables caching.
func openCache(path string, logger *slog.Logger) *dedup.Cache {
	if path == "" {
		return nil
	}
	cache, err := dedup.LoadCache(path)
	if err != nil {
		logger.Warn("discarding unreadable fingerprint cache", "cache", path, "error", err)
		return dedup.NewCache(path)
	}
	logger.Debug("fingerprint cache loaded", "cache", path, "entries", cache.Len())
	return cache
}
