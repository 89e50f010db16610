// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the lottiepack command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/lottiepack/cmd/lottiepack/cli"
	"github.com/bureau-foundation/lottiepack/lib/version"
)

// Root builds and returns the complete lottiepack command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "lottiepack",
		Description: `lottiepack: build and read dotLottie containers.

A container is a zip archive bundling Lottie animations with the images,
audio and fonts they use, their themes, state machines and global
inputs, indexed by manifest.json. Embedded payloads are moved into
shared, deduplicated asset entries at build time.`,
		Subcommands: []*cli.Command{
			buildCommand(),
			inspectCommand(),
			extractCommand(),
			unpackCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					if len(args) > 0 {
						return fmt.Errorf("version takes no arguments, got %q", args[0])
					}
					fmt.Fprintf(os.Stdout, "lottiepack %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Build a container from a recipe",
				Command:     "lottiepack build loader.jsonc -o loader.lottie",
			},
			{
				Description: "Show what a container holds",
				Command:     "lottiepack inspect loader.lottie",
			},
		},
	}
}

// readArchive reads a container file for the read-side commands.
func readArchive(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading container: %w", err)
	}
	return data, nil
}

// writeFileAtomic writes data to path through a temporary file in the
// same directory, so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	file, err := os.CreateTemp(filepath.Dir(path), ".lottiepack-*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	temporaryPath := file.Name()

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary file: %w", err)
	}
	if err := os.Chmod(temporaryPath, 0644); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
