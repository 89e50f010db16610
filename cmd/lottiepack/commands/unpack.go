// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/lottiepack/cmd/lottiepack/cli"
	"github.com/bureau-foundation/lottiepack/lib/dotlottie"
)

type unpackParams struct {
	cli.Verbosity
	Force bool `json:"force" flag:"force" desc:"overwrite files that already exist"`
}

func unpackCommand() *cli.Command {
	var params unpackParams

	return &cli.Command{
		Name:    "unpack",
		Summary: "Write every entry of a container to a directory",
		Description: `Decompress every archive entry into a directory, keeping the
archive layout (manifest.json, animations/, images/ and so on). Entry
names that would resolve outside the directory are rejected before
anything is written.`,
		Usage: "lottiepack unpack <file.lottie> <directory> [flags]",
		Examples: []cli.Example{
			{
				Description: "Look at the raw entries of a container",
				Command:     "lottiepack unpack loader.lottie /tmp/loader",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("unpack requires <file.lottie> <directory>, got %d arguments", len(args))
			}
			data, err := readArchive(args[0])
			if err != nil {
				return err
			}
			written, err := unpack(data, args[1], params.Force)
			if err != nil {
				return err
			}
			logger.Info("container unpacked", "directory", args[1], "entries", written)
			return nil
		},
	}
}

// unpack writes every entry of the container under directory and
// returns the number of entries written.
func unpack(data []byte, directory string, force bool) (int, error) {
	archive, err := dotlottie.Open(data, dotlottie.OpenOptions{})
	if err != nil {
		return 0, err
	}
	entries := archive.Entries()

	// Resolve every target first so a hostile entry name leaves nothing
	// half written.
	targets := make([]string, len(entries))
	for i, entry := range entries {
		target, err := entryTarget(directory, entry.Name)
		if err != nil {
			return 0, err
		}
		if !force {
			if _, err := os.Lstat(target); err == nil {
				return 0, fmt.Errorf("%s already exists (use --force to overwrite)", target)
			}
		}
		targets[i] = target
	}

	for i, entry := range entries {
		content, err := archive.ReadEntry(entry.Name)
		if err != nil {
			return i, err
		}
		if err := os.MkdirAll(filepath.Dir(targets[i]), 0755); err != nil {
			return i, fmt.Errorf("creating directory for %s: %w", entry.Name, err)
		}
		if err := writeFileAtomic(targets[i], content); err != nil {
			return i, fmt.Errorf("writing %s: %w", entry.Name, err)
		}
	}
	return len(entries), nil
}

// entryTarget maps an archive entry name to a path under directory,
// rejecting absolute names and names that climb out of it.
func entryTarget(directory, name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") || !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", fmt.Errorf("entry name %q escapes the output directory", name)
	}
	target := filepath.Join(directory, filepath.FromSlash(name))
	relative, err := filepath.Rel(directory, target)
	if err != nil {
		return "", fmt.Errorf("invalid entry name %q: %w", name, err)
	}
	if relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry name %q escapes the output directory", name)
	}
	return target, nil
}
