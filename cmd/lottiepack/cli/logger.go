// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger returns the stderr logger for a command: text when
// a person is watching, JSON lines when stderr is a pipe or a CI log.
// Execute adds the command path; commands add their own attributes:
//
//	logger = logger.With("recipe", recipePath, "output", outputPath)
func NewCommandLogger(level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if IsTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// IsTerminal reports whether file is attached to a terminal. Commands
// use it to decide between styled and plain output.
func IsTerminal(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}
