// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// lottiepack builds dotLottie containers from recipes and reads them
// back.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/lottiepack/cmd/lottiepack/commands"
)

func main() {
	if err := run(); err != nil {
		// inspect --check prints its findings itself and only asks for
		// a non-zero status.
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
