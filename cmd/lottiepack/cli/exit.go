// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError asks main for a non-zero status without printing anything
// more. "lottiepack inspect --check" returns it after writing its
// findings.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode is the interface main looks for.
func (e *ExitError) ExitCode() int {
	return e.Code
}
