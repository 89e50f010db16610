// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottie

import "errors"

// Construction and accessor errors. Returned immediately by
// constructors and setters.
var (
	ErrInvalidIdentifier = errors.New("lottie: invalid identifier")
	ErrMissingSource     = errors.New("lottie: missing source")
)

// Build errors. Any of these aborts the whole build; no archive bytes
// are returned.
var (
	ErrUnresolvedSource = errors.New("lottie: unresolved source")
	ErrFetchFailed      = errors.New("lottie: fetch failed")
	ErrInvalidAssetData = errors.New("lottie: invalid asset data")
	ErrBuildInProgress  = errors.New("lottie: build already in progress")
)

// Read errors. Reported per call; a failed lookup does not affect later
// lookups against the same archive.
var (
	ErrAssetNotFound    = errors.New("lottie: asset not found")
	ErrInvalidContainer = errors.New("lottie: invalid container")
	ErrSchemaViolation  = errors.New("lottie: schema violation")
)
