// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports which lottiepack build is running.
//
// Release builds stamp [Version], [GitCommit], [GitDirty] and
// [BuildTime] with -ldflags -X. A binary produced by "go install" has
// none of those, so [Resolve] falls back to the module version and VCS
// settings the toolchain embeds.
//
// [Generator] is the tag written into manifest.json. It carries the
// version only, never the commit or build time, so rebuilding the same
// recipe with the same release yields byte-identical containers.
package version
