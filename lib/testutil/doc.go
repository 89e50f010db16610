// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared fixtures for lottiepack tests.
//
// [PNG], [JPEG], [GIF] and [SVG] produce small image payloads.
// [DistinctColor] returns colours far enough apart that the perceptual
// fingerprinter never treats two of them as the same image, and
// [Pattern] draws images that differ in structure rather than colour.
// [MP3] and [TTF] produce payloads that carry the right signature but
// are otherwise opaque; only the exact fingerprinter sees them.
//
// [Animation] assembles a Lottie document with the given payloads
// embedded the way exporters embed them: images and audio as data URLs
// in the assets array with "e":1, fonts as data URLs in fonts.list.
//
// Helpers that can fail take a testing.TB and stop the test.
package testutil
