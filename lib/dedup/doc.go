// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package dedup decides which asset payloads are the same content and
// assigns one canonical [lottie.Asset] to each group.
//
// Fingerprinting is a pluggable strategy ([Fingerprinter]) producing a
// comparable [Key]. Two strategies are provided:
//
//   - [Exact]: BLAKE3 keyed hash with a per-kind domain key. Keys are
//     similar only when the digests are equal. Audio and fonts always
//     use exact keys; a false positive there would swap one sound or
//     typeface for another.
//   - [Perceptual]: for raster images, the dimensions plus a grid of up
//     to 32x32 cells, each holding its box-averaged colour and its
//     darkest and brightest luma. Identical bytes always match.
//     Otherwise two images match only at equal dimensions when every
//     cell mean is within ColorTolerance per channel and every cell's
//     luma extremes within ContrastTolerance. A re-encoded copy
//     collapses onto the original; a small mark on a flat background
//     moves one cell's extremes far past the tolerance and stays
//     distinct. SVG falls back to the exact key.
//
// The [Engine] compares each admitted payload against the canonical
// assets already admitted for its kind, in admission order, and the
// first similar one wins. A miss becomes a new canonical asset named
// "<kind>_<n>" where n counts distinct content only. Parent animations
// of every duplicate are merged onto the canonical asset.
//
// A [Cache] persists perceptual keys by exact digest so repeated builds
// over the same images skip decoding. It is stored as deterministic
// CBOR (lib/codec) in an LZ4 block.
package dedup
