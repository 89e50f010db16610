// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"encoding/hex"
	"fmt"

	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

// Key is a comparable content fingerprint.
type Key interface {
	// Digest is the exact content digest. Equal digests mean equal
	// bytes within one asset kind.
	Digest() Digest

	// Similar reports whether other identifies the same content.
	Similar(other Key) bool
}

// Fingerprinter computes keys for asset payloads.
type Fingerprinter interface {
	Fingerprint(kind lottie.AssetKind, data []byte) (Key, error)
}

// Digest is a 32-byte BLAKE3 keyed digest.
type Digest [32]byte

// String returns the digest in hex.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short returns the first 12 hex digits, for logs.
func (d Digest) Short() string { return hex.EncodeToString(d[:6]) }

// ExactKey matches only identical content.
type ExactKey Digest

// Digest returns the key itself.
func (k ExactKey) Digest() Digest { return Digest(k) }

// Similar reports whether other has the same digest.
func (k ExactKey) Similar(other Key) bool {
	return other != nil && other.Digest() == Digest(k)
}

// String returns the digest in hex.
func (k ExactKey) String() string { return Digest(k).String() }

// PerceptualKey identifies a raster image by its dimensions and a grid
// reduction of its pixels. The tolerances are those of the
// [Perceptual] fingerprinter that produced the key.
type PerceptualKey struct {
	Exact  Digest
	Width  int
	Height int

	// Cells holds six bytes per grid cell in row-major order: the mean
	// premultiplied RGBA, then the darkest and brightest luma. The grid
	// is at most 32x32 cells of at least 8x8 pixels.
	Cells []byte

	colorTolerance    int
	contrastTolerance int
}

// Digest returns the exact digest of the encoded bytes.
func (k PerceptualKey) Digest() Digest { return k.Exact }

// Similar reports whether other is the same image: identical bytes, or
// another perceptual key of the same dimensions whose every cell is
// within both tolerances.
func (k PerceptualKey) Similar(other Key) bool {
	if other == nil {
		return false
	}
	if other.Digest() == k.Exact {
		return true
	}
	perceptual, ok := other.(PerceptualKey)
	if !ok || perceptual.Width != k.Width || perceptual.Height != k.Height {
		return false
	}
	if len(perceptual.Cells) != len(k.Cells) {
		return false
	}
	for offset := 0; offset+cellBytes <= len(k.Cells); offset += cellBytes {
		a, b := k.Cells[offset:offset+cellBytes], perceptual.Cells[offset:offset+cellBytes]
		if maxDelta(a[:4], b[:4]) > k.colorTolerance || maxDelta(a[4:], b[4:]) > k.contrastTolerance {
			return false
		}
	}
	return true
}

// String formats the key for logs.
func (k PerceptualKey) String() string {
	return fmt.Sprintf("grid:%dx%d/%d cells", k.Width, k.Height, len(k.Cells)/cellBytes)
}

// maxDelta is the largest absolute difference of corresponding bytes.
func maxDelta(a, b []byte) int {
	delta := 0
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		delta = max(delta, d)
	}
	return delta
}
