// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

const (
	// DefaultColorTolerance is the largest per-channel difference of a
	// grid cell's mean colour (out of 255) still treated as the same
	// image. Lossy re-encodings move cell means by a few levels.
	DefaultColorTolerance = 8

	// DefaultContrastTolerance is the largest change of a cell's
	// darkest or brightest luma still treated as the same image. Codec
	// ringing stays well below it; a dark mark on a light cell does not.
	DefaultContrastTolerance = 48

	// MaxImagePixels bounds decoded image size.
	MaxImagePixels = 64 << 20

	// maxGrid caps the cells per axis; minCell is the smallest cell
	// edge in pixels.
	maxGrid = 32
	minCell = 8

	// cellBytes is the size of one cell in [PerceptualKey.Cells]: mean
	// R, G, B, A, then darkest and brightest luma.
	cellBytes = 6
)

// rasterTypes are the image types the perceptual fingerprint decodes.
// Any other image (SVG) is fingerprinted exactly.
var rasterTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/webp": true,
}

// boxFilter weighs every source pixel under a destination cell
// equally, so shrinking with it averages whole cells.
var boxFilter = &draw.Kernel{Support: 0.5, At: func(float64) float64 { return 1 }}

// Perceptual fingerprints raster images by appearance and everything
// else exactly. The zero value uses zero tolerances, which still
// matches identical bytes and pixel-identical re-encodings; use
// [NewPerceptual] for the defaults.
type Perceptual struct {
	ColorTolerance    int
	ContrastTolerance int

	// Cache, if set, is consulted before decoding and updated after.
	Cache *Cache
}

// NewPerceptual returns a perceptual fingerprinter with the default
// tolerances.
func NewPerceptual() *Perceptual {
	return &Perceptual{ColorTolerance: DefaultColorTolerance, ContrastTolerance: DefaultContrastTolerance}
}

// Fingerprint returns a [PerceptualKey] for raster images and an
// [ExactKey] for everything else. A raster payload that does not decode
// fails with lottie.ErrInvalidAssetData.
func (p *Perceptual) Fingerprint(kind lottie.AssetKind, data []byte) (Key, error) {
	exact, err := Exact{}.Fingerprint(kind, data)
	if err != nil {
		return nil, err
	}
	if kind != lottie.KindImage {
		return exact, nil
	}
	media, ok := lottie.Sniff(data)
	if !ok || !rasterTypes[media.Type] {
		return exact, nil
	}

	digest := exact.Digest()
	if p.Cache != nil {
		if entry, found := p.Cache.Lookup(digest); found {
			return p.key(digest, entry), nil
		}
	}

	entry, err := imageGrid(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s image %s: %v", lottie.ErrInvalidAssetData, media.Extension, digest.Short(), err)
	}
	if p.Cache != nil {
		p.Cache.Store(digest, entry)
	}
	return p.key(digest, entry), nil
}

func (p *Perceptual) key(digest Digest, entry CacheEntry) PerceptualKey {
	return PerceptualKey{
		Exact:             digest,
		Width:             entry.Width,
		Height:            entry.Height,
		Cells:             entry.Cells,
		colorTolerance:    p.ColorTolerance,
		contrastTolerance: p.ContrastTolerance,
	}
}

// imageGrid decodes data and reduces it to its cell grid.
func imageGrid(data []byte) (CacheEntry, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return CacheEntry{}, err
	}
	if config.Width <= 0 || config.Height <= 0 {
		return CacheEntry{}, fmt.Errorf("empty image (%dx%d)", config.Width, config.Height)
	}
	if config.Width*config.Height > MaxImagePixels {
		return CacheEntry{}, fmt.Errorf("image too large (%dx%d)", config.Width, config.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return CacheEntry{}, err
	}
	bounds := img.Bounds()
	return CacheEntry{Width: bounds.Dx(), Height: bounds.Dy(), Cells: reduce(img)}, nil
}

// gridSize is the number of cells along an axis of the given length.
func gridSize(length int) int {
	return min(maxGrid, max(1, length/minCell))
}

// reduce averages img over its cell grid and records the luma range of
// every cell, in row-major order.
func reduce(img image.Image) []byte {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	columns, rows := gridSize(width), gridSize(height)

	means := image.NewRGBA(image.Rect(0, 0, columns, rows))
	boxFilter.Scale(means, means.Bounds(), img, bounds, draw.Src, nil)

	luma := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(luma, luma.Bounds(), img, bounds.Min, draw.Src)

	cells := make([]byte, 0, columns*rows*cellBytes)
	for row := range rows {
		y0, y1 := span(height, row, rows)
		for column := range columns {
			x0, x1 := span(width, column, columns)
			low, high := lumaRange(luma, x0, x1, y0, y1)
			offset := means.PixOffset(column, row)
			cells = append(cells, means.Pix[offset:offset+4]...)
			cells = append(cells, low, high)
		}
	}
	return cells
}

// span returns the pixel range of cell index out of count along an axis
// of the given length. Cells never come out empty.
func span(length, index, count int) (int, int) {
	start := index * length / count
	end := (index + 1) * length / count
	if end <= start {
		end = start + 1
	}
	return start, end
}

// lumaRange returns the darkest and brightest luma in the rectangle.
func lumaRange(luma *image.Gray, x0, x1, y0, y1 int) (uint8, uint8) {
	low, high := uint8(255), uint8(0)
	for y := y0; y < y1; y++ {
		for _, value := range luma.Pix[luma.PixOffset(x0, y):luma.PixOffset(x1, y)] {
			low = min(low, value)
			high = max(high, value)
		}
	}
	return low, high
}
