// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

// distinctColors are spread across the RGB cube.
var distinctColors = []color.RGBA{
	{0xe6, 0x19, 0x4b, 0xff},
	{0x3c, 0xb4, 0x4b, 0xff},
	{0xff, 0xe1, 0x19, 0xff},
	{0x43, 0x63, 0xd8, 0xff},
	{0xf5, 0x82, 0x31, 0xff},
	{0x91, 0x1e, 0xb4, 0xff},
	{0x42, 0xd4, 0xf4, 0xff},
	{0xf0, 0x32, 0xe6, 0xff},
	{0xbf, 0xef, 0x45, 0xff},
	{0xfa, 0xbe, 0xd4, 0xff},
	{0x46, 0x99, 0x90, 0xff},
	{0x9a, 0x63, 0x24, 0xff},
	{0x80, 0x00, 0x00, 0xff},
	{0x00, 0x00, 0x75, 0xff},
	{0x00, 0x00, 0x00, 0xff},
	{0xff, 0xff, 0xff, 0xff},
}

// DistinctColor returns the i'th of a fixed set of well separated
// colours. It panics past the end of the set.
func DistinctColor(i int) color.RGBA {
	if i < 0 || i >= len(distinctColors) {
		panic(fmt.Sprintf("testutil: only %d distinct colours", len(distinctColors)))
	}
	return distinctColors[i]
}

// Solid returns a width x height image filled with c.
func Solid(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, c)
		}
	}
	return img
}

// Pattern returns a grayscale image whose structure depends on seed:
// vertical bands of varying width, so cell structure changes between
// seeds while the overall brightness stays close.
func Pattern(width, height, seed int) image.Image {
	img := image.NewGray(image.Rect(0, 0, width, height))
	band := seed%5 + 2
	for y := range height {
		for x := range width {
			level := uint8(40)
			if ((x*9/width)+seed)%band == 0 {
				level = 220
			}
			img.SetGray(x, y, color.Gray{Y: level})
		}
	}
	return img
}

// PNG encodes img as PNG.
func PNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		t.Fatalf("encoding PNG fixture: %v", err)
	}
	return buffer.Bytes()
}

// SolidPNG encodes a 16x16 PNG filled with c.
func SolidPNG(t testing.TB, c color.Color) []byte {
	t.Helper()
	return PNG(t, Solid(16, 16, c))
}

// JPEG encodes img as JPEG at the given quality.
func JPEG(t testing.TB, img image.Image, quality int) []byte {
	t.Helper()
	var buffer bytes.Buffer
	if err := jpeg.Encode(&buffer, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("encoding JPEG fixture: %v", err)
	}
	return buffer.Bytes()
}

// GIF encodes img as a single-frame GIF.
func GIF(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buffer bytes.Buffer
	if err := gif.Encode(&buffer, img, nil); err != nil {
		t.Fatalf("encoding GIF fixture: %v", err)
	}
	return buffer.Bytes()
}

// SVG returns a minimal SVG document filled with the given CSS colour.
func SVG(fill string) []byte {
	return []byte(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="16" height="16"><rect width="16" height="16" fill="%s"/></svg>`, fill))
}
