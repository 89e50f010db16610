// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import "fmt"

// MP3 returns an ID3-tagged payload unique to seed.
func MP3(seed int) []byte {
	return append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), fmt.Sprintf("audio-frames-%d", seed)...)
}

// TTF returns a TrueType-signature payload unique to seed.
func TTF(seed int) []byte {
	return append([]byte("\x00\x01\x00\x00\x00\x0a\x00\x80"), fmt.Sprintf("glyph-tables-%d", seed)...)
}
