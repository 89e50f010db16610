// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"strings"

	"github.com/klauspost/compress/flate"
)

// Compression levels accepted by [Options.Level].
const (
	// LevelStore writes the entry without compression.
	LevelStore = -1

	// LevelDefault is used when Level is zero.
	LevelDefault = 6

	// LevelBest is the slowest, smallest deflate setting.
	LevelBest = flate.BestCompression

	// MaxMemory is the largest accepted Memory value.
	MaxMemory = 12
)

// Options controls how a single entry is compressed. The zero value
// deflates at [LevelDefault].
//
// Level maps onto the zip entry as follows:
//
//	-1 (LevelStore)  stored, no compression
//	 0               deflate at level 6 (LevelDefault)
//	 1..9            deflate at that level
//
// Zero is "unset", not "store" as in zlib-style APIs, so that an options
// struct left empty in a recipe or config file keeps the default. Use
// LevelStore to store an entry.
type Options struct {
	// Level is the compression level; see the table above.
	Level int `json:"level,omitempty" yaml:"level"`

	// Memory is the zlib memLevel (1-9, up to 12 accepted) other
	// container writers take. It is range checked and kept on the
	// document so it survives a round trip, but it never changes the
	// output: the deflate encoder sizes its own state, and entries
	// written with different Memory values are byte-identical.
	Memory int `json:"memory,omitempty" yaml:"memory"`
}

// IsZero reports whether no field was set.
func (o Options) IsZero() bool {
	return o == Options{}
}

// Validate checks that Level and Memory are in range.
func (o Options) Validate() error {
	if o.Level < LevelStore || o.Level > LevelBest {
		return fmt.Errorf("compression level %d out of range [%d, %d]", o.Level, LevelStore, LevelBest)
	}
	if o.Memory < 0 || o.Memory > MaxMemory {
		return fmt.Errorf("compression memory %d out of range [0, %d]", o.Memory, MaxMemory)
	}
	return nil
}

// effectiveLevel maps Level to a flate level; store is reported
// separately by stored().
func (o Options) effectiveLevel() int {
	if o.Level == 0 {
		return LevelDefault
	}
	return o.Level
}

func (o Options) stored() bool {
	return o.Level == LevelStore
}

// ForContent returns default options for an entry with the given media
// type. Formats that carry their own entropy coding gain nothing from
// deflate and are stored; text formats are compressed at LevelBest.
// Unknown types get the zero value (LevelDefault).
func ForContent(mediaType string) Options {
	switch mediaType {
	case "image/png", "image/jpeg", "image/gif", "image/webp",
		"audio/mpeg", "audio/ogg", "audio/flac",
		"font/woff", "font/woff2":
		return Options{Level: LevelStore}

	case "application/json", "image/svg+xml", "text/css", "text/plain":
		return Options{Level: LevelBest}
	}

	if strings.HasPrefix(mediaType, "text/") {
		return Options{Level: LevelBest}
	}
	return Options{}
}
