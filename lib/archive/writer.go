// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// modifiedTime is stamped on every entry. The zip epoch keeps output
// independent of the wall clock.
var modifiedTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Writer writes a deterministic zip archive. Entries are written in the
// order Add is called; adding the same name twice is an error.
//
//	writer := archive.NewWriter(&buffer)
//	writer.Add("manifest.json", manifestBytes, archive.ForContent("application/json"))
//	writer.Add("images/image_0.png", png, archive.Options{Level: archive.LevelStore})
//	err := writer.Close()
type Writer struct {
	zip   *zip.Writer
	names map[string]struct{}

	// level is read by the registered deflate compressor, which zip
	// invokes from CreateHeader. It is set immediately before each
	// deflated entry is created.
	level int
}

// NewWriter returns a Writer that writes the archive to w. The caller
// must call Close to flush the central directory.
func NewWriter(w io.Writer) *Writer {
	writer := &Writer{
		zip:   zip.NewWriter(w),
		names: make(map[string]struct{}),
		level: LevelDefault,
	}
	writer.zip.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, writer.level)
	})
	return writer
}

// Add writes one entry with the given compression options.
func (w *Writer) Add(name string, data []byte, options Options) error {
	if name == "" {
		return fmt.Errorf("archive: empty entry name")
	}
	if _, exists := w.names[name]; exists {
		return fmt.Errorf("archive: duplicate entry %q", name)
	}
	if err := options.Validate(); err != nil {
		return fmt.Errorf("archive: entry %q: %w", name, err)
	}

	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modifiedTime,
	}
	if options.stored() {
		header.Method = zip.Store
	} else {
		w.level = options.effectiveLevel()
	}

	entry, err := w.zip.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("archive: creating entry %q: %w", name, err)
	}
	if _, err := entry.Write(data); err != nil {
		return fmt.Errorf("archive: writing entry %q: %w", name, err)
	}
	w.names[name] = struct{}{}
	return nil
}

// Len returns the number of entries written so far.
func (w *Writer) Len() int {
	return len(w.names)
}

// Close finishes the archive by writing the central directory. It does
// not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.zip.Close(); err != nil {
		return fmt.Errorf("archive: closing: %w", err)
	}
	return nil
}
