// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

// MaxEntrySize caps the decompressed size of a single entry.
const MaxEntrySize = 256 << 20

var (
	// ErrCorrupt is returned when the bytes are not a readable zip.
	ErrCorrupt = errors.New("archive: not a valid zip archive")

	// ErrNotFound is returned when no entry has the requested name.
	ErrNotFound = errors.New("archive: entry not found")
)

// Reader gives by-name access to the entries of an in-memory zip
// archive. Only the central directory is parsed up front.
type Reader struct {
	files map[string]*zip.File
	names []string

	// OnAccess, when set, is called with the entry name each time an
	// entry body is decompressed.
	OnAccess func(name string)
}

// NewReader parses the central directory of data. The slice must not be
// modified while the Reader is in use.
func NewReader(data []byte) (*Reader, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	reader := &Reader{files: make(map[string]*zip.File, len(zipReader.File))}
	for _, file := range zipReader.File {
		if strings.HasSuffix(file.Name, "/") {
			continue
		}
		if _, duplicate := reader.files[file.Name]; duplicate {
			return nil, fmt.Errorf("%w: duplicate entry %q", ErrCorrupt, file.Name)
		}
		reader.files[file.Name] = file
		reader.names = append(reader.names, file.Name)
	}
	return reader, nil
}

// Names returns every entry name in archive order.
func (r *Reader) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Has reports whether an entry named name exists.
func (r *Reader) Has(name string) bool {
	_, ok := r.files[name]
	return ok
}

// Size returns the uncompressed size recorded for name.
func (r *Reader) Size(name string) (int64, bool) {
	file, ok := r.files[name]
	if !ok {
		return 0, false
	}
	return int64(file.UncompressedSize64), true
}

// Match returns the names of entries in directory dir whose file name,
// without extension, equals stem. Results are sorted.
func (r *Reader) Match(dir, stem string) []string {
	var matches []string
	prefix := dir + "/"
	for _, name := range r.names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		base := strings.TrimPrefix(name, prefix)
		if strings.Contains(base, "/") {
			continue
		}
		if strings.TrimSuffix(base, path.Ext(base)) == stem {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches
}

// List returns the names of all entries directly under dir, in archive
// order.
func (r *Reader) List(dir string) []string {
	var names []string
	prefix := dir + "/"
	for _, name := range r.names {
		if strings.HasPrefix(name, prefix) && !strings.Contains(strings.TrimPrefix(name, prefix), "/") {
			names = append(names, name)
		}
	}
	return names
}

// ReadFile decompresses and returns the body of the entry called name.
func (r *Reader) ReadFile(name string) ([]byte, error) {
	file, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if file.UncompressedSize64 > MaxEntrySize {
		return nil, fmt.Errorf("%w: entry %q is %d bytes, limit %d",
			ErrCorrupt, name, file.UncompressedSize64, MaxEntrySize)
	}
	if r.OnAccess != nil {
		r.OnAccess(name)
	}

	body, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %v", ErrCorrupt, name, err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, MaxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q: %v", ErrCorrupt, name, err)
	}
	if len(data) > MaxEntrySize {
		return nil, fmt.Errorf("%w: entry %q exceeds %d bytes", ErrCorrupt, name, MaxEntrySize)
	}
	return data, nil
}
