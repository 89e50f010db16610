// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/bureau-foundation/lottiepack/lib/codec"
)

// cacheMagic starts every cache file. The fifth byte is the format
// version.
var cacheMagic = []byte("LPFC\x02")

const (
	// cacheRaw and cacheLZ4 tag the body encoding after the header.
	cacheRaw byte = 0
	cacheLZ4 byte = 1

	// maxCacheBody bounds the decompressed size accepted from disk.
	maxCacheBody = 64 << 20
)

// CacheEntry is the perceptual fingerprint of one image (see
// [PerceptualKey]).
type CacheEntry struct {
	Width  int
	Height int
	Cells  []byte
}

func (e CacheEntry) equal(other CacheEntry) bool {
	return e.Width == other.Width && e.Height == other.Height && bytes.Equal(e.Cells, other.Cells)
}

// cacheRecord is the on-disk form of one entry.
type cacheRecord struct {
	Digest []byte `cbor:"digest"`
	Width  int    `cbor:"width"`
	Height int    `cbor:"height"`
	Cells  []byte `cbor:"cells"`
}

type cacheFile struct {
	Records []cacheRecord `cbor:"records"`
}

// Cache maps exact image digests to perceptual fingerprints. It is safe
// for concurrent use.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[Digest]CacheEntry
	dirty   bool
}

// NewCache returns an empty in-memory cache that saves to path. An
// empty path makes Save a no-op.
func NewCache(path string) *Cache {
	return &Cache{path: path, entries: make(map[Digest]CacheEntry)}
}

// LoadCache reads the cache at path. A missing file yields an empty
// cache; a corrupt one is an error so the caller can decide whether to
// discard it.
func LoadCache(path string) (*Cache, error) {
	cache := NewCache(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading fingerprint cache: %w", err)
	}
	if err := cache.decode(data); err != nil {
		return nil, fmt.Errorf("fingerprint cache %s: %w", path, err)
	}
	return cache, nil
}

// Lookup returns the entry for digest.
func (c *Cache) Lookup(digest Digest) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[digest]
	return entry, ok
}

// Store records the entry for digest.
func (c *Cache) Store(digest Digest, entry CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[digest]; ok && existing.equal(entry) {
		return
	}
	c.entries[digest] = entry
	c.dirty = true
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Save writes the cache back to its path if anything changed. The file
// is replaced atomically.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.path == "" || !c.dirty {
		return nil
	}
	data, err := c.encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating fingerprint cache directory: %w", err)
	}
	temporary, err := os.CreateTemp(filepath.Dir(c.path), ".fingerprints-*")
	if err != nil {
		return fmt.Errorf("writing fingerprint cache: %w", err)
	}
	defer os.Remove(temporary.Name())
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("writing fingerprint cache: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("writing fingerprint cache: %w", err)
	}
	if err := os.Rename(temporary.Name(), c.path); err != nil {
		return fmt.Errorf("replacing fingerprint cache: %w", err)
	}
	c.dirty = false
	return nil
}

// encode serializes the entries sorted by digest, so equal caches
// produce equal files. Callers hold c.mu.
func (c *Cache) encode() ([]byte, error) {
	digests := make([]Digest, 0, len(c.entries))
	for digest := range c.entries {
		digests = append(digests, digest)
	}
	sort.Slice(digests, func(i, j int) bool {
		return bytes.Compare(digests[i][:], digests[j][:]) < 0
	})

	file := cacheFile{Records: make([]cacheRecord, len(digests))}
	for i, digest := range digests {
		entry := c.entries[digest]
		file.Records[i] = cacheRecord{
			Digest: append([]byte(nil), digest[:]...),
			Width:  entry.Width,
			Height: entry.Height,
			Cells:  entry.Cells,
		}
	}
	body, err := codec.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("encoding fingerprint cache: %w", err)
	}

	header := append([]byte(nil), cacheMagic...)
	header = binary.AppendUvarint(header, uint64(len(body)))

	compressed := make([]byte, lz4.CompressBlockBound(len(body)))
	written, err := lz4.CompressBlock(body, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("compressing fingerprint cache: %w", err)
	}
	// CompressBlock reports 0 for incompressible input.
	if written == 0 || written >= len(body) {
		return append(append(header, cacheRaw), body...), nil
	}
	return append(append(header, cacheLZ4), compressed[:written]...), nil
}

func (c *Cache) decode(data []byte) error {
	if !bytes.HasPrefix(data, cacheMagic) {
		return fmt.Errorf("not a fingerprint cache (bad magic)")
	}
	rest := data[len(cacheMagic):]
	size, n := binary.Uvarint(rest)
	if n <= 0 || size > maxCacheBody {
		return fmt.Errorf("invalid body size")
	}
	rest = rest[n:]
	if len(rest) == 0 {
		return fmt.Errorf("truncated cache")
	}

	var body []byte
	switch rest[0] {
	case cacheRaw:
		body = rest[1:]
	case cacheLZ4:
		body = make([]byte, size)
		read, err := lz4.UncompressBlock(rest[1:], body)
		if err != nil {
			return fmt.Errorf("lz4 decompress: %w", err)
		}
		body = body[:read]
	default:
		return fmt.Errorf("unknown body encoding %d", rest[0])
	}
	if uint64(len(body)) != size {
		return fmt.Errorf("body is %d bytes, header says %d", len(body), size)
	}

	var file cacheFile
	if err := codec.Unmarshal(body, &file); err != nil {
		return fmt.Errorf("decoding records: %w", err)
	}
	for i, record := range file.Records {
		if len(record.Digest) != len(Digest{}) || record.Width <= 0 || record.Height <= 0 {
			return fmt.Errorf("record %d is malformed", i)
		}
		if len(record.Cells) != gridSize(record.Width)*gridSize(record.Height)*cellBytes {
			return fmt.Errorf("record %d has %d cell bytes for a %dx%d image", i, len(record.Cells), record.Width, record.Height)
		}
		var digest Digest
		copy(digest[:], record.Digest)
		c.entries[digest] = CacheEntry{Width: record.Width, Height: record.Height, Cells: record.Cells}
	}
	return nil
}
