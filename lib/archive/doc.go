// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive is the zip layer underneath lottiepack containers.
//
// Containers are ordinary zip files with deflate or stored entries, so
// any zip tool can open them. This package adds the three properties the
// container codec needs on top of klauspost/compress/zip:
//
//   - Deterministic output. Every entry carries the same fixed
//     modification time and entries are written in caller order, so the
//     same inputs produce the same bytes.
//
//   - Per-entry compression. [Options] selects the deflate level for
//     each entry independently. [ForContent] picks a sensible default
//     from the entry's media type: payloads that are already compressed
//     (PNG, JPEG, MP3, WOFF2) are stored, JSON is deflated hard.
//
//   - Lazy reads. [Reader] parses only the central directory. Entry
//     bodies are decompressed on [Reader.ReadFile], one at a time, and
//     [Reader.OnAccess] observes every decompression so callers can
//     verify that a by-name lookup touched nothing else.
package archive
