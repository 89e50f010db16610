// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package assetref moves binary payloads between the inline and the
// externalized form of animation and theme documents.
//
// In the inline form a payload is a base64 data URL at its original
// location:
//
//   - image and audio assets: assets[i].p, with "u":"" and "e":1
//   - fonts: fonts.list[i].fPath
//   - theme rules: the "url" field of rules[i].value and of
//     rules[i].keyframes[j].value
//
// In the externalized form the same location holds a reference to an
// archive entry: "u":"/images/" (or "/audio/"), "p":"<file>", "e":0 for
// assets, "/fonts/<file>" for fonts, and "images/<file>" for theme
// values.
//
// [Externalize] hands every payload to a [Registry] (normally the dedup
// engine), which decides the canonical asset and therefore the file
// name. [Inline] is the inverse, fetching bytes through a [Resolver].
// Both are copy-on-write: the input is never modified. JSON edits go
// through tidwall/sjson at exact paths, so every byte outside the
// rewritten values is preserved. Shapes this package does not recognize
// (remote URLs, precompositions, unknown media types) are left alone.
package assetref
