// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest defines the two manifest.json generations a container
// can carry.
//
// [V1] is the flat, animation-centric layout: playback settings live on
// each animation entry and themes list the animations they apply to.
// [V2] normalizes cross-references: animations name their themes, and
// state machines and global inputs are listed separately with an
// optional initial selection.
//
// The generations are deliberately separate types with their own
// strict decoders and validators. [Parse] tries V2 first and falls back
// to V1; it fails only when neither accepts the document. Validation
// problems are reported as a [ValidationList], which wraps
// lottie.ErrSchemaViolation.
package manifest
