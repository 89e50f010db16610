// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the one CBOR configuration lottiepack uses for
// state it keeps between runs, currently the dedup fingerprint cache.
// Container documents stay JSON because players read them.
//
// Encoding is Core Deterministic (RFC 8949 §4.2), so equal values give
// equal bytes and a cache that did not change is not rewritten with a
// different layout. Struct fields use `cbor` tags and fall back to
// `json` tags.
package codec
