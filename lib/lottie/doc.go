// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package lottie is the document model for lottiepack containers.
//
// A container bundles animations with the documents that refer to them:
//
//   - [Animation]: a Lottie JSON document, either inline or fetched from
//     a URL at build time.
//   - [Asset]: an image, audio clip, or font referenced by one or more
//     animations. Assets are usually extracted from animation JSON by the
//     rewriter rather than constructed directly.
//   - [Theme]: override rules (colour, scalar, position, vector, image,
//     gradient) applied to some or all animations.
//   - [StateMachine]: an interactivity document stored verbatim.
//   - [GlobalInputs]: named typed values that drive theme rules.
//
// Documents reference each other by caller-assigned string ids.
// Constructors and setters validate eagerly: an invalid id fails with
// [ErrInvalidIdentifier] and a missing payload with [ErrMissingSource],
// so these errors never surface from a build.
//
// This package also holds the error taxonomy shared by the builder and
// reader, payload sniffing ([Sniff]) and data URL helpers.
package lottie
