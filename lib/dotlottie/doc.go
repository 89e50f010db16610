// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package dotlottie builds and reads dotLottie containers: zip archives
// bundling Lottie animations with their images, audio, fonts, themes,
// state machines and global inputs, indexed by manifest.json.
//
// A [Container] is a mutable graph of documents. Callers add animations
// and the documents they use, then call [Container.Build]:
//
//	container := dotlottie.New()
//	container.AddAnimation(animation)
//	container.AddTheme(theme)
//	data, err := container.Build(ctx, dotlottie.BuildOptions{})
//
// Build validates references, fetches url sources, moves every embedded
// payload out of the documents into a deduplicated asset entry, drops
// assets nothing uses, and writes the manifest followed by every entry
// in a fixed order. The same graph always produces the same bytes.
//
// Readers work on archive bytes without extracting the whole archive.
// [Open] parses only the central directory and the manifest; each
// lookup decompresses the entries it needs and nothing else:
//
//	theme, err := dotlottie.GetTheme(data, "dark", dotlottie.GetOptions{})
//	container, err := dotlottie.FromBytes(data)
//
// Every reader call on bytes without a manifest.json entry fails with
// lottie.ErrInvalidContainer. A lookup of an id with no entry fails
// with lottie.ErrAssetNotFound naming the expected path.
package dotlottie
