// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config reads the lottiepack YAML file: build defaults, dedup
// thresholds, per-category compression, the fingerprint cache location
// and url fetch limits.
//
// One file is read, named by --config ([LoadFile]) or by the
// LOTTIEPACK_CONFIG variable ([Load]); nothing is searched for. Keys
// the file leaves out keep their [Default] value and unknown keys are
// errors. ${HOME} and ${VAR:-default} are expanded in cache.path only.
//
//	build:
//	  version: "2"
//	  dedup: true
//	dedup:
//	  color_tolerance: 8
//	  contrast_tolerance: 48
//	compression:
//	  images: {level: -1}
//	  animations: {level: 9}
//	cache:
//	  path: ${HOME}/.cache/lottiepack/fingerprints
//	fetch:
//	  timeout: 30s
package config
