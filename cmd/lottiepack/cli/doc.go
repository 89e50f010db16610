// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind lottiepack.
//
// A [Command] tree is built in cmd/lottiepack/commands and run with
// [Command.Execute]. Each leaf declares a params struct; its tagged
// fields become pflag flags ([BindFlags]) and embedding [JSONOutput] or
// [Verbosity] adds --json or -v. Run gets an interrupt-aware context
// and a logger from [NewCommandLogger].
//
// Mistyped subcommands and flags within edit distance 3 of a known name
// get a "did you mean" hint.
package cli
