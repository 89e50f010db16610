// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dotlottie

import (
	"github.com/bureau-foundation/lottiepack/lib/lottie"
	"github.com/bureau-foundation/lottiepack/lib/manifest"
)

// ManifestPath is the name of the manifest entry. It is always the
// first entry written.
const ManifestPath = "manifest.json"

// Archive directories.
const (
	AnimationsDir    = "animations"
	ThemesDir        = "themes"
	StateMachinesDir = "state_machines"
	StatesDir        = "states"
	GlobalInputsDir  = "global_inputs"
)

const (
	jsonExtension       = ".json"
	stylesheetExtension = ".lss"
)

// AnimationPath returns the entry name of an animation.
func AnimationPath(id string) string {
	return AnimationsDir + "/" + id + jsonExtension
}

// ThemePath returns the entry name of a theme. First generation
// containers store stylesheet themes as .lss text.
func ThemePath(generation manifest.Generation, theme *lottie.Theme) string {
	if generation == manifest.GenerationV1 && theme.IsStylesheet() {
		return ThemesDir + "/" + theme.ID() + stylesheetExtension
	}
	return ThemesDir + "/" + theme.ID() + jsonExtension
}

// StateMachineDir returns the directory holding state machines for a
// manifest generation.
func StateMachineDir(generation manifest.Generation) string {
	if generation == manifest.GenerationV1 {
		return StatesDir
	}
	return StateMachinesDir
}

// StateMachinePath returns the entry name of a state machine.
func StateMachinePath(generation manifest.Generation, id string) string {
	return StateMachineDir(generation) + "/" + id + jsonExtension
}

// GlobalInputsPath returns the entry name of a global inputs document.
func GlobalInputsPath(id string) string {
	return GlobalInputsDir + "/" + id + jsonExtension
}
