// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recipe

import (
	"fmt"

	"github.com/bureau-foundation/lottiepack/lib/archive"
	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

// Validate checks a Recipe for structural issues. Returns a list of
// human-readable issue descriptions. An empty list means the recipe is
// structurally valid; references between documents are checked by the
// build itself.
//
// Structural checks include:
//   - At least one animation is required
//   - Every entry has a valid id, unique among entries of its type
//     (assets: unique per kind)
//   - Animations, themes and assets set exactly one of file or url
//   - State machines and global inputs set file
//   - Asset kind is image, audio or font
//   - Playback direction is 1 or -1 and play mode is normal or bounce
//   - Zip options are in range
func Validate(recipe *Recipe) []string {
	var issues []string
	add := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	if len(recipe.Animations) == 0 {
		add("recipe has no animations (at least one animation is required)")
	}

	checkID := func(field string, index int, id string, seen map[string]int) {
		if err := lottie.ValidateID(id); err != nil {
			add("%s[%d]: %v", field, index, err)
			return
		}
		if first, exists := seen[id]; exists {
			add("%s[%d] %q: duplicate id (first used at %s[%d])", field, index, id, field, first)
			return
		}
		seen[id] = index
	}
	checkZip := func(field string, index int, options archive.Options) {
		if err := options.Validate(); err != nil {
			add("%s[%d]: zip: %v", field, index, err)
		}
	}

	seen := make(map[string]int)
	for index, animation := range recipe.Animations {
		checkID("animations", index, animation.ID, seen)
		if countSet(animation.File, animation.URL) != 1 {
			add("animations[%d] %q: exactly one of file or url is required", index, animation.ID)
		}
		if playback := animation.Playback; playback != nil {
			if playback.Direction != 1 && playback.Direction != -1 {
				add("animations[%d] %q: playback direction must be 1 or -1, got %d", index, animation.ID, playback.Direction)
			}
			if playback.PlayMode != "normal" && playback.PlayMode != "bounce" {
				add("animations[%d] %q: playback play_mode must be normal or bounce, got %q", index, animation.ID, playback.PlayMode)
			}
		}
		checkZip("animations", index, animation.Zip)
	}

	seen = make(map[string]int)
	for index, theme := range recipe.Themes {
		checkID("themes", index, theme.ID, seen)
		if countSet(theme.File, theme.URL) != 1 {
			add("themes[%d] %q: exactly one of file or url is required", index, theme.ID)
		}
		checkZip("themes", index, theme.Zip)
	}

	seenByKind := make(map[lottie.AssetKind]map[string]int)
	for index, asset := range recipe.Assets {
		kind, err := lottie.ParseAssetKind(asset.Kind)
		if err != nil {
			add("assets[%d] %q: %v", index, asset.ID, err)
		} else {
			if seenByKind[kind] == nil {
				seenByKind[kind] = make(map[string]int)
			}
			checkID("assets", index, asset.ID, seenByKind[kind])
		}
		if countSet(asset.File, asset.URL) != 1 {
			add("assets[%d] %q: exactly one of file or url is required", index, asset.ID)
		}
		checkZip("assets", index, asset.Zip)
	}

	seen = make(map[string]int)
	for index, stateMachine := range recipe.StateMachines {
		checkID("state_machines", index, stateMachine.ID, seen)
		if stateMachine.File == "" {
			add("state_machines[%d] %q: file is required", index, stateMachine.ID)
		}
		checkZip("state_machines", index, stateMachine.Zip)
	}

	seen = make(map[string]int)
	for index, globalInputs := range recipe.GlobalInputs {
		checkID("global_inputs", index, globalInputs.ID, seen)
		if globalInputs.File == "" {
			add("global_inputs[%d] %q: file is required", index, globalInputs.ID)
		}
		checkZip("global_inputs", index, globalInputs.Zip)
	}

	if recipe.Metadata != nil && recipe.Metadata.Revision < 0 {
		add("metadata: revision must not be negative, got %d", recipe.Metadata.Revision)
	}

	return issues
}

func countSet(values ...string) int {
	count := 0
	for _, value := range values {
		if value != "" {
			count++
		}
	}
	return count
}
