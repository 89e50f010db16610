// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/json"
	"fmt"
)

// VersionV2 is the version string of second generation manifests.
const VersionV2 = "2"

// V2 is a second generation manifest.
type V2 struct {
	Version       string        `json:"version"`
	Generator     string        `json:"generator"`
	Initial       *Initial      `json:"initial,omitempty"`
	Animations    []V2Animation `json:"animations"`
	Themes        []Entry       `json:"themes,omitempty"`
	StateMachines []Entry       `json:"stateMachines,omitempty"`
	GlobalInputs  []Entry       `json:"globalInputs,omitempty"`
}

// Initial selects what a player loads first.
type Initial struct {
	Animation    string `json:"animation,omitempty"`
	StateMachine string `json:"stateMachine,omitempty"`
	GlobalInputs string `json:"globalInputs,omitempty"`
}

// V2Animation describes one animation and the themes it may use.
type V2Animation struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	InitialTheme string   `json:"initialTheme,omitempty"`
	Background   string   `json:"background,omitempty"`
	Themes       []string `json:"themes,omitempty"`
}

// Entry is an id with an optional display name.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// DecodeV2 strictly decodes and validates a second generation manifest.
// Unknown fields are rejected.
func DecodeV2(data []byte) (*V2, error) {
	var manifest V2
	if err := decodeStrict(data, &manifest); err != nil {
		return nil, err
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Validate checks the manifest against the second generation rules.
func (m *V2) Validate() error {
	var c collector
	if m.Version != VersionV2 {
		c.add(CodeVersion, "version", "want %q, got %q", VersionV2, m.Version)
	}
	if m.Generator == "" {
		c.add(CodeRequired, "generator", "generator is required")
	}
	if len(m.Animations) == 0 {
		c.add(CodeRequired, "animations", "at least one animation is required")
	}

	animations := c.ids("animations", animationIDs(m.Animations))
	themes := c.ids("themes", entryIDs(m.Themes))
	stateMachines := c.ids("stateMachines", entryIDs(m.StateMachines))
	globalInputs := c.ids("globalInputs", entryIDs(m.GlobalInputs))

	for i, animation := range m.Animations {
		path := fmt.Sprintf("animations[%d]", i)
		c.reference(path+".initialTheme", animation.InitialTheme, themes, "theme")
		seen := make(map[string]bool, len(animation.Themes))
		for j, themeID := range animation.Themes {
			themePath := fmt.Sprintf("%s.themes[%d]", path, j)
			if seen[themeID] {
				c.add(CodeDuplicateID, themePath, "theme %q listed twice", themeID)
			}
			seen[themeID] = true
			c.reference(themePath, themeID, themes, "theme")
		}
		if animation.InitialTheme != "" && !seen[animation.InitialTheme] {
			c.add(CodeDanglingReference, path+".initialTheme",
				"initial theme %q is not among the animation's themes", animation.InitialTheme)
		}
	}

	if m.Initial != nil {
		c.reference("initial.animation", m.Initial.Animation, animations, "animation")
		c.reference("initial.stateMachine", m.Initial.StateMachine, stateMachines, "state machine")
		c.reference("initial.globalInputs", m.Initial.GlobalInputs, globalInputs, "global inputs")
	}
	return c.err()
}

// Marshal validates and encodes the manifest.
func (m *V2) Marshal() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func animationIDs(animations []V2Animation) []string {
	ids := make([]string, len(animations))
	for i, animation := range animations {
		ids[i] = animation.ID
	}
	return ids
}

func entryIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}
	return ids
}
