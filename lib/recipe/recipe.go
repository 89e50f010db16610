// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package recipe reads build recipes: JSONC files (JSON extended with
// comments and trailing commas) that describe a dotLottie container in
// terms of files on disk and remote urls.
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Recipe
//  2. Validate: structural checks (sources, ids, kinds, duplicates)
//  3. Container: read every referenced file → dotlottie.Container
//
// A minimal recipe:
//
//	{
//	  // Paths are relative to the recipe file.
//	  "animations": [
//	    {"id": "intro", "file": "intro.json", "themes": ["dark"]},
//	  ],
//	  "themes": [
//	    {"id": "dark", "name": "Dark", "file": "themes/dark.json"},
//	  ],
//	}
package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/lottiepack/lib/archive"
	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

// Recipe describes the documents of one container.
type Recipe struct {
	Animations    []Animation    `json:"animations"`
	Themes        []Theme        `json:"themes,omitempty"`
	Assets        []Asset        `json:"assets,omitempty"`
	StateMachines []StateMachine `json:"state_machines,omitempty"`
	GlobalInputs  []GlobalInputs `json:"global_inputs,omitempty"`
	Initial       Initial        `json:"initial,omitempty"`
	Metadata      *Metadata      `json:"metadata,omitempty"`
}

// Animation is one Lottie document. Exactly one of File or URL is set.
type Animation struct {
	ID            string          `json:"id"`
	Name          string          `json:"name,omitempty"`
	File          string          `json:"file,omitempty"`
	URL           string          `json:"url,omitempty"`
	InitialTheme  string          `json:"initial_theme,omitempty"`
	Background    string          `json:"background,omitempty"`
	Themes        []string        `json:"themes,omitempty"`
	StateMachines []string        `json:"state_machines,omitempty"`
	GlobalInputs  []string        `json:"global_inputs,omitempty"`
	Playback      *Playback       `json:"playback,omitempty"`
	Zip           archive.Options `json:"zip,omitempty"`
}

// Playback holds first generation playback settings. Omitted fields
// take the player defaults.
type Playback struct {
	Speed        float64 `json:"speed"`
	Loop         bool    `json:"loop"`
	Autoplay     bool    `json:"autoplay"`
	Direction    int     `json:"direction"`
	PlayMode     string  `json:"play_mode"`
	Hover        bool    `json:"hover"`
	Intermission float64 `json:"intermission"`
	ThemeColor   string  `json:"theme_color"`
}

// UnmarshalJSON decodes over the default playback settings.
func (p *Playback) UnmarshalJSON(data []byte) error {
	type plain Playback
	defaults := lottie.DefaultPlayback()
	decoded := plain{
		Speed:     defaults.Speed,
		Direction: defaults.Direction,
		PlayMode:  defaults.PlayMode,
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = Playback(decoded)
	return nil
}

// Theme is one theme. Exactly one of File or URL is set. A file
// holding a JSON rule document becomes a rule theme; any other content
// (a .lss file) is kept as a first generation stylesheet.
type Theme struct {
	ID         string          `json:"id"`
	Name       string          `json:"name,omitempty"`
	File       string          `json:"file,omitempty"`
	URL        string          `json:"url,omitempty"`
	Animations []string        `json:"animations,omitempty"`
	Zip        archive.Options `json:"zip,omitempty"`
}

// Asset is an image, audio clip or font added alongside the assets
// embedded in the animations. Kind is "image", "audio" or "font".
type Asset struct {
	Kind       string          `json:"kind"`
	ID         string          `json:"id"`
	File       string          `json:"file,omitempty"`
	URL        string          `json:"url,omitempty"`
	Animations []string        `json:"animations,omitempty"`
	Zip        archive.Options `json:"zip,omitempty"`
}

// StateMachine is a state machine document read from File.
type StateMachine struct {
	ID   string          `json:"id"`
	Name string          `json:"name,omitempty"`
	File string          `json:"file"`
	Zip  archive.Options `json:"zip,omitempty"`
}

// GlobalInputs is a global inputs document read from File.
type GlobalInputs struct {
	ID   string          `json:"id"`
	Name string          `json:"name,omitempty"`
	File string          `json:"file"`
	Zip  archive.Options `json:"zip,omitempty"`
}

// Initial selects what a player loads first.
type Initial struct {
	Animation    string `json:"animation,omitempty"`
	StateMachine string `json:"state_machine,omitempty"`
	GlobalInputs string `json:"global_inputs,omitempty"`
}

// Metadata is the descriptive block of first generation manifests.
type Metadata struct {
	Author      string         `json:"author,omitempty"`
	Description string         `json:"description,omitempty"`
	Keywords    string         `json:"keywords,omitempty"`
	Revision    int            `json:"revision,omitempty"`
	Custom      map[string]any `json:"custom,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Recipe. Unknown fields are errors.
func Parse(data []byte) (*Recipe, error) {
	stripped := jsonc.ToJSON(data)

	decoder := json.NewDecoder(bytes.NewReader(stripped))
	decoder.DisallowUnknownFields()
	var recipe Recipe
	if err := decoder.Decode(&recipe); err != nil {
		return nil, fmt.Errorf("parsing recipe: %w", err)
	}
	return &recipe, nil
}

// ReadFile reads a JSONC recipe from disk.
func ReadFile(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	recipe, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recipe, nil
}

// NameFromPath returns the recipe file name without directory or
// extension, the default output name for a build. For example,
// "recipes/loader.jsonc" returns "loader".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// resolvePath joins a relative recipe path onto dir.
func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
