// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottie

import (
	"fmt"

	"github.com/bureau-foundation/lottiepack/lib/archive"
)

// Playback holds the per-animation playback settings that version 1
// manifests carry inline. Version 2 containers do not store them.
type Playback struct {
	Speed float64
	Loop  bool

	// LoopCount limits looping to that many repetitions. Zero with
	// Loop set loops forever.
	LoopCount int

	Autoplay     bool
	Direction    int
	PlayMode     string
	Hover        bool
	Intermission float64
	ThemeColor   string
}

// DefaultPlayback returns the settings players assume when a version 1
// manifest omits them.
func DefaultPlayback() Playback {
	return Playback{Speed: 1, Loop: false, Autoplay: false, Direction: 1, PlayMode: "normal"}
}

// Animation is one Lottie document in the container together with its
// associations to themes, state machines and global inputs.
type Animation struct {
	id   string
	name string
	data []byte
	url  string

	initialTheme  string
	background    string
	themes        []string
	stateMachines []string
	globalInputs  []string
	playback      *Playback
	zip           archive.Options
}

// NewAnimation creates an animation from inline JSON (Source.Data or a
// JSON data URL) or a remote url.
func NewAnimation(id string, source Source) (*Animation, error) {
	if err := ValidateID(id); err != nil {
		return nil, fmt.Errorf("animation: %w", err)
	}
	animation := &Animation{id: id}
	if err := animation.setSource(source); err != nil {
		return nil, fmt.Errorf("animation %q: %w", id, err)
	}
	return animation, nil
}

func (a *Animation) setSource(source Source) error {
	switch source.count() {
	case 0:
		return fmt.Errorf("%w: neither data nor url", ErrMissingSource)
	case 1:
	default:
		return fmt.Errorf("%w: data and url are mutually exclusive", ErrMissingSource)
	}

	switch {
	case len(source.Data) > 0:
		a.data = cloneBytes(source.Data)
		a.url = ""
	case source.DataURL != "":
		_, data, err := DecodeDataURL(source.DataURL)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMissingSource, err)
		}
		a.data = data
		a.url = ""
	default:
		if err := ValidateURL(source.URL); err != nil {
			return err
		}
		if IsDataURL(source.URL) {
			return a.setSource(Source{DataURL: source.URL})
		}
		a.url = source.URL
		a.data = nil
	}
	return nil
}

// ID returns the animation id.
func (a *Animation) ID() string { return a.id }

// SetID changes the animation id.
func (a *Animation) SetID(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	a.id = id
	return nil
}

// Data returns the Lottie JSON, or nil for an unfetched url source. The
// returned slice must not be modified.
func (a *Animation) Data() []byte { return a.data }

// SetData replaces the source with inline JSON.
func (a *Animation) SetData(data []byte) error {
	return a.setSource(Source{Data: data})
}

// URL returns the remote source, or "".
func (a *Animation) URL() string { return a.url }

// SetURL replaces the source with a remote url.
func (a *Animation) SetURL(url string) error {
	return a.setSource(Source{URL: url})
}

// InitialTheme returns the id of the theme applied on load, or "".
func (a *Animation) InitialTheme() string { return a.initialTheme }

// SetInitialTheme sets the theme applied on load. The theme is also
// associated with the animation. An empty id clears the setting.
func (a *Animation) SetInitialTheme(themeID string) error {
	if themeID == "" {
		a.initialTheme = ""
		return nil
	}
	if err := ValidateID(themeID); err != nil {
		return err
	}
	a.initialTheme = themeID
	a.themes = appendUnique(a.themes, themeID)
	return nil
}

// Name returns the display name, or "".
func (a *Animation) Name() string { return a.name }

// SetName sets the display name written to second generation
// manifests.
func (a *Animation) SetName(name string) { a.name = name }

// Background returns the background colour hint, or "".
func (a *Animation) Background() string { return a.background }

// SetBackground sets the background colour hint.
func (a *Animation) SetBackground(color string) { a.background = color }

// Themes returns the associated theme ids in association order.
func (a *Animation) Themes() []string { return cloneStrings(a.themes) }

// AddTheme associates a theme.
func (a *Animation) AddTheme(themeID string) error {
	if err := ValidateID(themeID); err != nil {
		return err
	}
	a.themes = appendUnique(a.themes, themeID)
	return nil
}

// RemoveTheme drops a theme association and clears the initial theme if
// it pointed there.
func (a *Animation) RemoveTheme(themeID string) {
	a.themes = remove(a.themes, themeID)
	if a.initialTheme == themeID {
		a.initialTheme = ""
	}
}

// StateMachines returns the associated state machine ids.
func (a *Animation) StateMachines() []string { return cloneStrings(a.stateMachines) }

// AddStateMachine associates a state machine.
func (a *Animation) AddStateMachine(stateMachineID string) error {
	if err := ValidateID(stateMachineID); err != nil {
		return err
	}
	a.stateMachines = appendUnique(a.stateMachines, stateMachineID)
	return nil
}

// RemoveStateMachine drops a state machine association.
func (a *Animation) RemoveStateMachine(stateMachineID string) {
	a.stateMachines = remove(a.stateMachines, stateMachineID)
}

// GlobalInputs returns the associated global input ids.
func (a *Animation) GlobalInputs() []string { return cloneStrings(a.globalInputs) }

// AddGlobalInputs associates a global inputs document.
func (a *Animation) AddGlobalInputs(globalInputsID string) error {
	if err := ValidateID(globalInputsID); err != nil {
		return err
	}
	a.globalInputs = appendUnique(a.globalInputs, globalInputsID)
	return nil
}

// RemoveGlobalInputs drops a global inputs association.
func (a *Animation) RemoveGlobalInputs(globalInputsID string) {
	a.globalInputs = remove(a.globalInputs, globalInputsID)
}

// Playback returns the version 1 playback settings, or nil.
func (a *Animation) Playback() *Playback {
	if a.playback == nil {
		return nil
	}
	playback := *a.playback
	return &playback
}

// SetPlayback sets the version 1 playback settings. Nil clears them.
func (a *Animation) SetPlayback(playback *Playback) error {
	if playback == nil {
		a.playback = nil
		return nil
	}
	if playback.Direction != 1 && playback.Direction != -1 {
		return fmt.Errorf("animation %q: direction must be 1 or -1, got %d", a.id, playback.Direction)
	}
	if playback.PlayMode != "normal" && playback.PlayMode != "bounce" {
		return fmt.Errorf("animation %q: play mode must be normal or bounce, got %q", a.id, playback.PlayMode)
	}
	if playback.LoopCount < 0 {
		return fmt.Errorf("animation %q: loop count must not be negative, got %d", a.id, playback.LoopCount)
	}
	copied := *playback
	a.playback = &copied
	return nil
}

// Zip returns the compression options for this animation's entry.
func (a *Animation) Zip() archive.Options { return a.zip }

// SetZip sets the compression options for this animation's entry.
func (a *Animation) SetZip(options archive.Options) error {
	if err := options.Validate(); err != nil {
		return err
	}
	a.zip = options
	return nil
}

// Clone returns a deep copy.
func (a *Animation) Clone() *Animation {
	clone := *a
	clone.data = cloneBytes(a.data)
	clone.themes = cloneStrings(a.themes)
	clone.stateMachines = cloneStrings(a.stateMachines)
	clone.globalInputs = cloneStrings(a.globalInputs)
	clone.playback = a.Playback()
	return &clone
}

func remove(ids []string, id string) []string {
	var result []string
	for _, existing := range ids {
		if existing != id {
			result = append(result, existing)
		}
	}
	return result
}
