// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

// VersionV1 is the version string the builder writes into first
// generation manifests. Readers also accept "1.x" strings.
const VersionV1 = "1"

// V1 is a first generation manifest.
type V1 struct {
	Version           string         `json:"version"`
	Generator         string         `json:"generator"`
	Author            string         `json:"author,omitempty"`
	Description       string         `json:"description,omitempty"`
	Keywords          string         `json:"keywords,omitempty"`
	Revision          int            `json:"revision,omitempty"`
	ActiveAnimationID string         `json:"activeAnimationId,omitempty"`
	Animations        []V1Animation  `json:"animations"`
	Themes            []V1Theme      `json:"themes,omitempty"`
	States            []string       `json:"states,omitempty"`
	Custom            map[string]any `json:"custom,omitempty"`
}

// V1Animation carries the playback settings of one animation inline.
// Every setting is optional; [V1Animation.Playback] fills in what is
// missing.
type V1Animation struct {
	ID                     string   `json:"id"`
	Speed                  *float64 `json:"speed,omitempty"`
	Loop                   Loop     `json:"loop"`
	Autoplay               bool     `json:"autoplay"`
	Direction              *int     `json:"direction,omitempty"`
	PlayMode               string   `json:"playMode,omitempty"`
	Hover                  bool     `json:"hover,omitempty"`
	Intermission           float64  `json:"intermission,omitempty"`
	ThemeColor             string   `json:"themeColor,omitempty"`
	DefaultTheme           string   `json:"defaultTheme,omitempty"`
	DefaultActiveAnimation bool     `json:"defaultActiveAnimation,omitempty"`
}

// Playback returns the animation's settings over lottie.DefaultPlayback.
func (a V1Animation) Playback() lottie.Playback {
	playback := lottie.DefaultPlayback()
	if a.Speed != nil {
		playback.Speed = *a.Speed
	}
	if a.Direction != nil {
		playback.Direction = *a.Direction
	}
	if a.PlayMode != "" {
		playback.PlayMode = a.PlayMode
	}
	playback.Loop = a.Loop.Enabled
	playback.LoopCount = a.Loop.Count
	playback.Autoplay = a.Autoplay
	playback.Hover = a.Hover
	playback.Intermission = a.Intermission
	playback.ThemeColor = a.ThemeColor
	return playback
}

// V1AnimationFor projects playback settings onto a manifest entry.
func V1AnimationFor(id string, playback lottie.Playback) V1Animation {
	return V1Animation{
		ID:           id,
		Speed:        &playback.Speed,
		Loop:         Loop{Enabled: playback.Loop, Count: playback.LoopCount},
		Autoplay:     playback.Autoplay,
		Direction:    &playback.Direction,
		PlayMode:     playback.PlayMode,
		Hover:        playback.Hover,
		Intermission: playback.Intermission,
		ThemeColor:   playback.ThemeColor,
	}
}

// Loop is the v1 loop setting, written either as a boolean or as a
// number of repetitions.
type Loop struct {
	Enabled bool

	// Count is the repetition count of a numeric setting. Zero with
	// Enabled set loops forever.
	Count int
}

// MarshalJSON writes a count when there is one and a boolean otherwise.
func (l Loop) MarshalJSON() ([]byte, error) {
	if l.Enabled && l.Count > 0 {
		return json.Marshal(l.Count)
	}
	return json.Marshal(l.Enabled)
}

// UnmarshalJSON accepts true, false, or a non-negative whole number. A
// count of zero disables looping.
func (l *Loop) UnmarshalJSON(data []byte) error {
	var enabled bool
	if err := json.Unmarshal(data, &enabled); err == nil {
		*l = Loop{Enabled: enabled}
		return nil
	}
	var count float64
	if err := json.Unmarshal(data, &count); err != nil {
		return fmt.Errorf("loop must be a boolean or a number, got %s", data)
	}
	if count < 0 || count != math.Trunc(count) || count > math.MaxInt32 {
		return fmt.Errorf("loop count must be a non-negative whole number, got %s", data)
	}
	*l = Loop{Enabled: count > 0, Count: int(count)}
	return nil
}

// V1Theme lists the animations a theme applies to.
type V1Theme struct {
	ID         string   `json:"id"`
	Animations []string `json:"animations"`
}

// DecodeV1 strictly decodes and validates a first generation manifest.
func DecodeV1(data []byte) (*V1, error) {
	var manifest V1
	if err := decodeStrict(data, &manifest); err != nil {
		return nil, err
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Validate checks the manifest against the first generation rules.
func (m *V1) Validate() error {
	var c collector
	if m.Version != VersionV1 && !strings.HasPrefix(m.Version, VersionV1+".") {
		c.add(CodeVersion, "version", "want %q, got %q", VersionV1, m.Version)
	}
	if m.Generator == "" {
		c.add(CodeRequired, "generator", "generator is required")
	}
	if len(m.Animations) == 0 {
		c.add(CodeRequired, "animations", "at least one animation is required")
	}
	if m.Revision < 0 {
		c.add(CodeInvalidValue, "revision", "revision must not be negative")
	}

	ids := make([]string, len(m.Animations))
	for i, animation := range m.Animations {
		ids[i] = animation.ID
	}
	animations := c.ids("animations", ids)

	defaults := 0
	for i, animation := range m.Animations {
		path := fmt.Sprintf("animations[%d]", i)
		if speed := animation.Speed; speed != nil && *speed <= 0 {
			c.add(CodeInvalidValue, path+".speed", "speed must be positive, got %v", *speed)
		}
		if direction := animation.Direction; direction != nil && *direction != 1 && *direction != -1 {
			c.add(CodeInvalidValue, path+".direction", "direction must be 1 or -1, got %d", *direction)
		}
		if mode := animation.PlayMode; mode != "" && mode != "normal" && mode != "bounce" {
			c.add(CodeInvalidValue, path+".playMode", "play mode must be normal or bounce, got %q", mode)
		}
		if animation.Intermission < 0 {
			c.add(CodeInvalidValue, path+".intermission", "intermission must not be negative")
		}
		if animation.DefaultActiveAnimation {
			defaults++
		}
	}
	if defaults > 1 {
		c.add(CodeInvalidValue, "animations", "%d animations are marked defaultActiveAnimation", defaults)
	}
	c.reference("activeAnimationId", m.ActiveAnimationID, animations, "animation")

	themeIDs := make([]string, len(m.Themes))
	for i, theme := range m.Themes {
		themeIDs[i] = theme.ID
	}
	themes := c.ids("themes", themeIDs)
	for i, animation := range m.Animations {
		c.reference(fmt.Sprintf("animations[%d].defaultTheme", i), animation.DefaultTheme, themes, "theme")
	}
	for i, theme := range m.Themes {
		for j, animationID := range theme.Animations {
			c.reference(fmt.Sprintf("themes[%d].animations[%d]", i, j), animationID, animations, "animation")
		}
	}

	states := make(map[string]bool, len(m.States))
	for i, id := range m.States {
		path := fmt.Sprintf("states[%d]", i)
		c.id(path, id)
		if states[id] {
			c.add(CodeDuplicateID, path, "duplicate state machine id %q", id)
		}
		states[id] = true
	}
	return c.err()
}

// Marshal validates and encodes the manifest.
func (m *V1) Marshal() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}
