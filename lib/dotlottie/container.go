// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dotlottie

import (
	"fmt"
	"maps"
	"sync/atomic"

	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

// Initial selects what a player loads first. Empty fields leave the
// choice to the player. First generation manifests only record the
// animation, as activeAnimationId.
type Initial struct {
	Animation    string
	StateMachine string
	GlobalInputs string
}

// Metadata is the descriptive block of first generation manifests.
// Second generation builds ignore it.
type Metadata struct {
	Author      string
	Description string
	Keywords    string
	Revision    int
	Custom      map[string]any
}

// Container is the document graph of one dotLottie file. Documents are
// held by pointer: changes made through a returned *lottie.Animation
// are seen by the next Build. Ids are unique per document type (per
// kind for assets); Add fails on a repeat.
//
// A Container is not safe for concurrent mutation. Build reads a
// snapshot and never modifies the graph.
type Container struct {
	animations    []*lottie.Animation
	themes        []*lottie.Theme
	assets        map[lottie.AssetKind][]*lottie.Asset
	stateMachines []*lottie.StateMachine
	globalInputs  []*lottie.GlobalInputs

	initial  Initial
	metadata Metadata

	building atomic.Bool
}

// New returns an empty container.
func New() *Container {
	return &Container{assets: make(map[lottie.AssetKind][]*lottie.Asset)}
}

func duplicate(kind, id string) error {
	return fmt.Errorf("%w: duplicate %s id %q", lottie.ErrInvalidIdentifier, kind, id)
}

// AddAnimation adds an animation.
func (c *Container) AddAnimation(animation *lottie.Animation) error {
	if c.Animation(animation.ID()) != nil {
		return duplicate("animation", animation.ID())
	}
	c.animations = append(c.animations, animation)
	return nil
}

// Animation returns the animation with id, or nil.
func (c *Container) Animation(id string) *lottie.Animation {
	for _, animation := range c.animations {
		if animation.ID() == id {
			return animation
		}
	}
	return nil
}

// Animations returns every animation in insertion order.
func (c *Container) Animations() []*lottie.Animation {
	return append([]*lottie.Animation(nil), c.animations...)
}

// RemoveAnimation removes an animation and every reference to it from
// themes and assets. A theme or theme rule scoped only to the removed
// animation is removed with it, never widened to every animation. It
// reports whether the animation existed.
func (c *Container) RemoveAnimation(id string) bool {
	index := -1
	for i, animation := range c.animations {
		if animation.ID() == id {
			index = i
		}
	}
	if index < 0 {
		return false
	}
	c.animations = append(c.animations[:index:index], c.animations[index+1:]...)

	var emptied []string
	for _, theme := range c.themes {
		if !theme.DropAnimation(id) {
			emptied = append(emptied, theme.ID())
		}
	}
	for _, themeID := range emptied {
		c.RemoveTheme(themeID)
	}
	for _, assets := range c.assets {
		for _, asset := range assets {
			asset.RemoveParentAnimation(id)
		}
	}
	if c.initial.Animation == id {
		c.initial.Animation = ""
	}
	return true
}

// AddTheme adds a theme.
func (c *Container) AddTheme(theme *lottie.Theme) error {
	if c.Theme(theme.ID()) != nil {
		return duplicate("theme", theme.ID())
	}
	c.themes = append(c.themes, theme)
	return nil
}

// Theme returns the theme with id, or nil.
func (c *Container) Theme(id string) *lottie.Theme {
	for _, theme := range c.themes {
		if theme.ID() == id {
			return theme
		}
	}
	return nil
}

// Themes returns every theme in insertion order.
func (c *Container) Themes() []*lottie.Theme {
	return append([]*lottie.Theme(nil), c.themes...)
}

// RemoveTheme removes a theme and its association with every
// animation.
func (c *Container) RemoveTheme(id string) bool {
	for i, theme := range c.themes {
		if theme.ID() != id {
			continue
		}
		c.themes = append(c.themes[:i:i], c.themes[i+1:]...)
		for _, animation := range c.animations {
			animation.RemoveTheme(id)
		}
		return true
	}
	return false
}

// AddAsset adds an image, audio clip or font. Assets added directly are
// stored under their own id; the builder still merges later embedded
// payloads with the same content into them.
func (c *Container) AddAsset(asset *lottie.Asset) error {
	if c.Asset(asset.Kind(), asset.ID()) != nil {
		return duplicate(asset.Kind().String(), asset.ID())
	}
	c.assets[asset.Kind()] = append(c.assets[asset.Kind()], asset)
	return nil
}

// AddImage adds an image asset.
func (c *Container) AddImage(asset *lottie.Asset) error {
	if asset.Kind() != lottie.KindImage {
		return fmt.Errorf("%w: %s %q added as image", lottie.ErrInvalidAssetData, asset.Kind(), asset.ID())
	}
	return c.AddAsset(asset)
}

// AddAudio adds an audio asset.
func (c *Container) AddAudio(asset *lottie.Asset) error {
	if asset.Kind() != lottie.KindAudio {
		return fmt.Errorf("%w: %s %q added as audio", lottie.ErrInvalidAssetData, asset.Kind(), asset.ID())
	}
	return c.AddAsset(asset)
}

// AddFont adds a font asset.
func (c *Container) AddFont(asset *lottie.Asset) error {
	if asset.Kind() != lottie.KindFont {
		return fmt.Errorf("%w: %s %q added as font", lottie.ErrInvalidAssetData, asset.Kind(), asset.ID())
	}
	return c.AddAsset(asset)
}

// Asset returns the asset of kind with id, or nil.
func (c *Container) Asset(kind lottie.AssetKind, id string) *lottie.Asset {
	for _, asset := range c.assets[kind] {
		if asset.ID() == id {
			return asset
		}
	}
	return nil
}

// Assets returns the assets of kind in insertion order.
func (c *Container) Assets(kind lottie.AssetKind) []*lottie.Asset {
	return append([]*lottie.Asset(nil), c.assets[kind]...)
}

// RemoveAsset removes an asset. Documents that still reference it fail
// to build.
func (c *Container) RemoveAsset(kind lottie.AssetKind, id string) bool {
	assets := c.assets[kind]
	for i, asset := range assets {
		if asset.ID() == id {
			c.assets[kind] = append(assets[:i:i], assets[i+1:]...)
			return true
		}
	}
	return false
}

// AddStateMachine adds a state machine.
func (c *Container) AddStateMachine(stateMachine *lottie.StateMachine) error {
	if c.StateMachine(stateMachine.ID()) != nil {
		return duplicate("state machine", stateMachine.ID())
	}
	c.stateMachines = append(c.stateMachines, stateMachine)
	return nil
}

// StateMachine returns the state machine with id, or nil.
func (c *Container) StateMachine(id string) *lottie.StateMachine {
	for _, stateMachine := range c.stateMachines {
		if stateMachine.ID() == id {
			return stateMachine
		}
	}
	return nil
}

// StateMachines returns every state machine in insertion order.
func (c *Container) StateMachines() []*lottie.StateMachine {
	return append([]*lottie.StateMachine(nil), c.stateMachines...)
}

// RemoveStateMachine removes a state machine and its associations.
func (c *Container) RemoveStateMachine(id string) bool {
	for i, stateMachine := range c.stateMachines {
		if stateMachine.ID() != id {
			continue
		}
		c.stateMachines = append(c.stateMachines[:i:i], c.stateMachines[i+1:]...)
		for _, animation := range c.animations {
			animation.RemoveStateMachine(id)
		}
		if c.initial.StateMachine == id {
			c.initial.StateMachine = ""
		}
		return true
	}
	return false
}

// AddGlobalInputs adds a global inputs document.
func (c *Container) AddGlobalInputs(globalInputs *lottie.GlobalInputs) error {
	if c.GlobalInput(globalInputs.ID()) != nil {
		return duplicate("global inputs", globalInputs.ID())
	}
	c.globalInputs = append(c.globalInputs, globalInputs)
	return nil
}

// GlobalInput returns the global inputs document with id, or nil.
func (c *Container) GlobalInput(id string) *lottie.GlobalInputs {
	for _, globalInputs := range c.globalInputs {
		if globalInputs.ID() == id {
			return globalInputs
		}
	}
	return nil
}

// GlobalInputs returns every global inputs document in insertion order.
func (c *Container) GlobalInputs() []*lottie.GlobalInputs {
	return append([]*lottie.GlobalInputs(nil), c.globalInputs...)
}

// RemoveGlobalInputs removes a global inputs document and its
// associations.
func (c *Container) RemoveGlobalInputs(id string) bool {
	for i, globalInputs := range c.globalInputs {
		if globalInputs.ID() != id {
			continue
		}
		c.globalInputs = append(c.globalInputs[:i:i], c.globalInputs[i+1:]...)
		for _, animation := range c.animations {
			animation.RemoveGlobalInputs(id)
		}
		if c.initial.GlobalInputs == id {
			c.initial.GlobalInputs = ""
		}
		return true
	}
	return false
}

// Initial returns the initial selection.
func (c *Container) Initial() Initial { return c.initial }

// SetInitial sets the initial selection. References are checked at
// build time.
func (c *Container) SetInitial(initial Initial) { c.initial = initial }

// Metadata returns the first generation descriptive block.
func (c *Container) Metadata() Metadata {
	metadata := c.metadata
	metadata.Custom = maps.Clone(c.metadata.Custom)
	return metadata
}

// SetMetadata sets the first generation descriptive block.
func (c *Container) SetMetadata(metadata Metadata) error {
	if metadata.Revision < 0 {
		return fmt.Errorf("revision must not be negative, got %d", metadata.Revision)
	}
	metadata.Custom = maps.Clone(metadata.Custom)
	c.metadata = metadata
	return nil
}

// snapshot is a deep copy of the graph that Build works on.
type snapshot struct {
	animations    []*lottie.Animation
	themes        []*lottie.Theme
	assets        map[lottie.AssetKind][]*lottie.Asset
	stateMachines []*lottie.StateMachine
	globalInputs  []*lottie.GlobalInputs
	initial       Initial
	metadata      Metadata
}

func (c *Container) snapshot() *snapshot {
	s := &snapshot{
		assets:   make(map[lottie.AssetKind][]*lottie.Asset, len(c.assets)),
		initial:  c.initial,
		metadata: c.Metadata(),
	}
	for _, animation := range c.animations {
		s.animations = append(s.animations, animation.Clone())
	}
	for _, theme := range c.themes {
		s.themes = append(s.themes, theme.Clone())
	}
	for _, kind := range lottie.AssetKinds {
		for _, asset := range c.assets[kind] {
			s.assets[kind] = append(s.assets[kind], asset.Clone())
		}
	}
	for _, stateMachine := range c.stateMachines {
		s.stateMachines = append(s.stateMachines, stateMachine.Clone())
	}
	for _, globalInputs := range c.globalInputs {
		s.globalInputs = append(s.globalInputs, globalInputs.Clone())
	}
	return s
}
