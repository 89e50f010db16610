// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottie

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bureau-foundation/lottiepack/lib/archive"
)

// ruleTypes are the value types a theme rule may override. Boolean is
// only valid for global inputs.
var ruleTypes = map[ValueType]bool{
	TypeColor:    true,
	TypeScalar:   true,
	TypePosition: true,
	TypeVector:   true,
	TypeImage:    true,
	TypeGradient: true,
}

// Rule overrides one slot of an animation. Exactly one of Value,
// Keyframes or Expression is set.
type Rule struct {
	ID         string          `json:"id"`
	Type       ValueType       `json:"type"`
	Value      json.RawMessage `json:"value,omitempty"`
	Keyframes  []Keyframe      `json:"keyframes,omitempty"`
	Expression string          `json:"expression,omitempty"`

	// Animations limits the rule to the listed animation ids. Empty
	// means every animation the theme applies to.
	Animations []string `json:"animations,omitempty"`
}

// Keyframe is one key of an animated rule value.
type Keyframe struct {
	Frame      float64         `json:"frame"`
	Value      json.RawMessage `json:"value"`
	InTangent  json.RawMessage `json:"inTangent,omitempty"`
	OutTangent json.RawMessage `json:"outTangent,omitempty"`
	Hold       bool            `json:"hold,omitempty"`
}

// Validate checks the rule shape and its value(s).
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: rule has empty id", ErrInvalidIdentifier)
	}
	if !ruleTypes[r.Type] {
		return fmt.Errorf("rule %q: unsupported type %q", r.ID, r.Type)
	}

	forms := 0
	if len(r.Value) > 0 {
		forms++
	}
	if len(r.Keyframes) > 0 {
		forms++
	}
	if r.Expression != "" {
		forms++
	}
	if forms != 1 {
		return fmt.Errorf("rule %q: exactly one of value, keyframes or expression is required (got %d)", r.ID, forms)
	}

	if len(r.Value) > 0 {
		if err := ValidateValue(r.Type, r.Value); err != nil {
			return fmt.Errorf("rule %q: %w", r.ID, err)
		}
	}
	for i, keyframe := range r.Keyframes {
		if err := ValidateValue(r.Type, keyframe.Value); err != nil {
			return fmt.Errorf("rule %q keyframe %d: %w", r.ID, i, err)
		}
	}
	return validateIDs(fmt.Sprintf("rule %q animations", r.ID), r.Animations)
}

func (r Rule) clone() Rule {
	clone := r
	clone.Value = compactRaw(r.Value)
	clone.Animations = cloneStrings(r.Animations)
	if r.Keyframes != nil {
		clone.Keyframes = make([]Keyframe, len(r.Keyframes))
		for i, keyframe := range r.Keyframes {
			clone.Keyframes[i] = Keyframe{
				Frame:      keyframe.Frame,
				Value:      compactRaw(keyframe.Value),
				InTangent:  compactRaw(keyframe.InTangent),
				OutTangent: compactRaw(keyframe.OutTangent),
				Hold:       keyframe.Hold,
			}
		}
	}
	return clone
}

// Theme is a named set of override rules. Version 1 containers may
// instead carry a theme as a stylesheet; a theme has rules or a
// stylesheet, or a url that resolves to one of them at build time.
type Theme struct {
	id         string
	name       string
	rules      []Rule
	stylesheet string
	url        string
	animations []string
	zip        archive.Options
}

// themeFile is the JSON layout of a theme entry.
type themeFile struct {
	Rules      []Rule   `json:"rules"`
	Animations []string `json:"animations,omitempty"`
}

// NewTheme creates a theme from rules.
func NewTheme(id string, rules []Rule) (*Theme, error) {
	if err := ValidateID(id); err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("theme %q: %w: no rules", id, ErrMissingSource)
	}
	theme := &Theme{id: id}
	if err := theme.SetRules(rules); err != nil {
		return nil, err
	}
	return theme, nil
}

// NewStylesheetTheme creates a version 1 theme from stylesheet text.
func NewStylesheetTheme(id, stylesheet string) (*Theme, error) {
	if err := ValidateID(id); err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	if strings.TrimSpace(stylesheet) == "" {
		return nil, fmt.Errorf("theme %q: %w: empty stylesheet", id, ErrMissingSource)
	}
	return &Theme{id: id, stylesheet: stylesheet}, nil
}

// NewRemoteTheme creates a theme fetched from url at build time.
func NewRemoteTheme(id, url string) (*Theme, error) {
	if err := ValidateID(id); err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	if err := ValidateURL(url); err != nil {
		return nil, fmt.Errorf("theme %q: %w", id, err)
	}
	return &Theme{id: id, url: url}, nil
}

// ParseTheme decodes a theme entry. JSON documents become rule themes;
// anything else is kept as a stylesheet.
func ParseTheme(id string, data []byte) (*Theme, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return NewStylesheetTheme(id, string(data))
	}
	var file themeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("theme %q: %w: %v", id, ErrInvalidAssetData, err)
	}
	theme, err := NewTheme(id, file.Rules)
	if err != nil {
		return nil, err
	}
	if err := theme.SetAnimations(file.Animations); err != nil {
		return nil, err
	}
	return theme, nil
}

// ID returns the theme id.
func (t *Theme) ID() string { return t.id }

// SetID changes the theme id.
func (t *Theme) SetID(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	t.id = id
	return nil
}

// Name returns the optional display name.
func (t *Theme) Name() string { return t.name }

// SetName sets the display name.
func (t *Theme) SetName(name string) { t.name = name }

// Rules returns a copy of the rules.
func (t *Theme) Rules() []Rule {
	if t.rules == nil {
		return nil
	}
	rules := make([]Rule, len(t.rules))
	for i, rule := range t.rules {
		rules[i] = rule.clone()
	}
	return rules
}

// SetRules validates and replaces the rules, clearing any stylesheet or
// url source.
func (t *Theme) SetRules(rules []Rule) error {
	if len(rules) == 0 {
		return fmt.Errorf("theme %q: %w: no rules", t.id, ErrMissingSource)
	}
	copied := make([]Rule, len(rules))
	seen := make(map[string]bool, len(rules))
	var errs []error
	for i, rule := range rules {
		copied[i] = rule.clone()
		if err := copied[i].Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[rule.ID] {
			errs = append(errs, fmt.Errorf("duplicate rule id %q", rule.ID))
		}
		seen[rule.ID] = true
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("theme %q: %w", t.id, err)
	}
	t.rules = copied
	t.stylesheet = ""
	t.url = ""
	return nil
}

// Stylesheet returns the version 1 stylesheet text, if any.
func (t *Theme) Stylesheet() string { return t.stylesheet }

// URL returns the remote source, if any.
func (t *Theme) URL() string { return t.url }

// IsStylesheet reports whether the theme is stylesheet text rather than
// rules.
func (t *Theme) IsStylesheet() bool { return t.stylesheet != "" }

// Animations returns the animation ids the theme is scoped to. Empty
// means the theme is global.
func (t *Theme) Animations() []string { return cloneStrings(t.animations) }

// SetAnimations replaces the animation scope.
func (t *Theme) SetAnimations(ids []string) error {
	if err := validateIDs("theme animations", ids); err != nil {
		return err
	}
	t.animations = nil
	for _, id := range ids {
		t.animations = appendUnique(t.animations, id)
	}
	return nil
}

// DropAnimation removes animationID from the theme's scope and from the
// scope of every rule. A rule scoped only to that animation is removed
// rather than widened to every animation. DropAnimation reports false
// when nothing is left for the theme to apply to: its scope or its last
// rule named only that animation. The caller should then remove the
// theme.
func (t *Theme) DropAnimation(animationID string) bool {
	if slices.Contains(t.animations, animationID) {
		t.animations = remove(t.animations, animationID)
		if len(t.animations) == 0 {
			return false
		}
	}
	if t.rules == nil {
		return true
	}
	kept := t.rules[:0]
	for _, rule := range t.rules {
		if !slices.Contains(rule.Animations, animationID) {
			kept = append(kept, rule)
			continue
		}
		rule.Animations = remove(rule.Animations, animationID)
		if len(rule.Animations) > 0 {
			kept = append(kept, rule)
		}
	}
	t.rules = kept
	return len(t.rules) > 0
}

// Zip returns the compression options for this theme's entry.
func (t *Theme) Zip() archive.Options { return t.zip }

// SetZip sets the compression options for this theme's entry.
func (t *Theme) SetZip(options archive.Options) error {
	if err := options.Validate(); err != nil {
		return err
	}
	t.zip = options
	return nil
}

// MarshalRules encodes the rule document stored in the archive.
func (t *Theme) MarshalRules() ([]byte, error) {
	return json.Marshal(themeFile{Rules: t.rules, Animations: t.animations})
}

// WithRules returns a copy of the theme carrying rules in place of the
// current ones. Rules are validated.
func (t *Theme) WithRules(rules []Rule) (*Theme, error) {
	clone := t.Clone()
	if err := clone.SetRules(rules); err != nil {
		return nil, err
	}
	return clone, nil
}

// Clone returns a deep copy.
func (t *Theme) Clone() *Theme {
	clone := *t
	clone.rules = t.Rules()
	clone.animations = cloneStrings(t.animations)
	return &clone
}
