// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottie

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bureau-foundation/lottiepack/lib/archive"
)

// inputTypes are the value types a global input may hold.
var inputTypes = map[ValueType]bool{
	TypeBoolean:  true,
	TypeScalar:   true,
	TypeColor:    true,
	TypeVector:   true,
	TypeImage:    true,
	TypeGradient: true,
}

// Input is one named, typed value.
type Input struct {
	Type     ValueType       `json:"type"`
	Value    json.RawMessage `json:"value"`
	Bindings *Bindings       `json:"bindings,omitempty"`
}

// Bindings lists the theme rules an input drives.
type Bindings struct {
	Themes []ThemeBinding `json:"themes,omitempty"`
}

// ThemeBinding points an input at one rule of one theme. Path selects a
// sub-value of the rule; empty means the whole value.
type ThemeBinding struct {
	Theme string `json:"themeId"`
	Rule  string `json:"ruleId"`
	Path  string `json:"path,omitempty"`
}

// GlobalInputs is a named set of inputs shared by the animations that
// reference it.
type GlobalInputs struct {
	id     string
	name   string
	inputs map[string]Input
	zip    archive.Options
}

// NewGlobalInputs creates a global inputs document.
func NewGlobalInputs(id string, inputs map[string]Input) (*GlobalInputs, error) {
	if err := ValidateID(id); err != nil {
		return nil, fmt.Errorf("global inputs: %w", err)
	}
	globalInputs := &GlobalInputs{id: id}
	if err := globalInputs.SetInputs(inputs); err != nil {
		return nil, err
	}
	return globalInputs, nil
}

// ParseGlobalInputs decodes a global inputs entry.
func ParseGlobalInputs(id string, data []byte) (*GlobalInputs, error) {
	var inputs map[string]Input
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("global inputs %q: %w: %v", id, ErrInvalidAssetData, err)
	}
	return NewGlobalInputs(id, inputs)
}

// ID returns the document id.
func (g *GlobalInputs) ID() string { return g.id }

// SetID changes the document id.
func (g *GlobalInputs) SetID(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	g.id = id
	return nil
}

// Name returns the optional display name.
func (g *GlobalInputs) Name() string { return g.name }

// SetName sets the display name.
func (g *GlobalInputs) SetName(name string) { g.name = name }

// Inputs returns a copy of the inputs.
func (g *GlobalInputs) Inputs() map[string]Input {
	result := make(map[string]Input, len(g.inputs))
	for name, input := range g.inputs {
		result[name] = input.clone()
	}
	return result
}

// Names returns the input names, sorted.
func (g *GlobalInputs) Names() []string {
	names := make([]string, 0, len(g.inputs))
	for name := range g.inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetInputs validates and replaces every input.
func (g *GlobalInputs) SetInputs(inputs map[string]Input) error {
	validated := make(map[string]Input, len(inputs))
	var errs []error
	for name, input := range inputs {
		copied := input.clone()
		if err := validateInput(name, copied); err != nil {
			errs = append(errs, err)
			continue
		}
		validated[name] = copied
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("global inputs %q: %w", g.id, err)
	}
	g.inputs = validated
	return nil
}

// SetInput validates and sets one input.
func (g *GlobalInputs) SetInput(name string, input Input) error {
	copied := input.clone()
	if err := validateInput(name, copied); err != nil {
		return fmt.Errorf("global inputs %q: %w", g.id, err)
	}
	if g.inputs == nil {
		g.inputs = make(map[string]Input)
	}
	g.inputs[name] = copied
	return nil
}

// ThemeBindings returns every theme binding across all inputs, ordered
// by input name.
func (g *GlobalInputs) ThemeBindings() []ThemeBinding {
	var bindings []ThemeBinding
	for _, name := range g.Names() {
		input := g.inputs[name]
		if input.Bindings != nil {
			bindings = append(bindings, input.Bindings.Themes...)
		}
	}
	return bindings
}

// Marshal encodes the entry stored in the archive.
func (g *GlobalInputs) Marshal() ([]byte, error) {
	return json.Marshal(g.inputs)
}

// Zip returns the compression options for this entry.
func (g *GlobalInputs) Zip() archive.Options { return g.zip }

// SetZip sets the compression options for this entry.
func (g *GlobalInputs) SetZip(options archive.Options) error {
	if err := options.Validate(); err != nil {
		return err
	}
	g.zip = options
	return nil
}

// Clone returns a deep copy.
func (g *GlobalInputs) Clone() *GlobalInputs {
	clone := *g
	clone.inputs = g.Inputs()
	return &clone
}

func validateInput(name string, input Input) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: input has empty name", ErrInvalidIdentifier)
	}
	if !inputTypes[input.Type] {
		return fmt.Errorf("input %q: unsupported type %q", name, input.Type)
	}
	if err := ValidateValue(input.Type, input.Value); err != nil {
		return fmt.Errorf("input %q: %w", name, err)
	}
	if input.Bindings != nil {
		for i, binding := range input.Bindings.Themes {
			if err := ValidateID(binding.Theme); err != nil {
				return fmt.Errorf("input %q binding %d: %w", name, i, err)
			}
			if binding.Rule == "" {
				return fmt.Errorf("input %q binding %d: empty rule id", name, i)
			}
		}
	}
	return nil
}

func (i Input) clone() Input {
	clone := Input{Type: i.Type, Value: compactRaw(i.Value)}
	if i.Bindings != nil {
		clone.Bindings = &Bindings{}
		if i.Bindings.Themes != nil {
			clone.Bindings.Themes = make([]ThemeBinding, len(i.Bindings.Themes))
			copy(clone.Bindings.Themes, i.Bindings.Themes)
		}
	}
	return clone
}
