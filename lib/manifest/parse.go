// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Generation identifies which manifest layout a container uses.
type Generation int

const (
	GenerationV2 Generation = 2
	GenerationV1 Generation = 1
)

// String returns "v1" or "v2".
func (g Generation) String() string {
	switch g {
	case GenerationV1:
		return "v1"
	case GenerationV2:
		return "v2"
	default:
		return fmt.Sprintf("generation(%d)", int(g))
	}
}

// ParseGeneration accepts "1", "2", "v1" or "v2".
func ParseGeneration(s string) (Generation, error) {
	switch s {
	case "1", "v1":
		return GenerationV1, nil
	case "2", "v2":
		return GenerationV2, nil
	}
	return 0, fmt.Errorf("unknown manifest generation %q (want 1 or 2)", s)
}

// Manifest is a decoded manifest of either generation. Exactly one of
// V1 and V2 is set, matching Generation.
type Manifest struct {
	Generation Generation
	V1         *V1
	V2         *V2
}

// Parse decodes a manifest, trying the second generation first and then
// the first. It returns a [ValidationList] error (matching
// lottie.ErrSchemaViolation) only when both generations reject it.
func Parse(data []byte) (*Manifest, error) {
	v2, errV2 := DecodeV2(data)
	if errV2 == nil {
		return &Manifest{Generation: GenerationV2, V2: v2}, nil
	}
	v1, errV1 := DecodeV1(data)
	if errV1 == nil {
		return &Manifest{Generation: GenerationV1, V1: v1}, nil
	}
	return nil, errors.Join(
		fmt.Errorf("as v2: %w", errV2),
		fmt.Errorf("as v1: %w", errV1),
	)
}

// Generator returns the generator tag.
func (m *Manifest) Generator() string {
	if m.V2 != nil {
		return m.V2.Generator
	}
	return m.V1.Generator
}

// AnimationIDs returns the animation ids in manifest order.
func (m *Manifest) AnimationIDs() []string {
	if m.V2 != nil {
		return animationIDs(m.V2.Animations)
	}
	ids := make([]string, len(m.V1.Animations))
	for i, animation := range m.V1.Animations {
		ids[i] = animation.ID
	}
	return ids
}

// ThemeIDs returns the theme ids in manifest order.
func (m *Manifest) ThemeIDs() []string {
	if m.V2 != nil {
		return entryIDs(m.V2.Themes)
	}
	ids := make([]string, len(m.V1.Themes))
	for i, theme := range m.V1.Themes {
		ids[i] = theme.ID
	}
	return ids
}

// StateMachineIDs returns the state machine ids in manifest order.
func (m *Manifest) StateMachineIDs() []string {
	if m.V2 != nil {
		return entryIDs(m.V2.StateMachines)
	}
	return append([]string(nil), m.V1.States...)
}

// GlobalInputIDs returns the global inputs ids. First generation
// manifests have none.
func (m *Manifest) GlobalInputIDs() []string {
	if m.V2 != nil {
		return entryIDs(m.V2.GlobalInputs)
	}
	return nil
}

// Marshal encodes whichever generation is set.
func (m *Manifest) Marshal() ([]byte, error) {
	switch {
	case m.V2 != nil:
		return m.V2.Marshal()
	case m.V1 != nil:
		return m.V1.Marshal()
	}
	return nil, ValidationList{{Code: CodeRequired, Message: "empty manifest"}}
}

// decodeStrict decodes exactly one JSON object into v, rejecting unknown
// fields and trailing data.
func decodeStrict(data []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return ValidationList{{Code: CodeDecode, Message: err.Error()}}
	}
	if _, err := decoder.Token(); err != io.EOF {
		return ValidationList{{Code: CodeDecode, Message: "trailing data after manifest object"}}
	}
	return nil
}
