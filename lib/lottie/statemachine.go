// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottie

import (
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/lottiepack/lib/archive"
)

// StateMachine is an interactivity document. Its bytes are stored and
// returned verbatim; [StateMachine.Document] offers a typed read-only
// view but nothing here executes it.
type StateMachine struct {
	id   string
	name string
	data []byte
	zip  archive.Options
}

// StateMachineDocument is the typed view of a state machine.
type StateMachineDocument struct {
	Initial      string            `json:"initial"`
	States       []State           `json:"states"`
	Listeners    []json.RawMessage `json:"listeners,omitempty"`
	Interactions []json.RawMessage `json:"interactions,omitempty"`
	Inputs       []json.RawMessage `json:"inputs,omitempty"`
}

// State is one node of a state machine.
type State struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Animation   string       `json:"animation,omitempty"`
	Transitions []Transition `json:"transitions,omitempty"`
}

// Transition moves between states when its guards hold.
type Transition struct {
	Type    string            `json:"type"`
	ToState string            `json:"toState"`
	Guards  []json.RawMessage `json:"guards,omitempty"`
}

// NewStateMachine creates a state machine from its JSON document.
func NewStateMachine(id string, data []byte) (*StateMachine, error) {
	if err := ValidateID(id); err != nil {
		return nil, fmt.Errorf("state machine: %w", err)
	}
	stateMachine := &StateMachine{id: id}
	if err := stateMachine.SetData(data); err != nil {
		return nil, err
	}
	return stateMachine, nil
}

// ID returns the state machine id.
func (s *StateMachine) ID() string { return s.id }

// SetID changes the state machine id.
func (s *StateMachine) SetID(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	s.id = id
	return nil
}

// Name returns the optional display name.
func (s *StateMachine) Name() string { return s.name }

// SetName sets the display name.
func (s *StateMachine) SetName(name string) { s.name = name }

// Data returns the document bytes. The returned slice must not be
// modified.
func (s *StateMachine) Data() []byte { return s.data }

// SetData replaces the document. It must be a JSON object.
func (s *StateMachine) SetData(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("state machine %q: %w: empty document", s.id, ErrMissingSource)
	}
	var object map[string]json.RawMessage
	if err := json.Unmarshal(data, &object); err != nil {
		return fmt.Errorf("state machine %q: %w: %v", s.id, ErrInvalidAssetData, err)
	}
	s.data = cloneBytes(data)
	return nil
}

// Document decodes the typed view.
func (s *StateMachine) Document() (*StateMachineDocument, error) {
	var document StateMachineDocument
	if err := json.Unmarshal(s.data, &document); err != nil {
		return nil, fmt.Errorf("state machine %q: %w: %v", s.id, ErrInvalidAssetData, err)
	}
	return &document, nil
}

// Zip returns the compression options for this entry.
func (s *StateMachine) Zip() archive.Options { return s.zip }

// SetZip sets the compression options for this entry.
func (s *StateMachine) SetZip(options archive.Options) error {
	if err := options.Validate(); err != nil {
		return err
	}
	s.zip = options
	return nil
}

// Clone returns a deep copy.
func (s *StateMachine) Clone() *StateMachine {
	clone := *s
	clone.data = cloneBytes(s.data)
	return &clone
}
