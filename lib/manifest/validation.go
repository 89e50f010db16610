// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

// Code classifies a validation problem.
type Code string

const (
	// CodeDecode means the document is not JSON of the expected shape,
	// including unknown fields.
	CodeDecode Code = "manifest-decode"
	// CodeVersion means the version field names another generation.
	CodeVersion Code = "manifest-version"
	// CodeRequired means a required field is missing or empty.
	CodeRequired Code = "manifest-required"
	// CodeInvalidID means an id is not a valid document id.
	CodeInvalidID Code = "manifest-invalid-id"
	// CodeDuplicateID means two entries of one list share an id.
	CodeDuplicateID Code = "manifest-duplicate-id"
	// CodeDanglingReference means an id points at no listed entry.
	CodeDanglingReference Code = "manifest-dangling-reference"
	// CodeInvalidValue means a field holds a value outside its range.
	CodeInvalidValue Code = "manifest-invalid-value"
)

// Validation is one problem found in a manifest.
type Validation struct {
	Code    Code
	Path    string
	Message string
}

// Error formats the problem as "[code] message at path".
func (v *Validation) Error() string {
	if v == nil {
		return "validation <nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", v.Code, v.Message)
	if v.Path != "" {
		fmt.Fprintf(&b, " at %s", v.Path)
	}
	return b.String()
}

// ValidationList is an error holding one or more validation problems.
// It matches lottie.ErrSchemaViolation under errors.Is.
type ValidationList []Validation

// Error summarizes the list by its first problem.
func (v ValidationList) Error() string {
	switch len(v) {
	case 0:
		return "manifest: no validation errors"
	case 1:
		return "manifest: " + v[0].Error()
	default:
		return fmt.Sprintf("manifest: %s (and %d more)", v[0].Error(), len(v)-1)
	}
}

// Unwrap ties every validation failure to the schema violation sentinel.
func (v ValidationList) Unwrap() error { return lottie.ErrSchemaViolation }

// AsValidations extracts the validation problems from err.
func AsValidations(err error) ([]Validation, bool) {
	var list ValidationList
	if err == nil || !errors.As(err, &list) {
		return nil, false
	}
	return []Validation(list), true
}

// collector accumulates problems while a validator walks a manifest.
type collector struct {
	list ValidationList
}

func (c *collector) add(code Code, path, format string, args ...any) {
	c.list = append(c.list, Validation{Code: code, Path: path, Message: fmt.Sprintf(format, args...)})
}

// id checks one id field.
func (c *collector) id(path, id string) {
	if id == "" {
		c.add(CodeRequired, path, "id is required")
		return
	}
	if err := lottie.ValidateID(id); err != nil {
		c.add(CodeInvalidID, path, "%v", err)
	}
}

// ids checks a list of entry ids for validity and uniqueness and
// returns the set of valid ids.
func (c *collector) ids(path string, ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for i, id := range ids {
		entryPath := fmt.Sprintf("%s[%d].id", path, i)
		c.id(entryPath, id)
		if set[id] {
			c.add(CodeDuplicateID, entryPath, "duplicate id %q", id)
		}
		set[id] = true
	}
	return set
}

// reference checks that id, when set, names an entry of known.
func (c *collector) reference(path, id string, known map[string]bool, target string) {
	if id == "" {
		return
	}
	if !known[id] {
		c.add(CodeDanglingReference, path, "%s %q is not listed", target, id)
	}
}

func (c *collector) err() error {
	if len(c.list) == 0 {
		return nil
	}
	return c.list
}
