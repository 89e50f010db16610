// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"io"
	"reflect"
)

// JSONOutput adds a --json flag to a params struct by embedding:
//
//	type inspectParams struct {
//	    cli.JSONOutput
//	    Check bool `flag:"check"`
//	}
//
//	if done, err := params.EmitJSON(w, summary); done {
//	    return err
//	}
//	// text output
type JSONOutput struct {
	OutputJSON bool `json:"-" flag:"json" desc:"print machine-readable JSON"`
}

// EmitJSON writes result to w when --json is set and reports whether
// it did. When it returns false the caller renders text instead.
//
// Nil slices, at the top level or in the fields of a struct result,
// are written as [] rather than null.
func (j *JSONOutput) EmitJSON(w io.Writer, result any) (bool, error) {
	if !j.OutputJSON {
		return false, nil
	}
	return true, WriteJSON(w, emptySlices(result))
}

// WriteJSON writes value as two-space indented JSON followed by a
// newline.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// emptySlices replaces nil slices in value, or in the exported fields
// of a struct (or pointer to struct) value, with empty ones. Structs
// are copied; value itself is not modified.
func emptySlices(value any) any {
	v := reflect.ValueOf(value)
	switch {
	case !v.IsValid():
		return value
	case v.Kind() == reflect.Slice:
		if v.IsNil() {
			return reflect.MakeSlice(v.Type(), 0, 0).Interface()
		}
		return value
	case v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() == reflect.Struct:
		v = v.Elem()
	case v.Kind() != reflect.Struct:
		return value
	}

	copied := reflect.New(v.Type()).Elem()
	copied.Set(v)
	for i := range copied.NumField() {
		field := copied.Field(i)
		if field.Kind() == reflect.Slice && field.IsNil() && field.CanSet() {
			field.Set(reflect.MakeSlice(field.Type(), 0, 0))
		}
	}
	return copied.Interface()
}
