// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottie

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValueType names the shape of a theme rule value or a global input
// value.
type ValueType string

const (
	TypeBoolean  ValueType = "Boolean"
	TypeScalar   ValueType = "Scalar"
	TypeColor    ValueType = "Color"
	TypePosition ValueType = "Position"
	TypeVector   ValueType = "Vector"
	TypeImage    ValueType = "Image"
	TypeGradient ValueType = "Gradient"
)

// valueValidators holds one validator per type. Gradient has its own
// stop validator; it is not an alias of any other type.
var valueValidators = map[ValueType]func(any) error{
	TypeBoolean:  validateBoolean,
	TypeScalar:   validateScalar,
	TypeColor:    validateColor,
	TypePosition: validateVector,
	TypeVector:   validateVector,
	TypeImage:    validateImage,
	TypeGradient: validateGradient,
}

// ValidateValue checks that raw is a JSON value of the given type.
func ValidateValue(valueType ValueType, raw json.RawMessage) error {
	validator, ok := valueValidators[valueType]
	if !ok {
		return fmt.Errorf("unknown value type %q", valueType)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%s value is empty", valueType)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("%s value is not valid JSON: %w", valueType, err)
	}
	if err := validator(value); err != nil {
		return fmt.Errorf("%s value: %w", valueType, err)
	}
	return nil
}

func validateBoolean(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("want boolean, got %T", value)
	}
	return nil
}

func validateScalar(value any) error {
	if _, ok := value.(float64); !ok {
		return fmt.Errorf("want number, got %T", value)
	}
	return nil
}

func numbers(value any, minimum, maximum int) ([]float64, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("want array of numbers, got %T", value)
	}
	if len(list) < minimum || len(list) > maximum {
		return nil, fmt.Errorf("want %d to %d components, got %d", minimum, maximum, len(list))
	}
	result := make([]float64, len(list))
	for i, element := range list {
		number, ok := element.(float64)
		if !ok {
			return nil, fmt.Errorf("component %d: want number, got %T", i, element)
		}
		result[i] = number
	}
	return result, nil
}

func validateColor(value any) error {
	components, err := numbers(value, 3, 4)
	if err != nil {
		return err
	}
	for i, component := range components {
		if component < 0 || component > 1 {
			return fmt.Errorf("component %d: %v outside [0, 1]", i, component)
		}
	}
	return nil
}

func validateVector(value any) error {
	_, err := numbers(value, 2, 3)
	return err
}

func validateImage(value any) error {
	object, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("want object, got %T", value)
	}
	for _, key := range []string{"id", "url"} {
		if field, present := object[key]; present {
			if _, ok := field.(string); !ok {
				return fmt.Errorf("%s: want string, got %T", key, field)
			}
		}
	}
	for _, key := range []string{"width", "height"} {
		if field, present := object[key]; present {
			if number, ok := field.(float64); !ok || number < 0 {
				return fmt.Errorf("%s: want non-negative number, got %v", key, field)
			}
		}
	}
	return nil
}

func validateGradient(value any) error {
	stops, ok := value.([]any)
	if !ok {
		return fmt.Errorf("want array of gradient stops, got %T", value)
	}
	if len(stops) == 0 {
		return fmt.Errorf("gradient has no stops")
	}
	for i, element := range stops {
		stop, ok := element.(map[string]any)
		if !ok {
			return fmt.Errorf("stop %d: want object, got %T", i, element)
		}
		color, present := stop["color"]
		if !present {
			return fmt.Errorf("stop %d: missing color", i)
		}
		if err := validateColor(color); err != nil {
			return fmt.Errorf("stop %d color: %w", i, err)
		}
		if offset, present := stop["offset"]; present {
			number, ok := offset.(float64)
			if !ok || number < 0 || number > 1 {
				return fmt.Errorf("stop %d: offset %v outside [0, 1]", i, offset)
			}
		}
	}
	return nil
}

// compactRaw returns a compacted copy of raw so documents compare equal
// after a marshal round trip. Invalid JSON is returned unchanged for the
// validators to report.
func compactRaw(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var buffer bytes.Buffer
	if err := json.Compact(&buffer, raw); err != nil {
		return json.RawMessage(cloneBytes(raw))
	}
	return json.RawMessage(buffer.Bytes())
}
