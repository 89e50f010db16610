// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// FlagsFromParams returns a flag set bound to params, in declaration
// order. A params value BindFlags rejects is a bug in the command
// definition, so it panics.
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SortFlags = false
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags binds the tagged fields of params, a pointer to a struct,
// to flagSet:
//
//	Output string `flag:"output,o" desc:"container path" default:"out.lottie"`
//
// The flag tag holds the long name and an optional one-letter
// shorthand. Fields without it are skipped. The default tag is parsed
// with the field's type; the supported types are string, bool, int,
// int64, float64, [time.Duration] and []string (comma separated).
// Embedded structs such as [JSONOutput] and [Verbosity] contribute
// their own flags.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Pointer || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStruct(value.Elem(), flagSet)
}

func bindStruct(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	for _, field := range reflect.VisibleFields(structValue.Type()) {
		if len(field.Index) != 1 {
			// Promoted fields are handled when their embedded struct is.
			continue
		}
		fieldValue := structValue.Field(field.Index[0])
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStruct(fieldValue, flagSet); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}

		tag, tagged := field.Tag.Lookup("flag")
		if !tagged || tag == "" {
			continue
		}
		name, shorthand, _ := strings.Cut(tag, ",")
		spec := flagSpec{
			name:         name,
			shorthand:    shorthand,
			usage:        field.Tag.Get("desc"),
			defaultValue: field.Tag.Get("default"),
		}
		if !fieldValue.CanAddr() || !field.IsExported() {
			return fmt.Errorf("field %s: cannot bind an unexported or unaddressable field", field.Name)
		}
		if err := spec.bind(fieldValue.Addr().Interface(), flagSet); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

// flagSpec is one tagged field.
type flagSpec struct {
	name, shorthand, usage, defaultValue string
}

func (s flagSpec) bind(target any, flagSet *pflag.FlagSet) error {
	var err error
	switch target := target.(type) {
	case *string:
		flagSet.StringVarP(target, s.name, s.shorthand, s.defaultValue, s.usage)
	case *bool:
		err = bindParsed(s, flagSet.BoolVarP, target, strconv.ParseBool)
	case *int:
		err = bindParsed(s, flagSet.IntVarP, target, strconv.Atoi)
	case *int64:
		err = bindParsed(s, flagSet.Int64VarP, target, func(text string) (int64, error) {
			return strconv.ParseInt(text, 10, 64)
		})
	case *float64:
		err = bindParsed(s, flagSet.Float64VarP, target, func(text string) (float64, error) {
			return strconv.ParseFloat(text, 64)
		})
	case *time.Duration:
		err = bindParsed(s, flagSet.DurationVarP, target, time.ParseDuration)
	case *[]string:
		err = bindParsed(s, flagSet.StringSliceVarP, target, func(text string) ([]string, error) {
			return strings.Split(text, ","), nil
		})
	default:
		return fmt.Errorf("unsupported type %s for flag --%s", reflect.TypeOf(target).Elem(), s.name)
	}
	return err
}

// bindParsed registers a flag through one of the typed pflag VarP
// functions after parsing its default. An empty default is the zero
// value.
func bindParsed[T any](
	s flagSpec,
	register func(target *T, name, shorthand string, value T, usage string),
	target *T,
	parse func(string) (T, error),
) error {
	var defaultValue T
	if s.defaultValue != "" {
		parsed, err := parse(s.defaultValue)
		if err != nil {
			return fmt.Errorf("default for --%s: %w", s.name, err)
		}
		defaultValue = parsed
	}
	register(target, s.name, s.shorthand, defaultValue, s.usage)
	return nil
}

// Verbosity adds -v/--verbose to a params struct by embedding.
type Verbosity struct {
	Verbose bool `json:"-" flag:"verbose,v" desc:"log build phases at debug level"`
}

// LogLevel implements [LevelSetter].
func (v *Verbosity) LogLevel() slog.Level {
	if v.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
