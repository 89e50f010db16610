// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

const v1Document = `{
  "version": "1",
  "generator": "@lottiefiles/dotlottie-js",
  "author": "LottieFiles",
  "activeAnimationId": "wave",
  "animations": [
    {"id": "wave", "speed": 1, "loop": true, "autoplay": true, "direction": 1, "playMode": "normal"},
    {"id": "bounce", "speed": 2, "loop": false, "autoplay": false, "direction": -1, "playMode": "bounce", "hover": true}
  ],
  "themes": [{"id": "dark", "animations": ["wave"]}],
  "states": ["toggle"]
}`

const v2Document = `{
  "version": "2",
  "generator": "lottiepack",
  "initial": {"animation": "wave", "stateMachine": "toggle"},
  "animations": [
    {"id": "wave", "initialTheme": "dark", "themes": ["dark", "light"]},
    {"id": "bounce", "background": "#000000"}
  ],
  "themes": [{"id": "dark", "name": "Dark"}, {"id": "light"}],
  "stateMachines": [{"id": "toggle"}],
  "globalInputs": [{"id": "vars"}]
}`

func TestParseV2(t *testing.T) {
	manifest, err := Parse([]byte(v2Document))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if manifest.Generation != GenerationV2 || manifest.V2 == nil || manifest.V1 != nil {
		t.Fatalf("Parse returned generation %v", manifest.Generation)
	}
	if got := manifest.AnimationIDs(); !reflect.DeepEqual(got, []string{"wave", "bounce"}) {
		t.Errorf("AnimationIDs() = %v", got)
	}
	if got := manifest.ThemeIDs(); !reflect.DeepEqual(got, []string{"dark", "light"}) {
		t.Errorf("ThemeIDs() = %v", got)
	}
	if got := manifest.GlobalInputIDs(); !reflect.DeepEqual(got, []string{"vars"}) {
		t.Errorf("GlobalInputIDs() = %v", got)
	}
}

func TestV1ValidatesOnlyAsV1(t *testing.T) {
	if _, err := DecodeV1([]byte(v1Document)); err != nil {
		t.Fatalf("DecodeV1: %v", err)
	}
	if _, err := DecodeV2([]byte(v1Document)); !errors.Is(err, lottie.ErrSchemaViolation) {
		t.Fatalf("DecodeV2 on a v1 document = %v, want ErrSchemaViolation", err)
	}

	// The reader still gets a usable manifest through the fallback.
	manifest, err := Parse([]byte(v1Document))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if manifest.Generation != GenerationV1 {
		t.Fatalf("Generation = %v, want v1", manifest.Generation)
	}
	if got := manifest.StateMachineIDs(); !reflect.DeepEqual(got, []string{"toggle"}) {
		t.Errorf("StateMachineIDs() = %v", got)
	}
	if manifest.GlobalInputIDs() != nil {
		t.Errorf("v1 manifest reported global inputs")
	}
	if manifest.Generator() != "@lottiefiles/dotlottie-js" {
		t.Errorf("Generator() = %q", manifest.Generator())
	}
}

func TestDecodeV1Lenient(t *testing.T) {
	tests := []struct {
		name     string
		document string
		want     lottie.Playback
		theme    string
	}{
		{
			name:     "minimal",
			document: `{"version":"1","generator":"g","animations":[{"id":"a"}]}`,
			want:     lottie.DefaultPlayback(),
		},
		{
			name:     "default theme",
			document: `{"version":"1.0","generator":"g","animations":[{"id":"a","defaultTheme":"dark"}],"themes":[{"id":"dark","animations":["a"]}]}`,
			want:     lottie.DefaultPlayback(),
			theme:    "dark",
		},
		{
			name:     "numeric loop",
			document: `{"version":"1","generator":"g","animations":[{"id":"a","loop":3,"speed":1.5}]}`,
			want:     lottie.Playback{Speed: 1.5, Loop: true, LoopCount: 3, Direction: 1, PlayMode: "normal"},
		},
		{
			name:     "zero loop",
			document: `{"version":"1","generator":"g","animations":[{"id":"a","loop":0,"direction":-1}]}`,
			want:     lottie.Playback{Speed: 1, Direction: -1, PlayMode: "normal"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			manifest, err := Parse([]byte(test.document))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if manifest.Generation != GenerationV1 {
				t.Fatalf("Generation = %v, want v1", manifest.Generation)
			}
			animation := manifest.V1.Animations[0]
			if got := animation.Playback(); got != test.want {
				t.Errorf("Playback() = %+v, want %+v", got, test.want)
			}
			if animation.DefaultTheme != test.theme {
				t.Errorf("DefaultTheme = %q, want %q", animation.DefaultTheme, test.theme)
			}
		})
	}
}

func TestDecodeV1RejectsBadLoop(t *testing.T) {
	for _, loop := range []string{`-1`, `1.5`, `"yes"`} {
		document := `{"version":"1","generator":"g","animations":[{"id":"a","loop":` + loop + `}]}`
		if _, err := DecodeV1([]byte(document)); !errors.Is(err, lottie.ErrSchemaViolation) {
			t.Errorf("loop %s: DecodeV1 = %v, want ErrSchemaViolation", loop, err)
		}
	}
}

func TestLoopMarshal(t *testing.T) {
	for _, test := range []struct {
		loop Loop
		want string
	}{
		{Loop{}, "false"},
		{Loop{Enabled: true}, "true"},
		{Loop{Enabled: true, Count: 4}, "4"},
	} {
		data, err := json.Marshal(test.loop)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != test.want {
			t.Errorf("Marshal(%+v) = %s, want %s", test.loop, data, test.want)
		}
	}
}

func TestV2FailsV1(t *testing.T) {
	if _, err := DecodeV1([]byte(v2Document)); !errors.Is(err, lottie.ErrSchemaViolation) {
		t.Fatalf("DecodeV1 on a v2 document = %v, want ErrSchemaViolation", err)
	}
}

func TestParseRejectsBoth(t *testing.T) {
	tests := map[string]string{
		"not json":       `manifest`,
		"array":          `[]`,
		"no animations":  `{"version":"2","generator":"x","animations":[]}`,
		"wrong version":  `{"version":"3","generator":"x","animations":[{"id":"a"}]}`,
		"trailing data":  `{"version":"2","generator":"x","animations":[{"id":"a"}]} {}`,
		"unknown field":  `{"version":"2","generator":"x","animations":[{"id":"a"}],"extra":1}`,
		"bad identifier": `{"version":"2","generator":"x","animations":[{"id":"../a"}]}`,
	}
	for name, document := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(document))
			if !errors.Is(err, lottie.ErrSchemaViolation) {
				t.Fatalf("Parse = %v, want ErrSchemaViolation", err)
			}
			if _, ok := AsValidations(err); !ok {
				t.Errorf("error %v carries no validations", err)
			}
		})
	}
}

func TestV2Validate(t *testing.T) {
	tests := []struct {
		name     string
		manifest V2
		code     Code
		path     string
	}{
		{
			name: "dangling initial theme",
			manifest: V2{Version: "2", Generator: "g",
				Animations: []V2Animation{{ID: "a", InitialTheme: "missing"}}},
			code: CodeDanglingReference,
			path: "animations[0].initialTheme",
		},
		{
			name: "dangling initial animation",
			manifest: V2{Version: "2", Generator: "g",
				Initial:    &Initial{Animation: "b"},
				Animations: []V2Animation{{ID: "a"}}},
			code: CodeDanglingReference,
			path: "initial.animation",
		},
		{
			name: "duplicate theme",
			manifest: V2{Version: "2", Generator: "g",
				Animations: []V2Animation{{ID: "a"}},
				Themes:     []Entry{{ID: "t"}, {ID: "t"}}},
			code: CodeDuplicateID,
			path: "themes[1].id",
		},
		{
			name:     "missing generator",
			manifest: V2{Version: "2", Animations: []V2Animation{{ID: "a"}}},
			code:     CodeRequired,
			path:     "generator",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			validations, ok := AsValidations(test.manifest.Validate())
			if !ok {
				t.Fatal("Validate returned no validations")
			}
			for _, validation := range validations {
				if validation.Code == test.code && validation.Path == test.path {
					return
				}
			}
			t.Errorf("no %s at %s in %v", test.code, test.path, validations)
		})
	}
}

func TestV1Validate(t *testing.T) {
	manifest := V1{
		Version:   "1",
		Generator: "g",
		Animations: []V1Animation{
			{ID: "a", Speed: ptr(0.0), Direction: ptr(2), PlayMode: "reverse", DefaultTheme: "missing"},
		},
		Themes: []V1Theme{{ID: "t", Animations: []string{"b"}}},
	}
	validations, ok := AsValidations(manifest.Validate())
	if !ok {
		t.Fatal("Validate accepted an invalid manifest")
	}
	paths := make(map[string]bool)
	for _, validation := range validations {
		paths[validation.Path] = true
	}
	for _, want := range []string{
		"animations[0].speed",
		"animations[0].direction",
		"animations[0].playMode",
		"animations[0].defaultTheme",
		"themes[0].animations[0]",
	} {
		if !paths[want] {
			t.Errorf("missing validation at %s (got %v)", want, validations)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	original, err := DecodeV2([]byte(v2Document))
	if err != nil {
		t.Fatal(err)
	}
	data, err := original.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeV2(data)
	if err != nil {
		t.Fatalf("DecodeV2(Marshal()): %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip changed the manifest:\n%+v\n%+v", original, decoded)
	}

	invalid := &V2{Version: "2"}
	if _, err := invalid.Marshal(); !errors.Is(err, lottie.ErrSchemaViolation) {
		t.Errorf("Marshal of invalid manifest = %v", err)
	}
}

func TestValidationListError(t *testing.T) {
	list := ValidationList{
		{Code: CodeRequired, Path: "generator", Message: "generator is required"},
		{Code: CodeVersion, Path: "version", Message: "bad"},
	}
	message := list.Error()
	if !strings.Contains(message, "[manifest-required] generator is required at generator") ||
		!strings.Contains(message, "and 1 more") {
		t.Errorf("Error() = %q", message)
	}
}

func TestParseGeneration(t *testing.T) {
	for input, want := range map[string]Generation{"1": GenerationV1, "v1": GenerationV1, "2": GenerationV2, "v2": GenerationV2} {
		got, err := ParseGeneration(input)
		if err != nil || got != want {
			t.Errorf("ParseGeneration(%q) = %v, %v", input, got, err)
		}
	}
	if _, err := ParseGeneration("3"); err == nil {
		t.Error("ParseGeneration(3) succeeded")
	}
}

func ptr[T any](value T) *T { return &value }
