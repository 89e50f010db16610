// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recipe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/lottiepack/lib/dotlottie"
	"github.com/bureau-foundation/lottiepack/lib/lottie"
	"github.com/bureau-foundation/lottiepack/lib/manifest"
	"github.com/bureau-foundation/lottiepack/lib/testutil"
)

// writeTree writes files under a temporary directory and returns it.
func writeTree(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("creating %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
	return dir
}

const fullRecipe = `{
  // Two animations sharing one theme.
  "animations": [
    {
      "id": "intro",
      "file": "intro.json",
      "themes": ["dark"],
      "initial_theme": "dark",
      "background": "#000000",
      "state_machines": ["clicker"],
      "global_inputs": ["controls"],
      "zip": {"level": 9},
    },
    {"id": "outro", "file": "animations/outro.json"},
  ],
  "themes": [
    {"id": "dark", "name": "Dark", "file": "themes/dark.json"},
  ],
  "assets": [
    /* A logo no animation embeds. */
    {"kind": "image", "id": "logo", "file": "logo.png", "animations": ["outro"]},
  ],
  "state_machines": [
    {"id": "clicker", "name": "Clicker", "file": "clicker.json"},
  ],
  "global_inputs": [
    {"id": "controls", "file": "controls.json"},
  ],
  "initial": {"animation": "intro", "state_machine": "clicker"},
}`

func fullTree(t *testing.T) string {
	t.Helper()
	return writeTree(t, map[string][]byte{
		"recipe.jsonc": []byte(fullRecipe),
		"intro.json": testutil.Animation(t, "intro", testutil.Embedded{
			ID: "image_a", MediaType: "image/png", Data: testutil.SolidPNG(t, testutil.DistinctColor(0)),
		}),
		"animations/outro.json": testutil.Animation(t, "outro"),
		"themes/dark.json":      []byte(`{"rules":[{"id":"bg","type":"Color","value":[0,0,0,1]}]}`),
		"logo.png":              testutil.SolidPNG(t, testutil.DistinctColor(1)),
		"clicker.json":          []byte(`{"descriptor":{"id":"clicker","initial":"idle"},"states":[{"name":"idle","type":"PlaybackState"}]}`),
		"controls.json":         []byte(`{"dark_mode":{"type":"Boolean","value":true}}`),
	})
}

func TestParse(t *testing.T) {
	recipe, err := Parse([]byte(fullRecipe))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recipe.Animations) != 2 {
		t.Fatalf("expected 2 animations, got %d", len(recipe.Animations))
	}
	if recipe.Animations[0].Zip.Level != 9 {
		t.Errorf("expected intro zip level 9, got %d", recipe.Animations[0].Zip.Level)
	}
	if recipe.Assets[0].Kind != "image" || recipe.Assets[0].File != "logo.png" {
		t.Errorf("unexpected asset %+v", recipe.Assets[0])
	}
	if recipe.Initial.StateMachine != "clicker" {
		t.Errorf("expected initial state machine clicker, got %q", recipe.Initial.StateMachine)
	}
	if issues := Validate(recipe); len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"animations": [{"id": "a", "file": "a.json", "theme": "dark"}]}`))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
	if !strings.Contains(err.Error(), "theme") {
		t.Errorf("error does not name the field: %v", err)
	}
}

func TestPlaybackDefaults(t *testing.T) {
	recipe, err := Parse([]byte(`{"animations": [{"id": "a", "file": "a.json", "playback": {"loop": true}}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	playback := recipe.Animations[0].Playback
	if playback == nil {
		t.Fatal("expected playback")
	}
	if !playback.Loop || playback.Speed != 1 || playback.Direction != 1 || playback.PlayMode != "normal" {
		t.Errorf("expected defaults under loop=true, got %+v", *playback)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name           string
		recipe         string
		wantSubstrings []string
	}{
		{
			name:           "no animations",
			recipe:         `{"animations": []}`,
			wantSubstrings: []string{"no animations"},
		},
		{
			name:           "animation without source",
			recipe:         `{"animations": [{"id": "a"}]}`,
			wantSubstrings: []string{`animations[0] "a": exactly one of file or url`},
		},
		{
			name:           "animation with two sources",
			recipe:         `{"animations": [{"id": "a", "file": "a.json", "url": "https://example.com/a.json"}]}`,
			wantSubstrings: []string{"exactly one of file or url"},
		},
		{
			name:           "duplicate animation ids",
			recipe:         `{"animations": [{"id": "a", "file": "a.json"}, {"id": "a", "file": "b.json"}]}`,
			wantSubstrings: []string{"duplicate id (first used at animations[0])"},
		},
		{
			name:           "invalid id",
			recipe:         `{"animations": [{"id": "a/b", "file": "a.json"}]}`,
			wantSubstrings: []string{"animations[0]"},
		},
		{
			name: "unknown asset kind",
			recipe: `{"animations": [{"id": "a", "file": "a.json"}],
				"assets": [{"kind": "video", "id": "v", "file": "v.mp4"}]}`,
			wantSubstrings: []string{`unknown asset kind "video"`},
		},
		{
			name: "same asset id in different kinds",
			recipe: `{"animations": [{"id": "a", "file": "a.json"}],
				"assets": [{"kind": "image", "id": "x", "file": "x.png"}, {"kind": "audio", "id": "x", "file": "x.mp3"}]}`,
		},
		{
			name: "state machine without file",
			recipe: `{"animations": [{"id": "a", "file": "a.json"}],
				"state_machines": [{"id": "s"}]}`,
			wantSubstrings: []string{"state_machines[0]", "file is required"},
		},
		{
			name:           "bad playback",
			recipe:         `{"animations": [{"id": "a", "file": "a.json", "playback": {"direction": 0, "play_mode": "reverse"}}]}`,
			wantSubstrings: []string{"direction must be 1 or -1", "play_mode must be normal or bounce"},
		},
		{
			name:           "zip level out of range",
			recipe:         `{"animations": [{"id": "a", "file": "a.json", "zip": {"level": 15}}]}`,
			wantSubstrings: []string{"animations[0]: zip"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipe, err := Parse([]byte(tt.recipe))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			issues := Validate(recipe)
			if len(tt.wantSubstrings) == 0 {
				if len(issues) != 0 {
					t.Errorf("expected no issues, got %v", issues)
				}
				return
			}
			joined := strings.Join(issues, "\n")
			for _, want := range tt.wantSubstrings {
				if !strings.Contains(joined, want) {
					t.Errorf("issues %q do not mention %q", joined, want)
				}
			}
		})
	}
}

func TestContainer(t *testing.T) {
	dir := fullTree(t)
	recipe, err := ReadFile(filepath.Join(dir, "recipe.jsonc"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	container, err := recipe.Container(dir)
	if err != nil {
		t.Fatalf("Container: %v", err)
	}

	intro := container.Animation("intro")
	if intro == nil {
		t.Fatal("intro not added")
	}
	if intro.InitialTheme() != "dark" || intro.Background() != "#000000" {
		t.Errorf("intro settings not applied: theme %q background %q", intro.InitialTheme(), intro.Background())
	}
	if intro.Zip().Level != 9 {
		t.Errorf("expected intro zip level 9, got %d", intro.Zip().Level)
	}
	if theme := container.Theme("dark"); theme == nil || theme.Name() != "Dark" {
		t.Errorf("expected theme dark named Dark, got %v", theme)
	}
	logo := container.Asset(lottie.KindImage, "logo")
	if logo == nil {
		t.Fatal("logo not added")
	}
	if parents := logo.ParentAnimations(); len(parents) != 1 || parents[0] != "outro" {
		t.Errorf("expected logo parents [outro], got %v", parents)
	}
	if stateMachine := container.StateMachine("clicker"); stateMachine == nil || stateMachine.Name() != "Clicker" {
		t.Errorf("expected state machine clicker named Clicker, got %v", stateMachine)
	}
	if container.GlobalInput("controls") == nil {
		t.Error("global inputs controls not added")
	}
	if initial := container.Initial(); initial.Animation != "intro" || initial.StateMachine != "clicker" {
		t.Errorf("unexpected initial %+v", initial)
	}

	data, err := container.Build(context.Background(), dotlottie.BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	parsed, err := dotlottie.GetManifest(data)
	if err != nil {
		t.Fatalf("GetManifest: %v", err)
	}
	if parsed.Generation != manifest.GenerationV2 {
		t.Errorf("expected a second generation manifest, got %s", parsed.Generation)
	}
	if len(parsed.V2.Animations) != 2 || len(parsed.V2.Themes) != 1 {
		t.Errorf("expected 2 animations and 1 theme, got %d and %d", len(parsed.V2.Animations), len(parsed.V2.Themes))
	}
	if _, err := dotlottie.GetImage(data, "logo"); err != nil {
		t.Errorf("GetImage(logo): %v", err)
	}
}

func TestContainerInvalid(t *testing.T) {
	recipe, err := Parse([]byte(`{"animations": [{"id": "a"}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = recipe.Container(t.TempDir())
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestContainerMissingFile(t *testing.T) {
	recipe, err := Parse([]byte(`{"animations": [{"id": "a", "file": "missing.json"}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = recipe.Container(t.TempDir())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
	if !strings.Contains(err.Error(), `animation "a"`) {
		t.Errorf("error does not name the animation: %v", err)
	}
}

func TestContainerURLSources(t *testing.T) {
	recipe, err := Parse([]byte(`{
		"animations": [{"id": "a", "url": "https://cdn.example.com/a.json"}],
		"themes": [{"id": "t", "url": "https://cdn.example.com/t.json", "animations": ["a"]}],
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	container, err := recipe.Container("")
	if err != nil {
		t.Fatalf("Container: %v", err)
	}
	if url := container.Animation("a").URL(); url != "https://cdn.example.com/a.json" {
		t.Errorf("expected animation url kept, got %q", url)
	}
	theme := container.Theme("t")
	if theme.URL() != "https://cdn.example.com/t.json" {
		t.Errorf("expected theme url kept, got %q", theme.URL())
	}
	if scope := theme.Animations(); len(scope) != 1 || scope[0] != "a" {
		t.Errorf("expected theme scope [a], got %v", scope)
	}
}

func TestStylesheetTheme(t *testing.T) {
	dir := writeTree(t, map[string][]byte{
		"a.json":     testutil.Animation(t, "a"),
		"legacy.lss": []byte("FillShape { fill-color: #ff0000; }\n"),
	})
	recipe, err := Parse([]byte(`{
		"animations": [{"id": "a", "file": "a.json", "themes": ["legacy"]}],
		"themes": [{"id": "legacy", "file": "legacy.lss"}],
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	container, err := recipe.Container(dir)
	if err != nil {
		t.Fatalf("Container: %v", err)
	}
	if !container.Theme("legacy").IsStylesheet() {
		t.Error("expected a stylesheet theme")
	}
}

func TestNameFromPath(t *testing.T) {
	if name := NameFromPath("recipes/loader.jsonc"); name != "loader" {
		t.Errorf("NameFromPath = %q, want loader", name)
	}
}
