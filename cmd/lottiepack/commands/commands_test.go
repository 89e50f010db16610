// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/bureau-foundation/lottiepack/cmd/lottiepack/cli"
	"github.com/bureau-foundation/lottiepack/lib/archive"
	"github.com/bureau-foundation/lottiepack/lib/config"
	"github.com/bureau-foundation/lottiepack/lib/dotlottie"
	"github.com/bureau-foundation/lottiepack/lib/lottie"
	"github.com/bureau-foundation/lottiepack/lib/manifest"
	"github.com/bureau-foundation/lottiepack/lib/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const loaderRecipe = `{
  "animations": [
    {"id": "intro", "file": "intro.json", "themes": ["dark"], "initial_theme": "dark"},
    {"id": "outro", "file": "outro.json"},
  ],
  "themes": [
    {"id": "dark", "name": "Dark", "file": "dark.json"},
  ],
  "state_machines": [
    {"id": "clicker", "file": "clicker.json"},
  ],
  "initial": {"animation": "intro"},
}`

// recipeTree writes a recipe whose two animations embed the same image
// and returns the recipe path.
func recipeTree(t *testing.T) string {
	t.Helper()
	logo := testutil.Embedded{ID: "logo", MediaType: "image/png", Data: testutil.SolidPNG(t, testutil.DistinctColor(0))}
	files := map[string][]byte{
		"loader.jsonc": []byte(loaderRecipe),
		"intro.json":   testutil.Animation(t, "intro", logo),
		"outro.json":   testutil.Animation(t, "outro", logo),
		"dark.json":    []byte(`{"rules":[{"id":"bg","type":"Color","value":[0,0,0,1]}]}`),
		"clicker.json": []byte(`{"descriptor":{"id":"clicker","initial":"idle"},"states":[{"name":"idle","type":"PlaybackState"}]}`),
	}
	dir := t.TempDir()
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return filepath.Join(dir, "loader.jsonc")
}

// buildLoader builds the recipe tree into a container and returns its
// bytes.
func buildLoader(t *testing.T, params buildParams) []byte {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")
	recipePath := recipeTree(t)
	if params.Output == "" {
		params.Output = filepath.Join(t.TempDir(), "loader.lottie")
	}
	outputPath, err := runBuild(context.Background(), recipePath, &params, discardLogger())
	if err != nil {
		t.Fatalf("runBuild: %v", err)
	}
	if outputPath != params.Output {
		t.Errorf("output path = %q, want %q", outputPath, params.Output)
	}
	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("reading container: %v", err)
	}
	return data
}

func entryNames(t *testing.T, data []byte) []string {
	t.Helper()
	entries, err := dotlottie.Entries(data)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names
}

func imageEntries(names []string) []string {
	var images []string
	for _, name := range names {
		if strings.HasPrefix(name, lottie.KindImage.Dir()+"/") {
			images = append(images, name)
		}
	}
	return images
}

// rewriteEntries copies a container, replacing the named entries. A nil
// value drops the entry; names not in the container are appended.
func rewriteEntries(t *testing.T, data []byte, changes map[string][]byte) []byte {
	t.Helper()
	reader, err := archive.NewReader(data)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	var buffer bytes.Buffer
	writer := archive.NewWriter(&buffer)
	for _, name := range reader.Names() {
		content, changed := changes[name]
		if !changed {
			if content, err = reader.ReadFile(name); err != nil {
				t.Fatalf("ReadFile(%s): %v", name, err)
			}
		}
		if content == nil {
			continue
		}
		if err := writer.Add(name, content, archive.Options{}); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
	}
	for name, content := range changes {
		if content != nil && !reader.Has(name) {
			if err := writer.Add(name, content, archive.Options{}); err != nil {
				t.Fatalf("Add(%s): %v", name, err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buffer.Bytes()
}

func TestRunBuild(t *testing.T) {
	data := buildLoader(t, buildParams{})

	parsed, err := dotlottie.GetManifest(data)
	if err != nil {
		t.Fatalf("GetManifest: %v", err)
	}
	if parsed.Generation != manifest.GenerationV2 {
		t.Fatalf("generation = %v, want v2", parsed.Generation)
	}
	if got := parsed.AnimationIDs(); !slices.Equal(got, []string{"intro", "outro"}) {
		t.Errorf("animations = %v, want [intro outro]", got)
	}
	if parsed.V2.Initial == nil || parsed.V2.Initial.Animation != "intro" {
		t.Errorf("initial = %+v, want animation intro", parsed.V2.Initial)
	}

	names := entryNames(t, data)
	if names[0] != dotlottie.ManifestPath {
		t.Errorf("first entry = %q, want %s", names[0], dotlottie.ManifestPath)
	}
	if images := imageEntries(names); len(images) != 1 {
		t.Errorf("shared image stored %d times: %v", len(images), images)
	}
}

func TestRunBuild_NoDedup(t *testing.T) {
	data := buildLoader(t, buildParams{NoDedup: true})
	if images := imageEntries(entryNames(t, data)); len(images) != 2 {
		t.Errorf("expected one image per animation with --no-dedup, got %v", images)
	}
}

func TestRunBuild_VersionFlag(t *testing.T) {
	data := buildLoader(t, buildParams{Version: "1"})

	parsed, err := dotlottie.GetManifest(data)
	if err != nil {
		t.Fatalf("GetManifest: %v", err)
	}
	if parsed.Generation != manifest.GenerationV1 {
		t.Fatalf("generation = %v, want v1", parsed.Generation)
	}
	if !slices.Contains(entryNames(t, data), dotlottie.StateMachinePath(manifest.GenerationV1, "clicker")) {
		t.Errorf("state machine not stored under %s/", dotlottie.StatesDir)
	}
}

func TestRunBuild_BadVersionFlag(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	params := buildParams{Version: "3", Output: filepath.Join(t.TempDir(), "out.lottie")}
	_, err := runBuild(context.Background(), recipeTree(t), &params, discardLogger())
	if err == nil || !strings.Contains(err.Error(), "--version") {
		t.Errorf("runBuild() error = %v, want --version error", err)
	}
}

func TestRunBuild_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache", "fingerprints.bin")
	configPath := filepath.Join(dir, "lottiepack.yaml")
	configYAML := "build:\n  version: \"1\"\n  generator: studio-export\ncache:\n  path: " + cachePath + "\n"
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	data := buildLoader(t, buildParams{Config: configPath})

	parsed, err := dotlottie.GetManifest(data)
	if err != nil {
		t.Fatalf("GetManifest: %v", err)
	}
	if parsed.Generation != manifest.GenerationV1 {
		t.Errorf("generation = %v, want v1 from config", parsed.Generation)
	}
	if parsed.Generator() != "studio-export" {
		t.Errorf("generator = %q, want studio-export", parsed.Generator())
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Errorf("fingerprint cache not saved: %v", err)
	}
}

func TestRunBuild_InvalidRecipe(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	dir := t.TempDir()
	recipePath := filepath.Join(dir, "broken.jsonc")
	if err := os.WriteFile(recipePath, []byte(`{"animations": [{"id": "a"}]}`), 0644); err != nil {
		t.Fatalf("writing recipe: %v", err)
	}
	params := buildParams{Output: filepath.Join(dir, "broken.lottie")}
	_, err := runBuild(context.Background(), recipePath, &params, discardLogger())
	if err == nil {
		t.Fatal("runBuild() = nil, want error for recipe without sources")
	}
	if _, statErr := os.Stat(params.Output); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("output written for failed build: %v", statErr)
	}
}

func TestOpenCache_DiscardsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.bin")
	if err := os.WriteFile(path, []byte("not a cache"), 0644); err != nil {
		t.Fatalf("writing cache: %v", err)
	}
	cache := openCache(path, discardLogger())
	if cache == nil || cache.Len() != 0 {
		t.Fatalf("openCache() = %v, want a fresh cache", cache)
	}
	if openCache("", discardLogger()) != nil {
		t.Error("openCache(\"\") should disable caching")
	}
}

func TestInspect_JSON(t *testing.T) {
	data := buildLoader(t, buildParams{})

	var output bytes.Buffer
	params := inspectParams{Check: true}
	params.OutputJSON = true
	if err := inspect(&output, false, data, &params); err != nil {
		t.Fatalf("inspect: %v", err)
	}

	var result summary
	if err := json.Unmarshal(output.Bytes(), &result); err != nil {
		t.Fatalf("decoding inspect output: %v\n%s", err, output.String())
	}
	if result.Generation != "v2" {
		t.Errorf("generation = %q, want v2", result.Generation)
	}
	if !slices.Equal(result.Themes, []string{"dark"}) || !slices.Equal(result.StateMachines, []string{"clicker"}) {
		t.Errorf("themes = %v, state machines = %v", result.Themes, result.StateMachines)
	}
	if len(result.Problems) != 0 {
		t.Errorf("unexpected problems: %v", result.Problems)
	}
	if len(result.Entries) == 0 || result.Entries[0].Name != dotlottie.ManifestPath {
		t.Errorf("entries = %v", result.Entries)
	}
}

func TestInspect_Text(t *testing.T) {
	data := buildLoader(t, buildParams{})

	var output bytes.Buffer
	if err := inspect(&output, false, data, &inspectParams{Check: true}); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"dotLottie v2", "intro, outro", "dark", "animation intro", "manifest.json", "check passed"} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("output missing %q:\n%s", want, output.String())
		}
	}
}

func TestInspect_Manifest(t *testing.T) {
	data := buildLoader(t, buildParams{})

	var output bytes.Buffer
	if err := inspect(&output, false, data, &inspectParams{Manifest: true}); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	parsed, err := manifest.Parse(output.Bytes())
	if err != nil {
		t.Fatalf("printed manifest does not parse: %v\n%s", err, output.String())
	}
	if parsed.Generation != manifest.GenerationV2 {
		t.Errorf("generation = %v, want v2", parsed.Generation)
	}
}

func TestInspect_CheckFindsProblems(t *testing.T) {
	data := buildLoader(t, buildParams{})

	// Drop the theme entry and add an animation the manifest does not
	// list.
	container, err := dotlottie.FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	broken := rewriteEntries(t, data, map[string][]byte{
		dotlottie.ThemePath(manifest.GenerationV2, container.Theme("dark")): nil,
		dotlottie.AnimationPath("stray"):                                    testutil.Animation(t, "stray"),
	})

	var output bytes.Buffer
	params := inspectParams{Check: true}
	params.OutputJSON = true
	err = inspect(&output, false, broken, &params)
	var exitError *cli.ExitError
	if !errors.As(err, &exitError) || exitError.Code != 1 {
		t.Fatalf("inspect() error = %v, want exit code 1", err)
	}

	var result summary
	if err := json.Unmarshal(output.Bytes(), &result); err != nil {
		t.Fatalf("decoding inspect output: %v", err)
	}
	joined := strings.Join(result.Problems, "\n")
	for _, want := range []string{`theme "dark"`, "animations/stray.json is not listed"} {
		if !strings.Contains(joined, want) {
			t.Errorf("problems missing %q:\n%s", want, joined)
		}
	}
}

func TestExtract(t *testing.T) {
	data := buildLoader(t, buildParams{})

	animation, err := extract(data, "animation", "intro", false)
	if err != nil {
		t.Fatalf("extract animation: %v", err)
	}
	if bytes.Contains(animation, []byte("data:image/png")) {
		t.Error("stored animation still embeds its image")
	}

	inlined, err := extract(data, "animation", "intro", true)
	if err != nil {
		t.Fatalf("extract --inline: %v", err)
	}
	if !bytes.Contains(inlined, []byte("data:image/png")) {
		t.Error("--inline did not embed the image")
	}

	theme, err := extract(data, "theme", "dark", false)
	if err != nil {
		t.Fatalf("extract theme: %v", err)
	}
	if !bytes.Contains(theme, []byte(`"rules"`)) {
		t.Errorf("theme = %s, want a rules document", theme)
	}

	if _, err := extract(data, "state_machine", "clicker", false); err != nil {
		t.Errorf("extract state machine: %v", err)
	}

	images := imageEntries(entryNames(t, data))
	if len(images) != 1 {
		t.Fatalf("expected one image entry, got %v", images)
	}
	id := strings.TrimSuffix(filepath.Base(images[0]), filepath.Ext(images[0]))
	image, err := extract(data, "image", id, false)
	if err != nil {
		t.Fatalf("extract image %s: %v", id, err)
	}
	if !bytes.Equal(image, testutil.SolidPNG(t, testutil.DistinctColor(0))) {
		t.Error("extracted image differs from the embedded payload")
	}
}

func TestExtract_Errors(t *testing.T) {
	data := buildLoader(t, buildParams{})

	if _, err := extract(data, "animation", "missing", false); !errors.Is(err, lottie.ErrAssetNotFound) {
		t.Errorf("missing animation: error = %v, want ErrAssetNotFound", err)
	}
	_, err := extract(data, "video", "intro", false)
	if err == nil || !strings.Contains(err.Error(), "state_machine") {
		t.Errorf("unknown kind: error = %v, want list of kinds", err)
	}
}

func TestUnpack(t *testing.T) {
	data := buildLoader(t, buildParams{})
	dir := filepath.Join(t.TempDir(), "loader")

	written, err := unpack(data, dir, false)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	names := entryNames(t, data)
	if written != len(names) {
		t.Errorf("wrote %d entries, want %d", written, len(names))
	}
	manifestData, err := os.ReadFile(filepath.Join(dir, dotlottie.ManifestPath))
	if err != nil {
		t.Fatalf("reading unpacked manifest: %v", err)
	}
	if _, err := manifest.Parse(manifestData); err != nil {
		t.Errorf("unpacked manifest does not parse: %v", err)
	}

	if _, err := unpack(data, dir, false); err == nil || !strings.Contains(err.Error(), "--force") {
		t.Errorf("second unpack error = %v, want refusal to overwrite", err)
	}
	if _, err := unpack(data, dir, true); err != nil {
		t.Errorf("unpack --force: %v", err)
	}
}

func TestEntryTarget(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		entry   string
		wantErr bool
	}{
		{name: "manifest", entry: "manifest.json"},
		{name: "nested", entry: "images/image_0.png"},
		{name: "parent", entry: "../escape.json", wantErr: true},
		{name: "nested parent", entry: "images/../../escape.json", wantErr: true},
		{name: "absolute", entry: "/etc/passwd", wantErr: true},
		{name: "backslash", entry: `..\escape.json`, wantErr: true},
		{name: "empty", entry: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := entryTarget(dir, tt.entry)
			if tt.wantErr {
				if err == nil {
					t.Errorf("entryTarget(%q) = %q, want error", tt.entry, target)
				}
				return
			}
			if err != nil {
				t.Fatalf("entryTarget(%q): %v", tt.entry, err)
			}
			if !strings.HasPrefix(target, dir+string(filepath.Separator)) {
				t.Errorf("entryTarget(%q) = %q, not under %q", tt.entry, target, dir)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.size); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.lottie")
	if err := writeFileAtomic(path, []byte("first")); err != nil {
		t.Fatalf("writeFileAtomic: %v", err)
	}
	if err := writeFileAtomic(path, []byte("second")); err != nil {
		t.Fatalf("writeFileAtomic overwrite: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil || string(content) != "second" {
		t.Errorf("content = %q (%v), want second", content, err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestRoot_Subcommands(t *testing.T) {
	root := Root()
	var names []string
	for _, command := range root.Subcommands {
		names = append(names, command.Name)
	}
	if !slices.Equal(names, []string{"build", "inspect", "extract", "unpack", "version"}) {
		t.Errorf("subcommands = %v", names)
	}
}
