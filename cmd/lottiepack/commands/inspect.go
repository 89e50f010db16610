// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/lottiepack/cmd/lottiepack/cli"
	"github.com/bureau-foundation/lottiepack/lib/assetref"
	"github.com/bureau-foundation/lottiepack/lib/dotlottie"
	"github.com/bureau-foundation/lottiepack/lib/manifest"
)

type inspectParams struct {
	cli.JSONOutput
	Manifest bool `json:"manifest" flag:"manifest" desc:"print manifest.json instead of the summary"`
	Check    bool `json:"check"    flag:"check"    desc:"verify every manifest entry and asset reference resolves; exit 1 on problems"`
}

func inspectCommand() *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Describe a container",
		Description: `Print the manifest generation, the documents a container holds and
its archive entries with their sizes. Only the central directory and
the manifest are read, plus the animation and theme entries when
--check is given.

With --check, every id the manifest lists must have its entry, every
asset an animation or theme refers to must exist, and every document
entry must be listed in the manifest. Problems are printed and the
command exits with status 1.`,
		Usage: "lottiepack inspect <file.lottie> [flags]",
		Examples: []cli.Example{
			{
				Description: "Summarize a container",
				Command:     "lottiepack inspect loader.lottie",
			},
			{
				Description: "Validate a container in CI",
				Command:     "lottiepack inspect loader.lottie --check --json",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("inspect requires exactly one container path, got %d arguments", len(args))
			}
			data, err := readArchive(args[0])
			if err != nil {
				return err
			}
			return inspect(os.Stdout, cli.IsTerminal(os.Stdout), data, &params)
		},
	}
}

// summary is the --json form of inspect.
type summary struct {
	Generation    string            `json:"generation"`
	Generator     string            `json:"generator"`
	Initial       *manifest.Initial `json:"initial,omitempty"`
	Animations    []string          `json:"animations"`
	Themes        []string          `json:"themes"`
	StateMachines []string          `json:"state_machines"`
	GlobalInputs  []string          `json:"global_inputs"`
	Entries       []dotlottie.Entry `json:"entries"`
	Problems      []string          `json:"problems,omitempty"`
}

func inspect(w io.Writer, styled bool, data []byte, params *inspectParams) error {
	archive, err := dotlottie.Open(data, dotlottie.OpenOptions{})
	if err != nil {
		return err
	}

	if params.Manifest {
		manifestData, err := archive.ReadEntry(dotlottie.ManifestPath)
		if err != nil {
			return err
		}
		return writeHighlighted(w, styled, manifestData)
	}

	result := summarize(archive)
	if params.Check {
		result.Problems = check(archive)
	}

	if done, err := params.EmitJSON(w, result); done {
		if err != nil {
			return err
		}
	} else {
		renderSummary(w, styled, result, params.Check)
	}

	if params.Check && len(result.Problems) > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func summarize(archive *dotlottie.Archive) summary {
	parsed := archive.Manifest()
	result := summary{
		Generation:    parsed.Generation.String(),
		Generator:     parsed.Generator(),
		Animations:    parsed.AnimationIDs(),
		Themes:        parsed.ThemeIDs(),
		StateMachines: parsed.StateMachineIDs(),
		GlobalInputs:  parsed.GlobalInputIDs(),
		Entries:       archive.Entries(),
	}
	if parsed.V2 != nil {
		result.Initial = parsed.V2.Initial
	} else if active := parsed.V1.ActiveAnimationID; active != "" {
		result.Initial = &manifest.Initial{Animation: active}
	}
	return result
}

// check lists every unresolved manifest id, dangling asset reference
// and unlisted document entry.
func check(archive *dotlottie.Archive) []string {
	var problems []string
	problem := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	present := make(map[string]bool)
	for _, entry := range archive.Entries() {
		present[entry.Name] = true
	}
	listed := map[string]bool{dotlottie.ManifestPath: true}

	result := summarize(archive)
	generation := archive.Generation()

	for _, id := range result.Animations {
		entryPath := dotlottie.AnimationPath(id)
		listed[entryPath] = true
		if !present[entryPath] {
			problem("animation %q: missing %s", id, entryPath)
			continue
		}
		document, err := archive.ReadEntry(entryPath)
		if err != nil {
			problem("animation %q: %v", id, err)
			continue
		}
		for _, reference := range assetref.References(document) {
			if !present[reference] {
				problem("animation %q: refers to missing %s", id, reference)
			}
		}
	}

	for _, id := range result.Themes {
		theme, err := archive.Theme(id, dotlottie.GetOptions{})
		if err != nil {
			problem("theme %q: %v", id, err)
			continue
		}
		listed[dotlottie.ThemePath(generation, theme)] = true
		for _, reference := range assetref.ThemeReferences(theme) {
			if !present[reference] {
				problem("theme %q: refers to missing %s", id, reference)
			}
		}
	}

	for _, id := range result.StateMachines {
		entryPath := dotlottie.StateMachinePath(generation, id)
		listed[entryPath] = true
		if !present[entryPath] {
			problem("state machine %q: missing %s", id, entryPath)
		}
	}

	for _, id := range result.GlobalInputs {
		entryPath := dotlottie.GlobalInputsPath(id)
		listed[entryPath] = true
		if !present[entryPath] {
			problem("global inputs %q: missing %s", id, entryPath)
		}
	}

	documentDirs := []string{
		dotlottie.AnimationsDir,
		dotlottie.ThemesDir,
		dotlottie.StateMachineDir(generation),
		dotlottie.GlobalInputsDir,
	}
	for _, entry := range result.Entries {
		directory := path.Dir(entry.Name)
		for _, documentDir := range documentDirs {
			if directory == documentDir && !listed[entry.Name] {
				problem("entry %s is not listed in the manifest", entry.Name)
			}
		}
	}
	return problems
}

func renderSummary(w io.Writer, styled bool, result summary, checked bool) {
	profile := termenv.Ascii
	if styled {
		profile = termenv.ANSI256
	}
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	titleStyle := renderer.NewStyle().Bold(true)
	labelStyle := renderer.NewStyle().Foreground(lipgloss.Color("8")).Width(16)
	sizeStyle := renderer.NewStyle().Foreground(lipgloss.Color("8")).Width(10).Align(lipgloss.Right)
	goodStyle := renderer.NewStyle().Foreground(lipgloss.Color("2"))
	badStyle := renderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("dotLottie %s", result.Generation)))
	row := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(w, "  %s%s\n", labelStyle.Render(label), value)
	}
	row("generator", result.Generator)
	row("animations", strings.Join(result.Animations, ", "))
	row("themes", strings.Join(result.Themes, ", "))
	row("state machines", strings.Join(result.StateMachines, ", "))
	if result.Generation == manifest.GenerationV2.String() {
		row("global inputs", strings.Join(result.GlobalInputs, ", "))
	}
	if initial := result.Initial; initial != nil {
		var parts []string
		for _, part := range []struct{ label, id string }{
			{"animation", initial.Animation},
			{"state machine", initial.StateMachine},
			{"global inputs", initial.GlobalInputs},
		} {
			if part.id != "" {
				parts = append(parts, part.label+" "+part.id)
			}
		}
		row("initial", strings.Join(parts, ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d entries", len(result.Entries))))
	var total int64
	for _, entry := range result.Entries {
		total += entry.Size
		fmt.Fprintf(w, "  %s  %s\n", sizeStyle.Render(formatSize(entry.Size)), entry.Name)
	}
	fmt.Fprintf(w, "  %s  total\n", sizeStyle.Render(formatSize(total)))

	if !checked {
		return
	}
	fmt.Fprintln(w)
	if len(result.Problems) == 0 {
		fmt.Fprintln(w, goodStyle.Render("check passed"))
		return
	}
	fmt.Fprintln(w, badStyle.Render(fmt.Sprintf("%d problems", len(result.Problems))))
	for _, problem := range result.Problems {
		fmt.Fprintf(w, "  %s\n", problem)
	}
}

// writeHighlighted writes JSON, syntax highlighted when styled.
func writeHighlighted(w io.Writer, styled bool, data []byte) error {
	text := string(data)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if styled {
		if err := quick.Highlight(w, text, "json", "terminal256", "monokai"); err == nil {
			return nil
		}
	}
	_, err := io.WriteString(w, text)
	return err
}

// formatSize renders a byte count with a binary unit.
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	divisor, exponent := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		divisor *= unit
		exponent++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(divisor), "KMGTPE"[exponent])
}
