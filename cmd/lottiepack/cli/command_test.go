// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func noop(context.Context, []string, *slog.Logger) error { return nil }

func TestExecute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "lottiepack",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "inspect",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "inspect"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"inspect"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if called != "inspect" {
		t.Errorf("dispatched to %q, want %q", called, "inspect")
	}
}

func TestExecute_FlagParsing(t *testing.T) {
	type buildParams struct {
		Output  string `flag:"output,o" desc:"output path"`
		Version string `flag:"version" default:"2" desc:"manifest version"`
		NoDedup bool   `flag:"no-dedup" desc:"disable dedup"`
	}
	var params buildParams
	var received []string

	command := &Command{
		Name:   "build",
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			received = args
			return nil
		},
	}

	if err := command.Execute([]string{"recipe.jsonc", "-o", "out.lottie", "--no-dedup"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if params.Output != "out.lottie" {
		t.Errorf("Output = %q, want %q", params.Output, "out.lottie")
	}
	if params.Version != "2" {
		t.Errorf("Version = %q, want default %q", params.Version, "2")
	}
	if !params.NoDedup {
		t.Error("NoDedup = false, want true")
	}
	if len(received) != 1 || received[0] != "recipe.jsonc" {
		t.Errorf("args = %v, want [recipe.jsonc]", received)
	}
}

func TestExecute_VerboseLowersLevel(t *testing.T) {
	type params struct {
		Verbosity
	}
	var p params
	var debugEnabled bool

	command := &Command{
		Name:   "build",
		Params: func() any { return &p },
		Run: func(ctx context.Context, _ []string, logger *slog.Logger) error {
			debugEnabled = logger.Enabled(ctx, slog.LevelDebug)
			return nil
		},
	}

	if err := command.Execute([]string{"-v"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !debugEnabled {
		t.Error("debug logging not enabled with -v")
	}

	if err := command.Execute(nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if debugEnabled {
		t.Error("debug logging enabled without -v")
	}
}

func TestExecute_UnknownFlagSuggestion(t *testing.T) {
	type params struct {
		Inline bool   `flag:"inline" desc:"inline assets"`
		Output string `flag:"output,o" desc:"output path"`
	}
	var p params
	command := &Command{
		Name:   "extract",
		Params: func() any { return &p },
		Run:    noop,
	}

	err := command.Execute([]string{"--inlien"})
	if err == nil {
		t.Fatal("unknown flag accepted")
	}
	message := err.Error()
	if !strings.Contains(message, "did you mean --inline") {
		t.Errorf("error = %q, want suggestion for '--inline'", message)
	}
	if !strings.Contains(message, "inlien") {
		t.Errorf("error = %q, should mention the bad flag", message)
	}
	if !strings.Contains(message, "--help") {
		t.Errorf("error = %q, should point to --help", message)
	}
}

func TestExecute_UnknownFlagNoSuggestion(t *testing.T) {
	type params struct {
		Inline bool `flag:"inline" desc:"inline assets"`
	}
	var p params
	command := &Command{
		Name:   "extract",
		Params: func() any { return &p },
		Run:    noop,
	}

	err := command.Execute([]string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("unknown flag accepted")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
}

func TestExecute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "lottiepack",
		Subcommands: []*Command{
			{Name: "build"},
			{Name: "inspect"},
			{Name: "extract"},
		},
	}

	err := root.Execute([]string{"inspcet"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"inspect\"") {
		t.Errorf("error = %q, want suggestion for 'inspect'", err.Error())
	}
}

func TestExecute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			var output bytes.Buffer
			root := &Command{
				Name:    "lottiepack",
				Summary: "Build and read dotLottie containers",
				Output:  &output,
				Subcommands: []*Command{
					{Name: "build", Summary: "Build a container from a recipe"},
				},
			}

			if err := root.Execute([]string{helpArg}); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
			if !strings.Contains(output.String(), "Build a container from a recipe") {
				t.Errorf("help output missing subcommand summary:\n%s", output.String())
			}
		})
	}
}

func TestExecute_HelpAfterArguments(t *testing.T) {
	var output bytes.Buffer
	var ran bool
	type params struct {
		Inline bool `flag:"inline" desc:"inline assets"`
	}
	var p params
	command := &Command{
		Name:   "extract",
		Output: &output,
		Params: func() any { return &p },
		Run: func(context.Context, []string, *slog.Logger) error {
			ran = true
			return nil
		},
	}

	if err := command.Execute([]string{"file.lottie", "--help"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ran {
		t.Error("Run called for --help")
	}
	if !strings.Contains(output.String(), "--inline") {
		t.Errorf("help output missing flags:\n%s", output.String())
	}
}

func TestExecute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name:   "lottiepack",
		Output: io.Discard,
		Subcommands: []*Command{
			{Name: "build", Summary: "Build a container"},
		},
	}

	err := root.Execute([]string{})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "lottiepack",
		Description: "Build and read dotLottie containers.",
		Subcommands: []*Command{
			{Name: "build", Summary: "Build a container from a recipe"},
			{Name: "inspect", Summary: "Describe a container"},
		},
		Examples: []Example{
			{
				Description: "Build a second generation container",
				Command:     "lottiepack build loader.jsonc -o loader.lottie",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Build and read dotLottie containers.",
		"Usage:",
		"lottiepack <command> [flags]",
		"Commands:",
		"inspect",
		"Describe a container",
		"Examples:",
		"# Build a second generation container",
		"lottiepack build loader.jsonc -o loader.lottie",
		"Run 'lottiepack <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "lottiepack"}
	extract := &Command{Name: "extract", parent: root}

	if got := root.fullName(); got != "lottiepack" {
		t.Errorf("root.fullName() = %q, want %q", got, "lottiepack")
	}
	if got := extract.fullName(); got != "lottiepack extract" {
		t.Errorf("extract.fullName() = %q, want %q", got, "lottiepack extract")
	}
}
