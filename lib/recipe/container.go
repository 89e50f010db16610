// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recipe

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bureau-foundation/lottiepack/lib/dotlottie"
	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

// ErrInvalid is returned by [Recipe.Container] when [Validate] reports
// issues.
var ErrInvalid = errors.New("invalid recipe")

// Container reads every file the recipe names and assembles the
// container graph. Relative paths are resolved against dir, normally
// the directory holding the recipe. Url sources are left for the build
// to fetch.
func (r *Recipe) Container(dir string) (*dotlottie.Container, error) {
	if issues := Validate(r); len(issues) > 0 {
		return nil, fmt.Errorf("%w:\n  %s", ErrInvalid, strings.Join(issues, "\n  "))
	}

	loader := loader{dir: dir}
	container := dotlottie.New()

	for _, entry := range r.Animations {
		animation, err := loader.animation(entry)
		if err != nil {
			return nil, err
		}
		if err := container.AddAnimation(animation); err != nil {
			return nil, err
		}
	}
	for _, entry := range r.Themes {
		theme, err := loader.theme(entry)
		if err != nil {
			return nil, err
		}
		if err := container.AddTheme(theme); err != nil {
			return nil, err
		}
	}
	for _, entry := range r.Assets {
		asset, err := loader.asset(entry)
		if err != nil {
			return nil, err
		}
		if err := container.AddAsset(asset); err != nil {
			return nil, err
		}
	}
	for _, entry := range r.StateMachines {
		data, err := loader.read("state machine", entry.ID, entry.File)
		if err != nil {
			return nil, err
		}
		stateMachine, err := lottie.NewStateMachine(entry.ID, data)
		if err != nil {
			return nil, err
		}
		stateMachine.SetName(entry.Name)
		if err := stateMachine.SetZip(entry.Zip); err != nil {
			return nil, err
		}
		if err := container.AddStateMachine(stateMachine); err != nil {
			return nil, err
		}
	}
	for _, entry := range r.GlobalInputs {
		data, err := loader.read("global inputs", entry.ID, entry.File)
		if err != nil {
			return nil, err
		}
		globalInputs, err := lottie.ParseGlobalInputs(entry.ID, data)
		if err != nil {
			return nil, err
		}
		globalInputs.SetName(entry.Name)
		if err := globalInputs.SetZip(entry.Zip); err != nil {
			return nil, err
		}
		if err := container.AddGlobalInputs(globalInputs); err != nil {
			return nil, err
		}
	}

	container.SetInitial(dotlottie.Initial{
		Animation:    r.Initial.Animation,
		StateMachine: r.Initial.StateMachine,
		GlobalInputs: r.Initial.GlobalInputs,
	})
	if metadata := r.Metadata; metadata != nil {
		err := container.SetMetadata(dotlottie.Metadata{
			Author:      metadata.Author,
			Description: metadata.Description,
			Keywords:    metadata.Keywords,
			Revision:    metadata.Revision,
			Custom:      metadata.Custom,
		})
		if err != nil {
			return nil, err
		}
	}
	return container, nil
}

// loader reads recipe files relative to dir.
type loader struct {
	dir string
}

func (l loader) read(what, id, path string) ([]byte, error) {
	data, err := os.ReadFile(resolvePath(l.dir, path))
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", what, id, err)
	}
	return data, nil
}

// source reads file, or passes url through for the build to fetch.
func (l loader) source(what, id, file, url string) (lottie.Source, error) {
	if url != "" {
		return lottie.Source{URL: url}, nil
	}
	data, err := l.read(what, id, file)
	if err != nil {
		return lottie.Source{}, err
	}
	return lottie.Source{Data: data}, nil
}

func (l loader) animation(entry Animation) (*lottie.Animation, error) {
	source, err := l.source("animation", entry.ID, entry.File, entry.URL)
	if err != nil {
		return nil, err
	}
	animation, err := lottie.NewAnimation(entry.ID, source)
	if err != nil {
		return nil, err
	}
	animation.SetName(entry.Name)
	animation.SetBackground(entry.Background)
	for _, themeID := range entry.Themes {
		if err := animation.AddTheme(themeID); err != nil {
			return nil, err
		}
	}
	if entry.InitialTheme != "" {
		if err := animation.SetInitialTheme(entry.InitialTheme); err != nil {
			return nil, err
		}
	}
	for _, stateMachineID := range entry.StateMachines {
		if err := animation.AddStateMachine(stateMachineID); err != nil {
			return nil, err
		}
	}
	for _, globalInputsID := range entry.GlobalInputs {
		if err := animation.AddGlobalInputs(globalInputsID); err != nil {
			return nil, err
		}
	}
	if playback := entry.Playback; playback != nil {
		err := animation.SetPlayback(&lottie.Playback{
			Speed:        playback.Speed,
			Loop:         playback.Loop,
			Autoplay:     playback.Autoplay,
			Direction:    playback.Direction,
			PlayMode:     playback.PlayMode,
			Hover:        playback.Hover,
			Intermission: playback.Intermission,
			ThemeColor:   playback.ThemeColor,
		})
		if err != nil {
			return nil, err
		}
	}
	if err := animation.SetZip(entry.Zip); err != nil {
		return nil, err
	}
	return animation, nil
}

func (l loader) theme(entry Theme) (*lottie.Theme, error) {
	var theme *lottie.Theme
	if entry.URL != "" {
		remote, err := lottie.NewRemoteTheme(entry.ID, entry.URL)
		if err != nil {
			return nil, err
		}
		theme = remote
	} else {
		data, err := l.read("theme", entry.ID, entry.File)
		if err != nil {
			return nil, err
		}
		parsed, err := lottie.ParseTheme(entry.ID, data)
		if err != nil {
			return nil, err
		}
		theme = parsed
	}

	if entry.Name != "" {
		theme.SetName(entry.Name)
	}
	// A scope in the recipe replaces one carried by the theme file.
	if len(entry.Animations) > 0 {
		if err := theme.SetAnimations(entry.Animations); err != nil {
			return nil, err
		}
	}
	if err := theme.SetZip(entry.Zip); err != nil {
		return nil, err
	}
	return theme, nil
}

func (l loader) asset(entry Asset) (*lottie.Asset, error) {
	kind, err := lottie.ParseAssetKind(entry.Kind)
	if err != nil {
		return nil, err
	}
	source, err := l.source(kind.String(), entry.ID, entry.File, entry.URL)
	if err != nil {
		return nil, err
	}
	asset, err := lottie.NewAsset(kind, entry.ID, source)
	if err != nil {
		return nil, err
	}
	for _, animationID := range entry.Animations {
		if err := asset.AddParentAnimation(animationID); err != nil {
			return nil, err
		}
	}
	if err := asset.SetZip(entry.Zip); err != nil {
		return nil, err
	}
	return asset, nil
}
