// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bureau-foundation/lottiepack/cmd/lottiepack/cli"
	"github.com/bureau-foundation/lottiepack/lib/dotlottie"
	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

// Document kinds extract accepts besides the asset kinds.
const (
	kindAnimation    = "animation"
	kindTheme        = "theme"
	kindStateMachine = "state_machine"
	kindGlobalInputs = "global_inputs"
)

type extractParams struct {
	Output string `json:"output" flag:"output,o" desc:"write to this file instead of stdout"`
	Inline bool   `json:"inline" flag:"inline"   desc:"replace asset references with data URLs (animations and themes)"`
}

func extractCommand() *cli.Command {
	var params extractParams

	return &cli.Command{
		Name:    "extract",
		Summary: "Print one document or asset from a container",
		Description: `Decompress a single entry of a container and write it to stdout or
to the --output file. Only the manifest and the requested entry are
read, plus the referenced assets when --inline is given.

Kinds: animation, theme, state_machine, global_inputs, image, audio
and font. Asset ids are file names without the extension.`,
		Usage: "lottiepack extract <file.lottie> <kind> <id> [flags]",
		Examples: []cli.Example{
			{
				Description: "Get a self-contained animation for a player without container support",
				Command:     "lottiepack extract loader.lottie animation intro --inline -o intro.json",
			},
			{
				Description: "Save an image asset",
				Command:     "lottiepack extract loader.lottie image image_0 -o image_0.png",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 3 {
				return fmt.Errorf("extract requires <file.lottie> <kind> <id>, got %d arguments", len(args))
			}
			data, err := readArchive(args[0])
			if err != nil {
				return err
			}
			payload, err := extract(data, args[1], args[2], params.Inline)
			if err != nil {
				return err
			}
			if params.Output == "" {
				_, err := os.Stdout.Write(payload)
				return err
			}
			if err := writeFileAtomic(params.Output, payload); err != nil {
				return fmt.Errorf("writing %s: %w", params.Output, err)
			}
			logger.Info("extracted", "kind", args[1], "id", args[2], "output", params.Output, "bytes", len(payload))
			return nil
		},
	}
}

// extract returns the stored form of one document or asset.
func extract(data []byte, kind, id string, inline bool) ([]byte, error) {
	options := dotlottie.GetOptions{Inline: inline}
	switch kind {
	case kindAnimation:
		animation, err := dotlottie.GetAnimation(data, id, options)
		if err != nil {
			return nil, err
		}
		return animation.Data(), nil
	case kindTheme:
		theme, err := dotlottie.GetTheme(data, id, options)
		if err != nil {
			return nil, err
		}
		if theme.IsStylesheet() {
			return []byte(theme.Stylesheet()), nil
		}
		return theme.MarshalRules()
	case kindStateMachine:
		stateMachine, err := dotlottie.GetStateMachine(data, id)
		if err != nil {
			return nil, err
		}
		return stateMachine.Data(), nil
	case kindGlobalInputs:
		globalInputs, err := dotlottie.GetGlobalInputs(data, id)
		if err != nil {
			return nil, err
		}
		return globalInputs.Marshal()
	}

	assetKind, err := lottie.ParseAssetKind(kind)
	if err != nil {
		return nil, fmt.Errorf("unknown kind %q (want one of %s)", kind, strings.Join(extractKinds(), ", "))
	}
	archive, err := dotlottie.Open(data, dotlottie.OpenOptions{})
	if err != nil {
		return nil, err
	}
	asset, err := archive.Asset(assetKind, id)
	if err != nil {
		return nil, err
	}
	return asset.Data(), nil
}

func extractKinds() []string {
	kinds := []string{kindAnimation, kindTheme, kindStateMachine, kindGlobalInputs}
	for _, kind := range lottie.AssetKinds {
		kinds = append(kinds, kind.String())
	}
	return kinds
}
