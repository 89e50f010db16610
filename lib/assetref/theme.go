// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package assetref

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

// ExternalizeTheme replaces data URLs in the "url" field of rule values
// and keyframe values with "images/<file>" references. Each payload is
// admitted once and attributed to the rule's own animation scope if it
// has one, otherwise to parents. The input theme is not modified.
func ExternalizeTheme(theme *lottie.Theme, registry Registry, parents []string) (*lottie.Theme, []*lottie.Asset, error) {
	if theme.IsStylesheet() || len(theme.Rules()) == 0 {
		return theme.Clone(), nil, nil
	}
	var collected collection
	externalize := func(location string, value json.RawMessage, scope []string) (json.RawMessage, error) {
		url := gjson.GetBytes(value, "url")
		if url.Type != gjson.String || !lottie.IsDataURL(url.Str) {
			return value, nil
		}
		_, data, err := lottie.DecodeDataURL(url.Str)
		if err != nil {
			return nil, fmt.Errorf("%w: theme %q %s: %v", lottie.ErrInvalidAssetData, theme.ID(), location, err)
		}
		first := ""
		if len(scope) > 0 {
			first = scope[0]
		}
		asset, err := registry.Admit(lottie.KindImage, data, first)
		if err != nil {
			return nil, fmt.Errorf("theme %q %s: %w", theme.ID(), location, err)
		}
		for _, parent := range scope[min(1, len(scope)):] {
			if err := asset.AddParentAnimation(parent); err != nil {
				return nil, err
			}
		}
		collected.add(asset)
		return setURL(value, asset.Path())
	}

	rewritten, err := rewriteRules(theme, parents, externalize)
	if err != nil {
		return nil, nil, err
	}
	return rewritten, collected.assets, nil
}

// InlineTheme replaces "images/<file>" references in rule and keyframe
// values with data URLs of the resolved bytes.
func InlineTheme(theme *lottie.Theme, resolve Resolver) (*lottie.Theme, error) {
	if theme.IsStylesheet() || len(theme.Rules()) == 0 {
		return theme.Clone(), nil
	}
	inline := func(location string, value json.RawMessage, _ []string) (json.RawMessage, error) {
		url := gjson.GetBytes(value, "url")
		if url.Type != gjson.String {
			return value, nil
		}
		entryPath, ok := ReferencePath("", url.Str)
		if !ok {
			return value, nil
		}
		dataURL, err := resolveDataURL(resolve, entryPath)
		if err != nil {
			return nil, fmt.Errorf("theme %q %s: %w", theme.ID(), location, err)
		}
		return setURL(value, dataURL)
	}
	return rewriteRules(theme, nil, inline)
}

// ThemeReferences lists the archive paths a theme's rules refer to.
func ThemeReferences(theme *lottie.Theme) []string {
	var paths []string
	seen := make(map[string]bool)
	collect := func(_ string, value json.RawMessage, _ []string) (json.RawMessage, error) {
		if entryPath, ok := ReferencePath("", gjson.GetBytes(value, "url").String()); ok && !seen[entryPath] {
			seen[entryPath] = true
			paths = append(paths, entryPath)
		}
		return value, nil
	}
	if !theme.IsStylesheet() {
		rewriteRules(theme, nil, collect)
	}
	return paths
}

type valueRewriter func(location string, value json.RawMessage, scope []string) (json.RawMessage, error)

// rewriteRules applies rewrite to every static value and keyframe value
// and returns a theme carrying the results. Both forms use the same
// grammar, so they go through the same function.
func rewriteRules(theme *lottie.Theme, parents []string, rewrite valueRewriter) (*lottie.Theme, error) {
	rules := theme.Rules()
	for i := range rules {
		rule := &rules[i]
		scope := parents
		if len(rule.Animations) > 0 {
			scope = rule.Animations
		}
		if len(rule.Value) > 0 {
			value, err := rewrite(fmt.Sprintf("rules[%d].value", i), rule.Value, scope)
			if err != nil {
				return nil, err
			}
			rule.Value = value
		}
		for j := range rule.Keyframes {
			value, err := rewrite(fmt.Sprintf("rules[%d].keyframes[%d].value", i, j), rule.Keyframes[j].Value, scope)
			if err != nil {
				return nil, err
			}
			rule.Keyframes[j].Value = value
		}
	}
	return theme.WithRules(rules)
}

func setURL(value json.RawMessage, url string) (json.RawMessage, error) {
	out, err := setAll(clone(value), []edit{{"url", url}})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}
