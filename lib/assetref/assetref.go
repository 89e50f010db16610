// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package assetref

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

// Registry turns an embedded payload into the canonical asset that
// stores it. *dedup.Engine implements it.
type Registry interface {
	Admit(kind lottie.AssetKind, data []byte, parent string) (*lottie.Asset, error)
}

// Resolver returns the bytes of an archive entry such as
// "images/image_0.png".
type Resolver func(path string) ([]byte, error)

// ResolverFromAssets resolves paths against the given assets. Unknown
// paths fail with lottie.ErrAssetNotFound.
func ResolverFromAssets(assets []*lottie.Asset) Resolver {
	byPath := make(map[string][]byte, len(assets))
	for _, asset := range assets {
		byPath[asset.Path()] = asset.Data()
	}
	return func(path string) ([]byte, error) {
		data, ok := byPath[path]
		if !ok {
			return nil, fmt.Errorf("%w: %s", lottie.ErrAssetNotFound, path)
		}
		return data, nil
	}
}

// Externalize replaces every embedded image, audio and font payload of
// an animation document with a reference to the canonical asset the
// registry assigns, recording parent as a user of each. It returns the
// rewritten document and the distinct assets it references, in
// document order.
func Externalize(document []byte, registry Registry, parent string) ([]byte, []*lottie.Asset, error) {
	if !gjson.ValidBytes(document) {
		return nil, nil, fmt.Errorf("%w: animation %q is not valid JSON", lottie.ErrInvalidAssetData, parent)
	}
	out := clone(document)
	var collected collection

	for i, entry := range gjson.GetBytes(document, "assets").Array() {
		payload := entry.Get("p")
		if payload.Type != gjson.String || !lottie.IsDataURL(payload.Str) {
			continue
		}
		mediaType, data, err := lottie.DecodeDataURL(payload.Str)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: assets[%d]: %v", lottie.ErrInvalidAssetData, i, err)
		}
		kind, ok := assetKind(mediaType)
		if !ok {
			continue
		}
		asset, err := registry.Admit(kind, data, parent)
		if err != nil {
			return nil, nil, fmt.Errorf("assets[%d]: %w", i, err)
		}
		out, err = setAll(out, []edit{
			{fmt.Sprintf("assets.%d.u", i), "/" + kind.Dir() + "/"},
			{fmt.Sprintf("assets.%d.p", i), asset.FileName()},
			{fmt.Sprintf("assets.%d.e", i), 0},
		})
		if err != nil {
			return nil, nil, err
		}
		collected.add(asset)
	}

	for i, entry := range gjson.GetBytes(document, "fonts.list").Array() {
		fontPath := entry.Get("fPath")
		if fontPath.Type != gjson.String || !lottie.IsDataURL(fontPath.Str) {
			continue
		}
		_, data, err := lottie.DecodeDataURL(fontPath.Str)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: fonts.list[%d]: %v", lottie.ErrInvalidAssetData, i, err)
		}
		asset, err := registry.Admit(lottie.KindFont, data, parent)
		if err != nil {
			return nil, nil, fmt.Errorf("fonts.list[%d]: %w", i, err)
		}
		out, err = setAll(out, []edit{
			{fmt.Sprintf("fonts.list.%d.fPath", i), "/" + asset.Path()},
		})
		if err != nil {
			return nil, nil, err
		}
		collected.add(asset)
	}

	return out, collected.assets, nil
}

// Inline replaces every asset and font reference of an animation
// document with a data URL of the resolved bytes. A reference the
// resolver cannot satisfy fails with lottie.ErrAssetNotFound naming
// the path.
func Inline(document []byte, resolve Resolver) ([]byte, error) {
	if !gjson.ValidBytes(document) {
		return nil, fmt.Errorf("%w: animation is not valid JSON", lottie.ErrInvalidAssetData)
	}
	out := clone(document)

	for i, entry := range gjson.GetBytes(document, "assets").Array() {
		if entry.Get("e").Int() == 1 {
			continue
		}
		entryPath, ok := ReferencePath(entry.Get("u").String(), entry.Get("p").String())
		if !ok {
			continue
		}
		dataURL, err := resolveDataURL(resolve, entryPath)
		if err != nil {
			return nil, err
		}
		out, err = setAll(out, []edit{
			{fmt.Sprintf("assets.%d.u", i), ""},
			{fmt.Sprintf("assets.%d.p", i), dataURL},
			{fmt.Sprintf("assets.%d.e", i), 1},
		})
		if err != nil {
			return nil, err
		}
	}

	for i, entry := range gjson.GetBytes(document, "fonts.list").Array() {
		fontPath := entry.Get("fPath").String()
		entryPath, ok := ReferencePath("", fontPath)
		if !ok || !strings.HasPrefix(entryPath, lottie.KindFont.Dir()+"/") {
			continue
		}
		dataURL, err := resolveDataURL(resolve, entryPath)
		if err != nil {
			return nil, err
		}
		out, err = setAll(out, []edit{{fmt.Sprintf("fonts.list.%d.fPath", i), dataURL}})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// References lists the archive paths an animation document refers to,
// in document order without repeats.
func References(document []byte) []string {
	var paths []string
	seen := make(map[string]bool)
	add := func(entryPath string, ok bool) {
		if ok && !seen[entryPath] {
			seen[entryPath] = true
			paths = append(paths, entryPath)
		}
	}
	for _, entry := range gjson.GetBytes(document, "assets").Array() {
		if entry.Get("e").Int() != 1 {
			add(ReferencePath(entry.Get("u").String(), entry.Get("p").String()))
		}
	}
	for _, entry := range gjson.GetBytes(document, "fonts.list").Array() {
		add(ReferencePath("", entry.Get("fPath").String()))
	}
	return paths
}

// ReferencePath joins a Lottie asset directory and file name into an
// archive path and reports whether it points into one of the asset
// directories. Data URLs and remote URLs are not references.
func ReferencePath(directory, file string) (string, bool) {
	if file == "" || lottie.IsDataURL(file) || strings.Contains(file, "://") || strings.Contains(directory, "://") {
		return "", false
	}
	joined := strings.TrimPrefix(path.Clean("/"+directory+"/"+file), "/")
	for _, kind := range lottie.AssetKinds {
		prefix := kind.Dir() + "/"
		if strings.HasPrefix(joined, prefix) && len(joined) > len(prefix) && !strings.Contains(joined[len(prefix):], "/") {
			return joined, true
		}
	}
	return "", false
}

func resolveDataURL(resolve Resolver, entryPath string) (string, error) {
	data, err := resolve(entryPath)
	if err != nil {
		if errors.Is(err, lottie.ErrAssetNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %v", lottie.ErrAssetNotFound, entryPath, err)
	}
	mediaType := "application/octet-stream"
	if media, ok := lottie.Sniff(data); ok {
		mediaType = media.Type
	} else if byExtension, ok := lottie.MediaTypeForExtension(strings.TrimPrefix(path.Ext(entryPath), ".")); ok {
		mediaType = byExtension
	}
	return lottie.EncodeDataURL(mediaType, data), nil
}

// assetKind maps a declared data URL type to the asset kind stored in
// the Lottie assets array. Fonts live in fonts.list, not here.
func assetKind(mediaType string) (lottie.AssetKind, bool) {
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return lottie.KindImage, true
	case strings.HasPrefix(mediaType, "audio/"):
		return lottie.KindAudio, true
	}
	return 0, false
}

type edit struct {
	path  string
	value any
}

func setAll(document []byte, edits []edit) ([]byte, error) {
	for _, e := range edits {
		var err error
		document, err = sjson.SetBytes(document, e.path, e.value)
		if err != nil {
			return nil, fmt.Errorf("rewriting %s: %w", e.path, err)
		}
	}
	return document, nil
}

func clone(data []byte) []byte {
	return append([]byte(nil), data...)
}

// collection keeps assets in first-seen order without repeats.
type collection struct {
	assets []*lottie.Asset
	seen   map[*lottie.Asset]bool
}

func (c *collection) add(asset *lottie.Asset) {
	if c.seen == nil {
		c.seen = make(map[*lottie.Asset]bool)
	}
	if !c.seen[asset] {
		c.seen[asset] = true
		c.assets = append(c.assets, asset)
	}
}
