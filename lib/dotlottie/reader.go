// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dotlottie

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"

	"github.com/bureau-foundation/lottiepack/lib/archive"
	"github.com/bureau-foundation/lottiepack/lib/assetref"
	"github.com/bureau-foundation/lottiepack/lib/fetch"
	"github.com/bureau-foundation/lottiepack/lib/lottie"
	"github.com/bureau-foundation/lottiepack/lib/manifest"
)

// ContainerMediaTypes are the response types [FromURL] accepts.
var ContainerMediaTypes = []string{
	"application/zip",
	"application/zip+dotlottie",
	"application/x-zip-compressed",
}

// GetOptions controls single-document lookups.
type GetOptions struct {
	// Inline replaces asset references in the returned document with
	// data URLs of the referenced entries. Only those entries are
	// decompressed.
	Inline bool
}

// OpenOptions controls [Open].
type OpenOptions struct {
	// OnAccess is called with the entry name each time an entry is
	// decompressed, starting with the manifest.
	OnAccess func(name string)
}

// Archive is a parsed container. Only the central directory and the
// manifest are read by [Open]; every other entry is decompressed when a
// lookup needs it. The returned documents are fresh copies that share
// nothing with the archive bytes.
type Archive struct {
	zip      *archive.Reader
	manifest *manifest.Manifest
}

// Open parses the central directory and the manifest of data. It fails
// with lottie.ErrInvalidContainer when data is not a zip or has no
// manifest, and with lottie.ErrSchemaViolation when the manifest
// matches neither generation. data must not be modified while the
// Archive is in use.
func Open(data []byte, options OpenOptions) (*Archive, error) {
	reader, err := archive.NewReader(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", lottie.ErrInvalidContainer, err)
	}
	reader.OnAccess = options.OnAccess
	if !reader.Has(ManifestPath) {
		return nil, fmt.Errorf("%w: no %s entry", lottie.ErrInvalidContainer, ManifestPath)
	}
	manifestData, err := reader.ReadFile(ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", lottie.ErrInvalidContainer, err)
	}
	parsed, err := manifest.Parse(manifestData)
	if err != nil {
		return nil, err
	}
	return &Archive{zip: reader, manifest: parsed}, nil
}

// Manifest returns the parsed manifest.
func (a *Archive) Manifest() *manifest.Manifest { return a.manifest }

// Generation returns the manifest generation of the archive.
func (a *Archive) Generation() manifest.Generation { return a.manifest.Generation }

// read decompresses one entry, reporting a missing entry as
// lottie.ErrAssetNotFound with the given description of the path.
func (a *Archive) read(name, expected string) ([]byte, error) {
	data, err := a.zip.ReadFile(name)
	if errors.Is(err, archive.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", lottie.ErrAssetNotFound, expected)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", lottie.ErrInvalidContainer, err)
	}
	return data, nil
}

// resolve reads an asset entry for the rewriter.
func (a *Archive) resolve(entryPath string) ([]byte, error) {
	return a.read(entryPath, entryPath)
}

// Animation returns the animation with id, carrying the theme
// associations and playback settings recorded in the manifest.
func (a *Archive) Animation(id string, options GetOptions) (*lottie.Animation, error) {
	entryPath := AnimationPath(id)
	data, err := a.read(entryPath, entryPath)
	if err != nil {
		return nil, err
	}
	if options.Inline {
		if data, err = assetref.Inline(data, a.resolve); err != nil {
			return nil, fmt.Errorf("animation %q: %w", id, err)
		}
	}
	animation, err := lottie.NewAnimation(id, lottie.Source{Data: data})
	if err != nil {
		return nil, err
	}
	if err := a.applyManifest(animation); err != nil {
		return nil, err
	}
	return animation, nil
}

// applyManifest copies the per-animation manifest fields onto
// animation.
func (a *Archive) applyManifest(animation *lottie.Animation) error {
	id := animation.ID()
	if v2 := a.manifest.V2; v2 != nil {
		for _, entry := range v2.Animations {
			if entry.ID != id {
				continue
			}
			for _, themeID := range entry.Themes {
				if err := animation.AddTheme(themeID); err != nil {
					return err
				}
			}
			if err := animation.SetInitialTheme(entry.InitialTheme); err != nil {
				return err
			}
			animation.SetName(entry.Name)
			animation.SetBackground(entry.Background)
		}
		return nil
	}

	v1 := a.manifest.V1
	for _, entry := range v1.Animations {
		if entry.ID != id {
			continue
		}
		playback := entry.Playback()
		if err := animation.SetPlayback(&playback); err != nil {
			return err
		}
		if err := animation.SetInitialTheme(entry.DefaultTheme); err != nil {
			return err
		}
	}
	for _, theme := range v1.Themes {
		if slices.Contains(theme.Animations, id) {
			if err := animation.AddTheme(theme.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// Theme returns the theme with id. A missing theme fails with
// lottie.ErrAssetNotFound naming "themes/<id>.*".
func (a *Archive) Theme(id string, options GetOptions) (*lottie.Theme, error) {
	if err := lottie.ValidateID(id); err != nil {
		return nil, err
	}
	matches := a.zip.Match(ThemesDir, id)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s/%s.*", lottie.ErrAssetNotFound, ThemesDir, id)
	}
	// Prefer the rule document when both forms are present.
	entryPath := matches[0]
	if rules := ThemesDir + "/" + id + jsonExtension; slices.Contains(matches, rules) {
		entryPath = rules
	}
	data, err := a.read(entryPath, entryPath)
	if err != nil {
		return nil, err
	}
	theme, err := lottie.ParseTheme(id, data)
	if err != nil {
		return nil, err
	}

	if v2 := a.manifest.V2; v2 != nil {
		for _, entry := range v2.Themes {
			if entry.ID == id {
				theme.SetName(entry.Name)
			}
		}
	} else {
		for _, entry := range a.manifest.V1.Themes {
			if entry.ID == id && len(theme.Animations()) == 0 {
				if err := theme.SetAnimations(entry.Animations); err != nil {
					return nil, err
				}
			}
		}
	}

	if options.Inline {
		if theme, err = assetref.InlineTheme(theme, a.resolve); err != nil {
			return nil, err
		}
	}
	return theme, nil
}

// StateMachine returns the state machine with id.
func (a *Archive) StateMachine(id string) (*lottie.StateMachine, error) {
	entryPath := StateMachinePath(a.Generation(), id)
	data, err := a.read(entryPath, entryPath)
	if err != nil {
		return nil, err
	}
	stateMachine, err := lottie.NewStateMachine(id, data)
	if err != nil {
		return nil, err
	}
	if v2 := a.manifest.V2; v2 != nil {
		for _, entry := range v2.StateMachines {
			if entry.ID == id {
				stateMachine.SetName(entry.Name)
			}
		}
	}
	return stateMachine, nil
}

// GlobalInputs returns the global inputs document with id.
func (a *Archive) GlobalInputs(id string) (*lottie.GlobalInputs, error) {
	entryPath := GlobalInputsPath(id)
	data, err := a.read(entryPath, entryPath)
	if err != nil {
		return nil, err
	}
	document, err := lottie.ParseGlobalInputs(id, data)
	if err != nil {
		return nil, err
	}
	if v2 := a.manifest.V2; v2 != nil {
		for _, entry := range v2.GlobalInputs {
			if entry.ID == id {
				document.SetName(entry.Name)
			}
		}
	}
	return document, nil
}

// Asset returns the asset of kind whose file name without extension is
// id. Parent animations are not recorded in the archive; use
// [FromBytes] to recover them from the documents.
func (a *Archive) Asset(kind lottie.AssetKind, id string) (*lottie.Asset, error) {
	if err := lottie.ValidateID(id); err != nil {
		return nil, err
	}
	matches := a.zip.Match(kind.Dir(), id)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s/%s.*", lottie.ErrAssetNotFound, kind.Dir(), id)
	}
	data, err := a.read(matches[0], matches[0])
	if err != nil {
		return nil, err
	}
	return lottie.RestoreAsset(kind, path.Base(matches[0]), data)
}

// Entry describes one archive entry.
type Entry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Entries lists every entry in archive order without decompressing
// any of them.
func (a *Archive) Entries() []Entry {
	names := a.zip.Names()
	entries := make([]Entry, len(names))
	for i, name := range names {
		size, _ := a.zip.Size(name)
		entries[i] = Entry{Name: name, Size: size}
	}
	return entries
}

// ReadEntry decompresses the entry called name.
func (a *Archive) ReadEntry(name string) ([]byte, error) {
	return a.read(name, name)
}

// Container reconstructs the whole document graph. Asset references
// are inlined again so the result builds into an equivalent archive.
// Assets no document refers to are kept as container assets owned by
// every animation.
func (a *Archive) Container() (*Container, error) {
	container := New()
	referenced := make(map[string]bool)

	for _, id := range a.manifest.AnimationIDs() {
		stored, err := a.Animation(id, GetOptions{})
		if err != nil {
			return nil, err
		}
		for _, entryPath := range assetref.References(stored.Data()) {
			referenced[entryPath] = true
		}
		inlined, err := assetref.Inline(stored.Data(), a.resolve)
		if err != nil {
			return nil, fmt.Errorf("animation %q: %w", id, err)
		}
		if err := stored.SetData(inlined); err != nil {
			return nil, err
		}
		if err := container.AddAnimation(stored); err != nil {
			return nil, err
		}
	}

	for _, id := range a.manifest.ThemeIDs() {
		stored, err := a.Theme(id, GetOptions{})
		if err != nil {
			return nil, err
		}
		for _, entryPath := range assetref.ThemeReferences(stored) {
			referenced[entryPath] = true
		}
		inlined, err := assetref.InlineTheme(stored, a.resolve)
		if err != nil {
			return nil, err
		}
		if err := container.AddTheme(inlined); err != nil {
			return nil, err
		}
	}

	for _, id := range a.manifest.StateMachineIDs() {
		stateMachine, err := a.StateMachine(id)
		if err != nil {
			return nil, err
		}
		if err := container.AddStateMachine(stateMachine); err != nil {
			return nil, err
		}
	}
	for _, id := range a.manifest.GlobalInputIDs() {
		document, err := a.GlobalInputs(id)
		if err != nil {
			return nil, err
		}
		if err := container.AddGlobalInputs(document); err != nil {
			return nil, err
		}
	}

	animationIDs := a.manifest.AnimationIDs()
	for _, kind := range lottie.AssetKinds {
		for _, name := range a.zip.List(kind.Dir()) {
			if referenced[name] {
				continue
			}
			data, err := a.read(name, name)
			if err != nil {
				return nil, err
			}
			asset, err := lottie.RestoreAsset(kind, path.Base(name), data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			for _, id := range animationIDs {
				if err := asset.AddParentAnimation(id); err != nil {
					return nil, err
				}
			}
			if err := container.AddAsset(asset); err != nil {
				return nil, err
			}
		}
	}

	if v2 := a.manifest.V2; v2 != nil && v2.Initial != nil {
		container.SetInitial(Initial{
			Animation:    v2.Initial.Animation,
			StateMachine: v2.Initial.StateMachine,
			GlobalInputs: v2.Initial.GlobalInputs,
		})
	}
	if v1 := a.manifest.V1; v1 != nil {
		container.SetInitial(Initial{Animation: v1.ActiveAnimationID})
		err := container.SetMetadata(Metadata{
			Author:      v1.Author,
			Description: v1.Description,
			Keywords:    v1.Keywords,
			Revision:    v1.Revision,
			Custom:      v1.Custom,
		})
		if err != nil {
			return nil, err
		}
	}
	return container, nil
}

// GetManifest returns the manifest of a container.
func GetManifest(data []byte) (*manifest.Manifest, error) {
	opened, err := Open(data, OpenOptions{})
	if err != nil {
		return nil, err
	}
	return opened.Manifest(), nil
}

// GetAnimation returns one animation of a container.
func GetAnimation(data []byte, id string, options GetOptions) (*lottie.Animation, error) {
	opened, err := Open(data, OpenOptions{})
	if err != nil {
		return nil, err
	}
	return opened.Animation(id, options)
}

// GetTheme returns one theme of a container.
func GetTheme(data []byte, id string, options GetOptions) (*lottie.Theme, error) {
	opened, err := Open(data, OpenOptions{})
	if err != nil {
		return nil, err
	}
	return opened.Theme(id, options)
}

// GetStateMachine returns one state machine of a container.
func GetStateMachine(data []byte, id string) (*lottie.StateMachine, error) {
	opened, err := Open(data, OpenOptions{})
	if err != nil {
		return nil, err
	}
	return opened.StateMachine(id)
}

// GetGlobalInputs returns one global inputs document of a container.
func GetGlobalInputs(data []byte, id string) (*lottie.GlobalInputs, error) {
	opened, err := Open(data, OpenOptions{})
	if err != nil {
		return nil, err
	}
	if opened.Generation() != manifest.GenerationV2 {
		return nil, fmt.Errorf("%w: %s/%s%s (v1 containers have no global inputs)",
			lottie.ErrAssetNotFound, GlobalInputsDir, id, jsonExtension)
	}
	return opened.GlobalInputs(id)
}

// GetImage returns one image of a container.
func GetImage(data []byte, id string) (*lottie.Asset, error) {
	return getAsset(data, lottie.KindImage, id)
}

// GetAudio returns one audio asset of a container.
func GetAudio(data []byte, id string) (*lottie.Asset, error) {
	return getAsset(data, lottie.KindAudio, id)
}

// GetFont returns one font of a container.
func GetFont(data []byte, id string) (*lottie.Asset, error) {
	return getAsset(data, lottie.KindFont, id)
}

func getAsset(data []byte, kind lottie.AssetKind, id string) (*lottie.Asset, error) {
	opened, err := Open(data, OpenOptions{})
	if err != nil {
		return nil, err
	}
	return opened.Asset(kind, id)
}

// Entries lists the entries of a container.
func Entries(data []byte) ([]Entry, error) {
	opened, err := Open(data, OpenOptions{})
	if err != nil {
		return nil, err
	}
	return opened.Entries(), nil
}

// FromBytes reconstructs the document graph of a container.
func FromBytes(data []byte) (*Container, error) {
	opened, err := Open(data, OpenOptions{})
	if err != nil {
		return nil, err
	}
	return opened.Container()
}

// FromURL fetches a container and reconstructs its document graph. The
// response must declare one of [ContainerMediaTypes].
func FromURL(ctx context.Context, fetcher fetch.Fetcher, url string) (*Container, error) {
	response, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", lottie.ErrFetchFailed, url, err)
	}
	if !slices.Contains(ContainerMediaTypes, fetch.MediaType(response.ContentType)) {
		return nil, fmt.Errorf("%w: %s served %q, want one of %v",
			lottie.ErrInvalidContainer, url, response.ContentType, ContainerMediaTypes)
	}
	return FromBytes(response.Data)
}
