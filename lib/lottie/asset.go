// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottie

import (
	"fmt"
	"path"
	"strings"

	"github.com/bureau-foundation/lottiepack/lib/archive"
)

// AssetKind distinguishes the three binary asset types. The kind
// selects the archive directory and the fingerprinting strategy.
type AssetKind int

const (
	KindImage AssetKind = iota + 1
	KindAudio
	KindFont
)

// AssetKinds lists every kind in archive order.
var AssetKinds = []AssetKind{KindImage, KindAudio, KindFont}

// String returns the kind name, which is also the prefix of generated
// asset ids ("image_0", "audio_3").
func (k AssetKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	case KindFont:
		return "font"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Dir returns the archive directory holding assets of this kind.
func (k AssetKind) Dir() string {
	switch k {
	case KindImage:
		return "images"
	case KindAudio:
		return "audio"
	case KindFont:
		return "fonts"
	default:
		return ""
	}
}

// ParseAssetKind accepts a kind name ("image") or its directory
// ("images").
func ParseAssetKind(name string) (AssetKind, error) {
	for _, kind := range AssetKinds {
		if name == kind.String() || name == kind.Dir() {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown asset kind %q", name)
}

// Source is the payload of an animation or asset. Exactly one field
// must be set.
type Source struct {
	// Data is the raw payload.
	Data []byte

	// DataURL is a base64 data URL. It is decoded on construction.
	DataURL string

	// URL is fetched at build time.
	URL string
}

func (s Source) count() int {
	count := 0
	if len(s.Data) > 0 {
		count++
	}
	if s.DataURL != "" {
		count++
	}
	if s.URL != "" {
		count++
	}
	return count
}

// Asset is an image, audio clip or font stored as its own archive entry.
// FileName is always the id plus an extension sniffed from the payload;
// only [Rename] can set it explicitly.
type Asset struct {
	kind      AssetKind
	id        string
	fileName  string
	mediaType string
	data      []byte
	url       string
	parents   []string
	zip       archive.Options
}

// NewImage creates an image asset.
func NewImage(id string, source Source) (*Asset, error) {
	return newAsset(KindImage, id, source)
}

// NewAudio creates an audio asset.
func NewAudio(id string, source Source) (*Asset, error) {
	return newAsset(KindAudio, id, source)
}

// NewFont creates a font asset.
func NewFont(id string, source Source) (*Asset, error) {
	return newAsset(KindFont, id, source)
}

// NewAsset creates an asset of the given kind.
func NewAsset(kind AssetKind, id string, source Source) (*Asset, error) {
	if kind.Dir() == "" {
		return nil, fmt.Errorf("unknown asset kind %d", int(kind))
	}
	return newAsset(kind, id, source)
}

func newAsset(kind AssetKind, id string, source Source) (*Asset, error) {
	if err := ValidateID(id); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	asset := &Asset{kind: kind, id: id}
	if err := asset.setSource(source); err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, id, err)
	}
	return asset, nil
}

func (a *Asset) setSource(source Source) error {
	switch source.count() {
	case 0:
		return fmt.Errorf("%w: neither data nor url", ErrMissingSource)
	case 1:
	default:
		return fmt.Errorf("%w: data and url are mutually exclusive", ErrMissingSource)
	}

	switch {
	case source.URL != "":
		if err := ValidateURL(source.URL); err != nil {
			return err
		}
		if IsDataURL(source.URL) {
			return a.setDataURL(source.URL)
		}
		a.url = source.URL
		a.data = nil
		a.mediaType = ""
		a.fileName = a.id
	case source.DataURL != "":
		return a.setDataURL(source.DataURL)
	default:
		a.setData(cloneBytes(source.Data), "")
	}
	return nil
}

func (a *Asset) setDataURL(dataURL string) error {
	declared, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingSource, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty data url", ErrMissingSource)
	}
	a.setData(data, declared)
	return nil
}

// setData stores data and derives the media type and file name. The
// declared type is used only when sniffing fails.
func (a *Asset) setData(data []byte, declared string) {
	a.data = data
	a.url = ""
	a.mediaType = declared
	extension := ""
	if media, ok := Sniff(data); ok {
		a.mediaType = media.Type
		extension = media.Extension
	} else {
		for candidate, mediaType := range extensionTypes {
			if mediaType == declared && (extension == "" || candidate < extension) {
				extension = candidate
			}
		}
	}
	a.fileName = a.id
	if extension != "" {
		a.fileName = a.id + "." + extension
	}
}

// Kind returns the asset kind.
func (a *Asset) Kind() AssetKind { return a.kind }

// ID returns the asset id.
func (a *Asset) ID() string { return a.id }

// SetID changes the id and re-derives the file name, keeping the current
// extension.
func (a *Asset) SetID(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	extension := path.Ext(a.fileName)
	a.id = id
	a.fileName = id + extension
	return nil
}

// FileName returns the archive file name (id plus extension).
func (a *Asset) FileName() string { return a.fileName }

// Path returns the archive entry path, for example "images/image_0.png".
func (a *Asset) Path() string { return a.kind.Dir() + "/" + a.fileName }

// MediaType returns the sniffed media type, or "" before a url source
// has been fetched.
func (a *Asset) MediaType() string { return a.mediaType }

// Data returns the payload, or nil for an unfetched url source. The
// returned slice must not be modified.
func (a *Asset) Data() []byte { return a.data }

// SetData replaces the payload with raw bytes.
func (a *Asset) SetData(data []byte) error {
	return a.setSource(Source{Data: data})
}

// SetDataURL replaces the payload with a decoded data URL.
func (a *Asset) SetDataURL(dataURL string) error {
	return a.setSource(Source{DataURL: dataURL})
}

// DataURL returns the payload encoded as a data URL.
func (a *Asset) DataURL() string {
	if a.data == nil {
		return ""
	}
	return EncodeDataURL(a.mediaType, a.data)
}

// URL returns the remote source, or "" for an inline payload.
func (a *Asset) URL() string { return a.url }

// SetURL replaces the payload with a remote source.
func (a *Asset) SetURL(url string) error {
	return a.setSource(Source{URL: url})
}

// ParentAnimations returns the ids of animations that use this asset.
func (a *Asset) ParentAnimations() []string { return cloneStrings(a.parents) }

// AddParentAnimation records that animationID uses this asset.
func (a *Asset) AddParentAnimation(animationID string) error {
	if err := ValidateID(animationID); err != nil {
		return err
	}
	a.parents = appendUnique(a.parents, animationID)
	return nil
}

// RemoveParentAnimation drops a back-reference.
func (a *Asset) RemoveParentAnimation(animationID string) {
	for i, existing := range a.parents {
		if existing == animationID {
			a.parents = append(a.parents[:i:i], a.parents[i+1:]...)
			return
		}
	}
}

// Zip returns the compression options for this asset's entry.
func (a *Asset) Zip() archive.Options { return a.zip }

// SetZip sets the compression options for this asset's entry.
func (a *Asset) SetZip(options archive.Options) error {
	if err := options.Validate(); err != nil {
		return err
	}
	a.zip = options
	return nil
}

// Clone returns a deep copy.
func (a *Asset) Clone() *Asset {
	clone := *a
	clone.data = cloneBytes(a.data)
	clone.parents = cloneStrings(a.parents)
	return &clone
}

// Rename returns a copy of asset with id newID, keeping the current file
// extension. It fails when newID is invalid or the current file name has
// no recognized extension, rather than guessing one.
func Rename(asset *Asset, newID string) (*Asset, error) {
	if err := ValidateID(newID); err != nil {
		return nil, err
	}
	extension := strings.TrimPrefix(path.Ext(asset.fileName), ".")
	if _, ok := MediaTypeForExtension(extension); !ok {
		return nil, fmt.Errorf("%w: %s %q has no recognized file extension (%q)",
			ErrInvalidIdentifier, asset.kind, asset.id, asset.fileName)
	}
	renamed := asset.Clone()
	renamed.id = newID
	renamed.fileName = newID + "." + extension
	return renamed, nil
}

// RestoreAsset reconstructs an asset read from an archive entry. The
// file name is taken from the entry as stored.
func RestoreAsset(kind AssetKind, fileName string, data []byte) (*Asset, error) {
	id := strings.TrimSuffix(fileName, path.Ext(fileName))
	asset, err := NewAsset(kind, id, Source{Data: data})
	if err != nil {
		return nil, err
	}
	if asset.mediaType == "" {
		if mediaType, ok := MediaTypeForExtension(strings.TrimPrefix(path.Ext(fileName), ".")); ok {
			asset.mediaType = mediaType
		}
	}
	asset.fileName = fileName
	return asset, nil
}
