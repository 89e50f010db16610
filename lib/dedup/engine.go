// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

// Options configures an [Engine].
type Options struct {
	// Disabled keeps every admitted payload as its own asset, even when
	// the bytes are identical.
	Disabled bool

	// Fingerprinter computes keys. Nil uses [NewPerceptual].
	Fingerprinter Fingerprinter

	// Logger receives one debug record per duplicate. Nil discards.
	Logger *slog.Logger
}

// Stats summarizes an engine's work.
type Stats struct {
	Admitted   int
	Unique     int
	Duplicates int
}

type canonical struct {
	key   Key
	asset *lottie.Asset
}

// Engine assigns canonical assets. It is not safe for concurrent use;
// the builder drives it from one goroutine.
type Engine struct {
	disabled      bool
	fingerprinter Fingerprinter
	logger        *slog.Logger

	canonical map[lottie.AssetKind][]canonical
	next      map[lottie.AssetKind]int
	taken     map[string]bool
	stats     Stats
}

// NewEngine returns an empty engine.
func NewEngine(options Options) *Engine {
	fingerprinter := options.Fingerprinter
	if fingerprinter == nil {
		fingerprinter = NewPerceptual()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		disabled:      options.Disabled,
		fingerprinter: fingerprinter,
		logger:        logger,
		canonical:     make(map[lottie.AssetKind][]canonical),
		next:          make(map[lottie.AssetKind]int),
		taken:         make(map[string]bool),
	}
}

// Admit registers a payload of the given kind contributed by the
// animation parent and returns the canonical asset now representing it.
// An empty parent adds no back-reference. The payload must carry a
// recognized signature of the right kind; anything else fails with
// lottie.ErrInvalidAssetData.
func (e *Engine) Admit(kind lottie.AssetKind, data []byte, parent string) (*lottie.Asset, error) {
	if err := checkPayload(kind, data); err != nil {
		return nil, err
	}
	key, err := e.fingerprinter.Fingerprint(kind, data)
	if err != nil {
		return nil, err
	}
	e.stats.Admitted++

	if !e.disabled {
		for _, existing := range e.canonical[kind] {
			if !existing.key.Similar(key) {
				continue
			}
			if err := addParent(existing.asset, parent); err != nil {
				return nil, err
			}
			e.stats.Duplicates++
			e.logger.Debug("duplicate asset",
				"kind", kind.String(),
				"canonical", existing.asset.ID(),
				"digest", key.Digest().Short(),
				"parent", parent,
			)
			return existing.asset, nil
		}
	}

	asset, err := lottie.NewAsset(kind, e.nextID(kind), lottie.Source{Data: data})
	if err != nil {
		return nil, err
	}
	if err := addParent(asset, parent); err != nil {
		return nil, err
	}
	e.add(kind, key, asset)
	return asset, nil
}

// Register adds a caller-supplied asset as canonical under its own id
// without comparing it to earlier ones. Later admissions of similar
// content resolve to it. Register must be called before any Admit so
// that generated ids can avoid caller ids.
func (e *Engine) Register(asset *lottie.Asset) error {
	kind := asset.Kind()
	if err := checkPayload(kind, asset.Data()); err != nil {
		return fmt.Errorf("%s %q: %w", kind, asset.ID(), err)
	}
	if e.taken[asset.Path()] {
		return fmt.Errorf("%s %q: %w: file %s already used", kind, asset.ID(), lottie.ErrInvalidIdentifier, asset.Path())
	}
	key, err := e.fingerprinter.Fingerprint(kind, asset.Data())
	if err != nil {
		return fmt.Errorf("%s %q: %w", kind, asset.ID(), err)
	}
	e.stats.Admitted++
	e.add(kind, key, asset)
	return nil
}

// Assets returns the canonical assets of kind in admission order.
func (e *Engine) Assets(kind lottie.AssetKind) []*lottie.Asset {
	entries := e.canonical[kind]
	assets := make([]*lottie.Asset, len(entries))
	for i, entry := range entries {
		assets[i] = entry.asset
	}
	return assets
}

// Stats returns counters for logging.
func (e *Engine) Stats() Stats { return e.stats }

func (e *Engine) add(kind lottie.AssetKind, key Key, asset *lottie.Asset) {
	e.canonical[kind] = append(e.canonical[kind], canonical{key: key, asset: asset})
	e.taken[asset.ID()+"\x00"+kind.Dir()] = true
	e.taken[asset.Path()] = true
	e.stats.Unique++
}

// nextID returns "<kind>_<n>" for the next n not used by a registered
// asset of the same kind.
func (e *Engine) nextID(kind lottie.AssetKind) string {
	for {
		id := fmt.Sprintf("%s_%d", kind, e.next[kind])
		e.next[kind]++
		if !e.taken[id+"\x00"+kind.Dir()] {
			return id
		}
	}
}

func addParent(asset *lottie.Asset, parent string) error {
	if parent == "" {
		return nil
	}
	return asset.AddParentAnimation(parent)
}

// checkPayload requires a sniffable payload of the expected kind.
func checkPayload(kind lottie.AssetKind, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty %s payload", lottie.ErrInvalidAssetData, kind)
	}
	media, ok := lottie.Sniff(data)
	if !ok {
		return fmt.Errorf("%w: unrecognized %s payload", lottie.ErrInvalidAssetData, kind)
	}
	if sniffed, _ := media.Kind(); sniffed != kind {
		return fmt.Errorf("%w: %s payload holds %s", lottie.ErrInvalidAssetData, kind, media.Type)
	}
	return nil
}
