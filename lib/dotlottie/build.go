// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dotlottie

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/lottiepack/lib/archive"
	"github.com/bureau-foundation/lottiepack/lib/assetref"
	"github.com/bureau-foundation/lottiepack/lib/dedup"
	"github.com/bureau-foundation/lottiepack/lib/fetch"
	"github.com/bureau-foundation/lottiepack/lib/lottie"
	"github.com/bureau-foundation/lottiepack/lib/manifest"
	"github.com/bureau-foundation/lottiepack/lib/version"
)

// MaxConcurrentFetches bounds the url fetches in flight during a build.
const MaxConcurrentFetches = 8

// Compression holds per-category entry options. A zero field defers to
// BuildOptions.DefaultZip.
type Compression struct {
	Animations    archive.Options `yaml:"animations"`
	Themes        archive.Options `yaml:"themes"`
	StateMachines archive.Options `yaml:"state_machines"`
	GlobalInputs  archive.Options `yaml:"global_inputs"`
	Images        archive.Options `yaml:"images"`
	Audio         archive.Options `yaml:"audio"`
	Fonts         archive.Options `yaml:"fonts"`
}

func (c Compression) forKind(kind lottie.AssetKind) archive.Options {
	switch kind {
	case lottie.KindImage:
		return c.Images
	case lottie.KindAudio:
		return c.Audio
	case lottie.KindFont:
		return c.Fonts
	}
	return archive.Options{}
}

// BuildOptions controls [Container.Build]. The zero value builds a
// second generation container with perceptual deduplication.
type BuildOptions struct {
	// Version selects the manifest generation. Zero means v2.
	Version manifest.Generation

	// DisableDedup stores every embedded payload as its own asset.
	DisableDedup bool

	// Fingerprinter compares payloads for deduplication. Nil uses
	// dedup.NewPerceptual.
	Fingerprinter dedup.Fingerprinter

	// Fetcher resolves url sources. A build with url sources and no
	// fetcher fails with lottie.ErrFetchFailed.
	Fetcher fetch.Fetcher

	// Generator is written to the manifest. Empty uses
	// version.Generator.
	Generator string

	// Logger receives phase records at debug level and a summary at
	// info level. Nil discards.
	Logger *slog.Logger

	// Compression sets entry options per category.
	Compression Compression

	// DefaultZip applies to entries with no options of their own and no
	// category options. When it is zero too, options are chosen from
	// the entry's media type (archive.ForContent).
	DefaultZip archive.Options
}

func (o *BuildOptions) normalize() error {
	if o.Version == 0 {
		o.Version = manifest.GenerationV2
	}
	if o.Version != manifest.GenerationV1 && o.Version != manifest.GenerationV2 {
		return fmt.Errorf("%w: unknown manifest generation %d", lottie.ErrSchemaViolation, int(o.Version))
	}
	if o.Generator == "" {
		o.Generator = version.Generator()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o.DefaultZip.Validate()
}

// entryOptions picks the options for one entry: the entry's own, then
// the category's, then DefaultZip, then the media type default.
func (o *BuildOptions) entryOptions(own, category archive.Options, mediaType string) archive.Options {
	switch {
	case !own.IsZero():
		return own
	case !category.IsZero():
		return category
	case !o.DefaultZip.IsZero():
		return o.DefaultZip
	}
	return archive.ForContent(mediaType)
}

// Build writes the container to a new archive. It fails without
// returning any bytes if a reference does not resolve
// (lottie.ErrUnresolvedSource), a url cannot be fetched
// (lottie.ErrFetchFailed), a payload is unusable
// (lottie.ErrInvalidAssetData) or the manifest is invalid for the
// requested generation (lottie.ErrSchemaViolation). A Build started
// while another is running on the same container fails with
// lottie.ErrBuildInProgress.
//
// The container itself is not modified: fetched payloads and rewritten
// documents live only in the archive.
func (c *Container) Build(ctx context.Context, options BuildOptions) ([]byte, error) {
	if !c.building.CompareAndSwap(false, true) {
		return nil, lottie.ErrBuildInProgress
	}
	defer c.building.Store(false)

	if err := options.normalize(); err != nil {
		return nil, err
	}
	graph := c.snapshot()
	logger := options.Logger.With("generation", options.Version.String())

	if err := checkGeneration(graph, options.Version); err != nil {
		return nil, err
	}
	if err := checkReferences(graph); err != nil {
		return nil, err
	}
	logger.Debug("references resolved",
		"animations", len(graph.animations),
		"themes", len(graph.themes),
	)

	fetched, err := fetchSources(ctx, graph, options.Fetcher)
	if err != nil {
		return nil, err
	}
	if fetched > 0 {
		logger.Debug("url sources fetched", "count", fetched)
		// A fetched theme may turn out to be a stylesheet.
		if err := checkGeneration(graph, options.Version); err != nil {
			return nil, err
		}
	}

	build := &builder{
		options: &options,
		graph:   graph,
		engine: dedup.NewEngine(dedup.Options{
			Disabled:      options.DisableDedup,
			Fingerprinter: options.Fingerprinter,
			Logger:        logger,
		}),
		documents: make(map[string][]byte, len(graph.animations)),
		themes:    make(map[string]*lottie.Theme, len(graph.themes)),
	}
	if err := build.externalize(); err != nil {
		return nil, err
	}
	assets, err := build.linkAssets()
	if err != nil {
		return nil, err
	}

	manifestData, err := build.manifest()
	if err != nil {
		return nil, err
	}
	data, err := build.write(manifestData, assets)
	if err != nil {
		return nil, err
	}

	stats := build.engine.Stats()
	logger.Info("container built",
		"animations", len(graph.animations),
		"assets", len(assets),
		"duplicates", stats.Duplicates,
		"bytes", len(data),
	)
	return data, nil
}

// checkGeneration rejects documents the requested manifest generation
// cannot carry.
func checkGeneration(graph *snapshot, generation manifest.Generation) error {
	if len(graph.animations) == 0 {
		return fmt.Errorf("%w: container has no animations", lottie.ErrSchemaViolation)
	}
	switch generation {
	case manifest.GenerationV1:
		if len(graph.globalInputs) > 0 {
			return fmt.Errorf("%w: global inputs %q cannot be stored in a v1 container",
				lottie.ErrSchemaViolation, graph.globalInputs[0].ID())
		}
		if graph.initial.StateMachine != "" || graph.initial.GlobalInputs != "" {
			return fmt.Errorf("%w: v1 containers only record an initial animation", lottie.ErrSchemaViolation)
		}
	case manifest.GenerationV2:
		for _, theme := range graph.themes {
			if theme.IsStylesheet() {
				return fmt.Errorf("%w: stylesheet theme %q requires a v1 container",
					lottie.ErrSchemaViolation, theme.ID())
			}
		}
	}
	return nil
}

// checkReferences verifies every id one document uses names another
// document of the graph.
func checkReferences(graph *snapshot) error {
	animations := make(map[string]bool, len(graph.animations))
	for _, animation := range graph.animations {
		animations[animation.ID()] = true
	}
	themes := make(map[string]*lottie.Theme, len(graph.themes))
	for _, theme := range graph.themes {
		themes[theme.ID()] = theme
	}
	stateMachines := make(map[string]bool, len(graph.stateMachines))
	for _, stateMachine := range graph.stateMachines {
		stateMachines[stateMachine.ID()] = true
	}
	globalInputs := make(map[string]bool, len(graph.globalInputs))
	for _, document := range graph.globalInputs {
		globalInputs[document.ID()] = true
	}

	var errs []error
	dangling := func(owner, target, id string) {
		errs = append(errs, fmt.Errorf("%w: %s refers to unknown %s %q", lottie.ErrUnresolvedSource, owner, target, id))
	}

	for _, animation := range graph.animations {
		owner := fmt.Sprintf("animation %q", animation.ID())
		for _, id := range animation.Themes() {
			if themes[id] == nil {
				dangling(owner, "theme", id)
			}
		}
		for _, id := range animation.StateMachines() {
			if !stateMachines[id] {
				dangling(owner, "state machine", id)
			}
		}
		for _, id := range animation.GlobalInputs() {
			if !globalInputs[id] {
				dangling(owner, "global inputs", id)
			}
		}
	}
	for _, theme := range graph.themes {
		owner := fmt.Sprintf("theme %q", theme.ID())
		for _, id := range theme.Animations() {
			if !animations[id] {
				dangling(owner, "animation", id)
			}
		}
		for _, rule := range theme.Rules() {
			for _, id := range rule.Animations {
				if !animations[id] {
					dangling(fmt.Sprintf("%s rule %q", owner, rule.ID), "animation", id)
				}
			}
		}
	}
	for _, kind := range lottie.AssetKinds {
		for _, asset := range graph.assets[kind] {
			for _, id := range asset.ParentAnimations() {
				if !animations[id] {
					dangling(fmt.Sprintf("%s %q", kind, asset.ID()), "animation", id)
				}
			}
		}
	}
	for _, document := range graph.globalInputs {
		owner := fmt.Sprintf("global inputs %q", document.ID())
		for _, binding := range document.ThemeBindings() {
			if themes[binding.Theme] == nil {
				dangling(owner, "theme", binding.Theme)
			}
		}
	}

	initial := graph.initial
	if initial.Animation != "" && !animations[initial.Animation] {
		dangling("initial selection", "animation", initial.Animation)
	}
	if initial.StateMachine != "" && !stateMachines[initial.StateMachine] {
		dangling("initial selection", "state machine", initial.StateMachine)
	}
	if initial.GlobalInputs != "" && !globalInputs[initial.GlobalInputs] {
		dangling("initial selection", "global inputs", initial.GlobalInputs)
	}
	return errors.Join(errs...)
}

// fetchJob is one url source. apply runs on the build goroutine after
// every fetch has succeeded.
type fetchJob struct {
	owner string
	url   string
	apply func(data []byte) error
}

// fetchSources resolves every url-backed animation, theme and asset.
// Fetches run concurrently; the graph is changed only once all of them
// have succeeded.
func fetchSources(ctx context.Context, graph *snapshot, fetcher fetch.Fetcher) (int, error) {
	var jobs []fetchJob
	for _, animation := range graph.animations {
		if animation.URL() != "" {
			jobs = append(jobs, fetchJob{
				owner: fmt.Sprintf("animation %q", animation.ID()),
				url:   animation.URL(),
				apply: animation.SetData,
			})
		}
	}
	for i, theme := range graph.themes {
		if theme.URL() == "" {
			continue
		}
		jobs = append(jobs, fetchJob{
			owner: fmt.Sprintf("theme %q", theme.ID()),
			url:   theme.URL(),
			apply: func(data []byte) error {
				parsed, err := lottie.ParseTheme(theme.ID(), data)
				if err != nil {
					return err
				}
				parsed.SetName(theme.Name())
				if scope := theme.Animations(); len(scope) > 0 {
					if err := parsed.SetAnimations(scope); err != nil {
						return err
					}
				}
				if err := parsed.SetZip(theme.Zip()); err != nil {
					return err
				}
				graph.themes[i] = parsed
				return nil
			},
		})
	}
	for _, kind := range lottie.AssetKinds {
		for _, asset := range graph.assets[kind] {
			if asset.URL() != "" {
				jobs = append(jobs, fetchJob{
					owner: fmt.Sprintf("%s %q", kind, asset.ID()),
					url:   asset.URL(),
					apply: asset.SetData,
				})
			}
		}
	}
	if len(jobs) == 0 {
		return 0, nil
	}
	if fetcher == nil {
		return 0, fmt.Errorf("%w: %s has url %s but no fetcher is configured",
			lottie.ErrFetchFailed, jobs[0].owner, jobs[0].url)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([][]byte, len(jobs))
	errs := make([]error, len(jobs))
	semaphore := make(chan struct{}, MaxConcurrentFetches)
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			response, err := fetcher.Fetch(ctx, job.url)
			if err == nil && len(response.Data) == 0 {
				err = errors.New("empty response")
			}
			if err != nil {
				errs[i] = fmt.Errorf("%w: %s from %s: %v", lottie.ErrFetchFailed, job.owner, job.url, err)
				cancel()
				return
			}
			results[i] = response.Data
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return 0, err
	}
	for i, job := range jobs {
		if err := job.apply(results[i]); err != nil {
			return 0, fmt.Errorf("%s from %s: %w", job.owner, job.url, err)
		}
	}
	return len(jobs), nil
}

// builder carries the state of one Build between phases.
type builder struct {
	options *BuildOptions
	graph   *snapshot
	engine  *dedup.Engine

	// documents holds the rewritten animation JSON by animation id.
	documents map[string][]byte

	// themes holds the rewritten themes by theme id.
	themes map[string]*lottie.Theme

	// themeParents holds the animations each theme applies to.
	themeParents map[string][]string
}

// externalize registers caller assets with the dedup engine, then
// moves every embedded payload out of the animations and themes.
func (b *builder) externalize() error {
	for _, kind := range lottie.AssetKinds {
		for _, asset := range b.graph.assets[kind] {
			if err := b.engine.Register(asset); err != nil {
				return err
			}
		}
	}

	for _, animation := range b.graph.animations {
		stripped, _, err := assetref.Externalize(animation.Data(), b.engine, animation.ID())
		if err != nil {
			return fmt.Errorf("animation %q: %w", animation.ID(), err)
		}
		b.documents[animation.ID()] = stripped
	}

	b.themeParents = make(map[string][]string, len(b.graph.themes))
	for _, theme := range b.graph.themes {
		parents := b.parentsOf(theme)
		b.themeParents[theme.ID()] = parents
		rewritten, _, err := assetref.ExternalizeTheme(theme, b.engine, parents)
		if err != nil {
			return err
		}
		b.themes[theme.ID()] = rewritten
	}
	b.options.Logger.Debug("payloads externalized", "admitted", b.engine.Stats().Admitted)
	return nil
}

// parentsOf returns the animations a theme applies to: its own scope,
// else the animations that list it, else every animation.
func (b *builder) parentsOf(theme *lottie.Theme) []string {
	if scope := theme.Animations(); len(scope) > 0 {
		return scope
	}
	var parents []string
	for _, animation := range b.graph.animations {
		for _, id := range animation.Themes() {
			if id == theme.ID() {
				parents = append(parents, animation.ID())
				break
			}
		}
	}
	if len(parents) > 0 {
		return parents
	}
	for _, animation := range b.graph.animations {
		parents = append(parents, animation.ID())
	}
	return parents
}

// linkAssets attributes every referenced path to the documents that use
// it, checks that each reference names a stored asset and drops assets
// no animation uses. Survivors are returned in archive order.
func (b *builder) linkAssets() ([]*lottie.Asset, error) {
	byPath := make(map[string]*lottie.Asset)
	for _, kind := range lottie.AssetKinds {
		for _, asset := range b.engine.Assets(kind) {
			byPath[asset.Path()] = asset
		}
	}

	var errs []error
	link := func(owner, entryPath string, parents []string) {
		asset, ok := byPath[entryPath]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s refers to %s, which is not in the container",
				lottie.ErrUnresolvedSource, owner, entryPath))
			return
		}
		if parents == nil {
			return
		}
		for _, parent := range parents {
			if err := asset.AddParentAnimation(parent); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, animation := range b.graph.animations {
		owner := fmt.Sprintf("animation %q", animation.ID())
		for _, entryPath := range assetref.References(b.documents[animation.ID()]) {
			link(owner, entryPath, []string{animation.ID()})
		}
	}
	for _, theme := range b.graph.themes {
		owner := fmt.Sprintf("theme %q", theme.ID())
		for _, entryPath := range assetref.ThemeReferences(b.themes[theme.ID()]) {
			// Embedded theme images were attributed per rule on
			// admission; only assets added by path need the theme's
			// animations.
			var parents []string
			if asset, ok := byPath[entryPath]; ok && len(asset.ParentAnimations()) == 0 {
				parents = b.themeParents[theme.ID()]
			}
			link(owner, entryPath, parents)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	var kept []*lottie.Asset
	for _, kind := range lottie.AssetKinds {
		for _, asset := range b.engine.Assets(kind) {
			if len(asset.ParentAnimations()) == 0 {
				b.options.Logger.Debug("pruned orphan asset", "kind", kind.String(), "id", asset.ID())
				continue
			}
			kept = append(kept, asset)
		}
	}
	return kept, nil
}

// manifest projects the graph onto the requested generation and
// validates the result.
func (b *builder) manifest() ([]byte, error) {
	if b.options.Version == manifest.GenerationV1 {
		return b.manifestV1().Marshal()
	}
	return b.manifestV2().Marshal()
}

func (b *builder) manifestV2() *manifest.V2 {
	projected := &manifest.V2{
		Version:   manifest.VersionV2,
		Generator: b.options.Generator,
	}
	if initial := b.graph.initial; initial != (Initial{}) {
		projected.Initial = &manifest.Initial{
			Animation:    initial.Animation,
			StateMachine: initial.StateMachine,
			GlobalInputs: initial.GlobalInputs,
		}
	}
	for _, animation := range b.graph.animations {
		projected.Animations = append(projected.Animations, manifest.V2Animation{
			ID:           animation.ID(),
			Name:         animation.Name(),
			InitialTheme: animation.InitialTheme(),
			Background:   animation.Background(),
			Themes:       animation.Themes(),
		})
	}
	for _, theme := range b.graph.themes {
		projected.Themes = append(projected.Themes, manifest.Entry{ID: theme.ID(), Name: theme.Name()})
	}
	for _, stateMachine := range b.graph.stateMachines {
		projected.StateMachines = append(projected.StateMachines, manifest.Entry{ID: stateMachine.ID(), Name: stateMachine.Name()})
	}
	for _, document := range b.graph.globalInputs {
		projected.GlobalInputs = append(projected.GlobalInputs, manifest.Entry{ID: document.ID(), Name: document.Name()})
	}
	return projected
}

func (b *builder) manifestV1() *manifest.V1 {
	metadata := b.graph.metadata
	projected := &manifest.V1{
		Version:           manifest.VersionV1,
		Generator:         b.options.Generator,
		Author:            metadata.Author,
		Description:       metadata.Description,
		Keywords:          metadata.Keywords,
		Revision:          metadata.Revision,
		ActiveAnimationID: b.graph.initial.Animation,
		Custom:            metadata.Custom,
	}
	for _, animation := range b.graph.animations {
		playback := lottie.DefaultPlayback()
		if own := animation.Playback(); own != nil {
			playback = *own
		}
		entry := manifest.V1AnimationFor(animation.ID(), playback)
		entry.DefaultTheme = animation.InitialTheme()
		entry.DefaultActiveAnimation = animation.ID() == b.graph.initial.Animation
		projected.Animations = append(projected.Animations, entry)
	}
	for _, theme := range b.graph.themes {
		projected.Themes = append(projected.Themes, manifest.V1Theme{
			ID:         theme.ID(),
			Animations: b.themeParents[theme.ID()],
		})
	}
	for _, stateMachine := range b.graph.stateMachines {
		projected.States = append(projected.States, stateMachine.ID())
	}
	return projected
}

// write emits the manifest followed by every document and asset in a
// fixed order.
func (b *builder) write(manifestData []byte, assets []*lottie.Asset) ([]byte, error) {
	var buffer bytes.Buffer
	writer := archive.NewWriter(&buffer)
	options := b.options
	compression := options.Compression
	generation := options.Version

	add := func(name string, data []byte, entryOptions archive.Options) error {
		if err := writer.Add(name, data, entryOptions); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		return nil
	}

	if err := add(ManifestPath, manifestData, options.entryOptions(archive.Options{}, archive.Options{}, "application/json")); err != nil {
		return nil, err
	}
	for _, animation := range b.graph.animations {
		entryOptions := options.entryOptions(animation.Zip(), compression.Animations, "application/json")
		if err := add(AnimationPath(animation.ID()), b.documents[animation.ID()], entryOptions); err != nil {
			return nil, err
		}
	}
	for _, theme := range b.graph.themes {
		rewritten := b.themes[theme.ID()]
		data := []byte(rewritten.Stylesheet())
		mediaType := "text/css"
		if !rewritten.IsStylesheet() {
			var err error
			if data, err = rewritten.MarshalRules(); err != nil {
				return nil, fmt.Errorf("theme %q: %w", theme.ID(), err)
			}
			mediaType = "application/json"
		}
		entryOptions := options.entryOptions(theme.Zip(), compression.Themes, mediaType)
		if err := add(ThemePath(generation, rewritten), data, entryOptions); err != nil {
			return nil, err
		}
	}
	for _, stateMachine := range b.graph.stateMachines {
		entryOptions := options.entryOptions(stateMachine.Zip(), compression.StateMachines, "application/json")
		if err := add(StateMachinePath(generation, stateMachine.ID()), stateMachine.Data(), entryOptions); err != nil {
			return nil, err
		}
	}
	for _, document := range b.graph.globalInputs {
		data, err := document.Marshal()
		if err != nil {
			return nil, fmt.Errorf("global inputs %q: %w", document.ID(), err)
		}
		entryOptions := options.entryOptions(document.Zip(), compression.GlobalInputs, "application/json")
		if err := add(GlobalInputsPath(document.ID()), data, entryOptions); err != nil {
			return nil, err
		}
	}
	for _, asset := range assets {
		entryOptions := options.entryOptions(asset.Zip(), compression.forKind(asset.Kind()), asset.MediaType())
		if err := add(asset.Path(), asset.Data(), entryOptions); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	options.Logger.Debug("archive written", "entries", writer.Len())
	return buffer.Bytes(), nil
}
