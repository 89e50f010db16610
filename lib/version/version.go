// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

// Stamped by the release build:
//
//	go build -ldflags "-X github.com/bureau-foundation/lottiepack/lib/version.Version=1.4.0"
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
)

// generatorName prefixes the manifest generator tag.
const generatorName = "@bureau-foundation/lottiepack"

// Build is the resolved identity of the running binary.
type Build struct {
	Version   string
	Commit    string
	Dirty     bool
	BuildTime string
}

var readBuildInfo = sync.OnceValues(debug.ReadBuildInfo)

// Resolve returns the stamped values, filling unstamped ones from the
// build information the Go toolchain embeds.
func Resolve() Build {
	build := Build{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		BuildTime: BuildTime,
	}
	info, ok := readBuildInfo()
	if !ok {
		return build
	}
	if build.Version == "0.1.0-dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		build.Version = strings.TrimPrefix(info.Main.Version, "v")
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if build.Commit == "unknown" && len(setting.Value) >= 7 {
				build.Commit = setting.Value[:7]
			}
		case "vcs.time":
			if build.BuildTime == "unknown" {
				build.BuildTime = setting.Value
			}
		case "vcs.modified":
			// Only meaningful alongside the VCS revision.
			if GitCommit == "unknown" && setting.Value == "true" {
				build.Dirty = true
			}
		}
	}
	return build
}

// String formats the build as "1.4.0 (abc1234-dirty, 2026-...)".
func (b Build) String() string {
	commit := b.Commit
	if b.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s, %s)", b.Version, commit, b.BuildTime)
}

// Full returns the build line followed by the toolchain and platform,
// for `lottiepack version`.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Resolve(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns the version number alone.
func Short() string {
	return Resolve().Version
}

// Generator returns the manifest generator tag,
// "@bureau-foundation/lottiepack@<version>".
func Generator() string {
	return generatorName + "@" + Short()
}
