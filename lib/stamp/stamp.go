// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

// Package stamp exposes the build provenance patched into the running
// binary. Programs that want to report their own build metadata import
// this package, which reserves a fixed-size region in the compiled
// binary; a post-build patch step fills the region with actual values.
// No source code changes between builds, so the binary's compiled code
// is identical whether or not it was ever patched.
//
// Every accessor is infallible and non-blocking: an unpatched binary,
// a stale payload, or a corrupted region simply reports fields as
// absent. The region is decoded once, on first access, and the result
// never changes for the life of the process; accessors are safe to
// call from any goroutine without synchronization.
package stamp

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/blang/semver/v4"

	"github.com/buildstamp/buildstamp/lib/section"
)

// decoded parses the region payload exactly once. The bytes cannot
// change after process start (the patch step runs before execution),
// so a single decode serves every accessor.
var decoded = sync.OnceValue(func() section.Fields {
	return section.Decode(region[RegionHeaderLength:])
})

// GitSHA returns the full commit hash the binary was built from.
func GitSHA() (string, bool) { return decoded().Get(section.FieldGitSHA) }

// GitDescribe returns the `git describe --always --dirty` output for
// the built commit.
func GitDescribe() (string, bool) { return decoded().Get(section.FieldGitDescribe) }

// GitBranch returns the branch the binary was built from.
func GitBranch() (string, bool) { return decoded().Get(section.FieldGitBranch) }

// GitCommitTimestamp returns the author timestamp of the built commit
// in RFC 3339.
func GitCommitTimestamp() (string, bool) { return decoded().Get(section.FieldGitCommitTimestamp) }

// GitCommitDate returns the author date of the built commit
// (YYYY-MM-DD).
func GitCommitDate() (string, bool) { return decoded().Get(section.FieldGitCommitDate) }

// GitCommitMessage returns the first line of the built commit's
// message.
func GitCommitMessage() (string, bool) { return decoded().Get(section.FieldGitCommitMessage) }

// BuildTimestamp returns the build wall-clock time in RFC 3339 UTC.
func BuildTimestamp() (string, bool) { return decoded().Get(section.FieldBuildTimestamp) }

// BuildDate returns the build date (YYYY-MM-DD, UTC).
func BuildDate() (string, bool) { return decoded().Get(section.FieldBuildDate) }

// Custom returns the free-form value stamped by the build.
func Custom() (string, bool) { return decoded().Get(section.FieldCustom) }

// Fields returns the full decoded field set.
func Fields() section.Fields { return decoded() }

// Populated reports whether the binary carries any stamped field at
// all. False means the patch step never ran (or stamped nothing).
func Populated() bool { return decoded().Count() > 0 }

// Semver parses the stamped git describe output as a semantic version.
// Describe suffixes ("-12-g4f0c2db", "-dirty") surface as prerelease
// identifiers; a hash-only describe from an untagged repository does
// not parse and reports false.
func Semver() (semver.Version, bool) {
	describe, ok := GitDescribe()
	if !ok {
		return semver.Version{}, false
	}
	return SemverFromDescribe(describe)
}

// SemverFromDescribe parses any git describe output as a semantic
// version, with the same tolerance Semver applies to this binary's own
// stamp. Tools that decode stamps out of other artifacts use this to
// apply version checks to them.
func SemverFromDescribe(describe string) (semver.Version, bool) {
	version, err := semver.ParseTolerant(describe)
	if err != nil {
		return semver.Version{}, false
	}
	return version, true
}

// Summary returns a one-line version string suitable for --version
// output: the describe output (or commit hash), the short hash, and
// the build time, with "unknown" standing in for absent fields and
// "unstamped" when nothing was stamped at all.
func Summary() string {
	fields := decoded()
	if fields.Count() == 0 {
		return "unstamped"
	}

	version := "unknown"
	if describe, ok := fields.Get(section.FieldGitDescribe); ok {
		version = describe
	}
	commit := "unknown"
	if sha, ok := fields.Get(section.FieldGitSHA); ok {
		commit = shortHash(sha)
	}
	built := "unknown"
	if when, ok := fields.Get(section.FieldBuildTimestamp); ok {
		built = when
	}
	return fmt.Sprintf("%s (%s, built %s)", version, commit, built)
}

// Full returns detailed version information including the Go runtime
// and platform, one item per line.
func Full() string {
	var b strings.Builder
	b.WriteString(Summary())
	fmt.Fprintf(&b, "\n  Go: %s\n  Platform: %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return b.String()
}

// shortHash abbreviates a commit hash to 12 characters, enough to be
// unambiguous in any realistic repository.
func shortHash(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
