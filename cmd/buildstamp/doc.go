// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

// buildstamp is the build-time half of the stamping system: it
// collects git and build metadata, encodes it into a fixed-size
// section payload, and writes it into built artifacts.
//
// Usage:
//
//	buildstamp gen [flags]
//	buildstamp patch [flags] TARGET
//	buildstamp inspect [flags] TARGET
//	buildstamp verify [flags] TARGET
//	buildstamp version
//
// Exit codes: 0 on success, 1 when verify finds a problem (unstamped
// artifact, manifest divergence, failed --semver check), 2 for usage,
// configuration, and patch errors.
package main
