// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

// Package patch writes stamp payloads into already-built artifacts.
//
// Two addressing modes cover the two build flavors:
//
//   - Marker scan: Go binaries embed the reserved region through
//     lib/stamp, whose 14-byte marker makes it discoverable by a
//     linear scan of the file. Exactly one occurrence must exist and
//     the payload must match the region's declared capacity exactly;
//     anything else fails loudly and leaves the artifact untouched.
//   - Named section: non-Go ELF artifacts reserve the region as a
//     dedicated section at link time, and patching addresses it by
//     name through the section table.
//
// The read side (inspect, verify) additionally sees through gzip,
// zstd and lz4 streams so release archives can be examined without
// unpacking. Patching a compressed artifact is refused: the write
// path never guesses what the bytes underneath look like.
package patch
