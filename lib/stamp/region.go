// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package stamp

import "github.com/buildstamp/buildstamp/lib/section"

const (
	// MarkerLength is the size of the discovery marker that opens the
	// reserved region.
	MarkerLength = 14

	// RegionHeaderLength is the marker plus the two-byte declared
	// capacity that precede the section payload in the region.
	RegionHeaderLength = MarkerLength + 2
)

// region is the reserved byte region patched after the build. The
// layout is the discovery marker, the declared payload capacity
// (uint16, little-endian), then section.DefaultBufferSize payload
// bytes, all zero until a patch tool fills them in.
//
// The static initializer is what makes this work: the array lands in
// the binary's initialized data, so the marker and capacity are
// present in the file on disk where a patch tool can find them by
// scanning. The payload starts as zero bytes, which the section codec
// defines as "no fields present", so an unpatched binary behaves
// exactly like a stamped binary with nothing stamped.
//
// Go's package model guarantees a binary links at most one copy of
// this package and therefore at most one region. These initializer
// bytes must remain the only place the marker appears contiguously in
// a stamped binary; tools that search for the marker assemble their
// needle from pieces at runtime (see Marker) to keep that true.
var region = [RegionHeaderLength + section.DefaultBufferSize]byte{
	0xff, ' ', 'b', 'u', 'i', 'l', 'd', 's', 't', 'a', 'm', 'p', ' ', 0xff,
	section.DefaultBufferSize & 0xff, section.DefaultBufferSize >> 8,
}

// Marker returns a fresh copy of the 14-byte discovery marker. The
// bytes are copied out of the live region rather than written as a
// string literal so that importing this function does not plant a
// second contiguous marker in the caller's binary.
func Marker() []byte {
	marker := make([]byte, MarkerLength)
	copy(marker, region[:MarkerLength])
	return marker
}
