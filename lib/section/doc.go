// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

// Package section defines the binary layout of a buildstamp section: a
// fixed-size byte region reserved inside a compiled artifact and filled
// in by a post-build patch step.
//
// A section buffer is exactly N bytes, where N is chosen at build
// integration time (DefaultBufferSize unless overridden) and must lie
// in [MinBufferSize, MaxBufferSize]. The layout is:
//
//	offset 0      version tag: 0x00 until patched (the artifact ships
//	              with an all-zero region), 0x01 for the current format;
//	              any other value decodes as "no fields present"
//	offset 1..19  nine uint16 little-endian end offsets, one per field
//	              in Field order, relative to the start of the string
//	              pool; field i occupies pool[end[i-1]:end[i]] with
//	              end[-1] = 0, and start == end means the field is absent
//	offset 19..N  string pool: present values concatenated in field
//	              order, zero padding to exactly N bytes
//
// Encoding is strict: a value set that does not fit the buffer fails
// with OverflowError rather than truncating, and an out-of-range buffer
// size fails with ErrBufferSize before any bytes are produced.
//
// Decoding is the opposite: it never fails. The decoder runs inside
// arbitrary target programs against whatever bytes the region happens
// to hold, so every anomaly (unpatched region, foreign tag, descriptor
// pointing outside the buffer, invalid UTF-8) degrades to absent fields
// instead of an error. An all-zero buffer of any length decodes to the
// empty field set.
package section
