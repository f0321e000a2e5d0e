// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package section

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// DefaultBufferSize is the section size used when the build
	// integration does not choose one. 512 bytes comfortably holds all
	// nine fields for typical repositories.
	DefaultBufferSize = 512

	// MinBufferSize is the smallest valid section. The 19-byte header
	// plus a little pool headroom; anything smaller cannot carry a
	// useful payload.
	MinBufferSize = 33

	// MaxBufferSize is the largest valid section. The descriptor table
	// stores 16-bit offsets, so the pool cannot extend past 65535.
	MaxBufferSize = 65535
)

const (
	// tagUnpatched is what an artifact ships with: the reserved region
	// is all zero until the patch step runs.
	tagUnpatched = 0x00

	// tagVersion1 marks the current layout.
	tagVersion1 = 0x01
)

// headerLength is the version tag plus the descriptor table.
const headerLength = 1 + 2*int(FieldCount)

// ErrBufferSize reports a section size outside
// [MinBufferSize, MaxBufferSize].
var ErrBufferSize = errors.New("section buffer size out of range")

// OverflowError reports a field set too large for its buffer. Encoding
// never truncates: either every value fits or nothing is produced.
type OverflowError struct {
	// Required is the buffer size the set would need.
	Required int

	// Available is the buffer size that was offered.
	Available int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("field values need a %d byte section but only %d bytes are available", e.Required, e.Available)
}

// ValidateBufferSize checks that size is a legal section size.
func ValidateBufferSize(size int) error {
	if size < MinBufferSize || size > MaxBufferSize {
		return fmt.Errorf("%d bytes (valid range %d to %d): %w", size, MinBufferSize, MaxBufferSize, ErrBufferSize)
	}
	return nil
}

// Encode serializes the field set into a buffer of exactly size bytes.
// Unused pool capacity is zero. Returns ErrBufferSize if size is out of
// range and OverflowError if the values do not fit; no partial buffer is
// ever returned.
func Encode(fields Fields, size int) ([]byte, error) {
	if err := ValidateBufferSize(size); err != nil {
		return nil, err
	}
	required := headerLength
	for f := Field(0); f < FieldCount; f++ {
		if fields.present[f] {
			required += len(fields.values[f])
		}
	}
	if required > size {
		return nil, &OverflowError{Required: required, Available: size}
	}

	buf := make([]byte, size)
	buf[0] = tagVersion1
	end := 0
	for f := Field(0); f < FieldCount; f++ {
		if fields.present[f] {
			copy(buf[headerLength+end:], fields.values[f])
			end += len(fields.values[f])
		}
		binary.LittleEndian.PutUint16(buf[1+2*int(f):], uint16(end))
	}
	return buf, nil
}

// Decode recovers a field set from a section buffer. Decode never
// fails: a buffer that is too short, carries an unknown version tag, or
// is all zero yields the empty set, and a field whose descriptor span is
// inverted, out of bounds, or not valid UTF-8 is simply absent. Fields
// adjacent to a corrupted descriptor are unaffected unless their own
// span uses it.
func Decode(buf []byte) Fields {
	var fields Fields
	if len(buf) < headerLength || buf[0] != tagVersion1 {
		return fields
	}
	pool := buf[headerLength:]
	start := 0
	for f := Field(0); f < FieldCount; f++ {
		end := int(binary.LittleEndian.Uint16(buf[1+2*int(f):]))
		if start < end && end <= len(pool) {
			value := pool[start:end]
			if utf8.Valid(value) {
				fields.values[f] = string(value)
				fields.present[f] = true
			}
		}
		start = end
	}
	return fields
}
