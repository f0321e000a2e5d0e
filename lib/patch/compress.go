// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package patch

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// compression identifies the stream format wrapped around an artifact,
// detected from its leading magic bytes.
type compression uint8

const (
	compressionNone compression = iota
	compressionGzip
	compressionZstd
	compressionLZ4
)

func (c compression) String() string {
	switch c {
	case compressionNone:
		return "uncompressed"
	case compressionGzip:
		return "gzip"
	case compressionZstd:
		return "zstd"
	case compressionLZ4:
		return "lz4"
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

// Magic prefixes of the stream formats release pipelines commonly wrap
// binaries in. gzip is the RFC 1952 two-byte magic, the others are the
// four-byte frame magics.
var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLZ4  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// detectCompression reports which stream format the leading bytes of
// an artifact announce, or compressionNone for anything unrecognized.
func detectCompression(head []byte) compression {
	switch {
	case bytes.HasPrefix(head, magicZstd):
		return compressionZstd
	case bytes.HasPrefix(head, magicLZ4):
		return compressionLZ4
	case bytes.HasPrefix(head, magicGzip):
		return compressionGzip
	}
	return compressionNone
}

// zstdDecoder is shared across calls. Created without a stream, it
// only serves DecodeAll and is safe for concurrent use.
var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("patch: zstd decoder initialization failed: %v", err))
	}
}

// decompress expands data according to the detected stream format. The
// whole image lands in memory; inspecting compressed artifacts is a
// tooling path, not a hot path.
func decompress(c compression, data []byte) ([]byte, error) {
	switch c {
	case compressionNone:
		return data, nil
	case compressionGzip:
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		expanded, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("decompressing gzip stream: %w", err)
		}
		return expanded, nil
	case compressionZstd:
		expanded, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing zstd stream: %w", err)
		}
		return expanded, nil
	case compressionLZ4:
		expanded, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("decompressing lz4 frame: %w", err)
		}
		return expanded, nil
	}
	return nil, fmt.Errorf("unknown compression tag %d", uint8(c))
}
