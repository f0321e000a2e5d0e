// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package patch

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/buildstamp/buildstamp/lib/stamp"
)

var (
	// ErrRegionNotFound means no stamp region marker is present in the
	// artifact. For Go binaries this usually means the target does not
	// import the stamp library, or the linker dropped the region
	// because nothing references it.
	ErrRegionNotFound = errors.New("stamp region not found")

	// ErrMultipleRegions means more than one marker was found.
	// Patching would be ambiguous, so the artifact is left untouched.
	ErrMultipleRegions = errors.New("multiple stamp regions found")

	// ErrSizeMismatch means the payload length does not equal the
	// region's declared capacity. Payloads are never truncated or
	// padded at patch time; the payload producer and the embedded
	// region must agree on the buffer size.
	ErrSizeMismatch = errors.New("payload length does not match region capacity")

	// ErrCompressedArtifact means the patch target is a compressed
	// stream. Writing into it would corrupt the stream; decompress,
	// patch, recompress.
	ErrCompressedArtifact = errors.New("cannot patch a compressed artifact")
)

// scanChunkSize is how much of the target is read per iteration while
// scanning for the marker. Chunks overlap by one byte less than the
// marker length so a marker straddling a chunk boundary is still seen.
const scanChunkSize = 1 << 20

// Location describes where a stamp region sits inside an artifact.
// Offset is the file offset of the marker's first byte; the payload
// begins at PayloadOffset and runs for Capacity bytes.
type Location struct {
	Offset   int64
	Capacity int
}

// PayloadOffset returns the file offset of the first payload byte,
// just past the marker and the capacity field.
func (l Location) PayloadOffset() int64 {
	return l.Offset + stamp.RegionHeaderLength
}

// Locate finds the stamp region in the artifact at path without
// modifying anything. The artifact must be uncompressed; a compressed
// stream simply does not contain the marker and reports
// ErrRegionNotFound.
func Locate(path string) (Location, error) {
	file, err := os.Open(path)
	if err != nil {
		return Location{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Location{}, fmt.Errorf("stating %s: %w", path, err)
	}
	location, err := locateIn(file, info.Size())
	if err != nil {
		return Location{}, fmt.Errorf("locating stamp region in %s: %w", path, err)
	}
	return location, nil
}

// File patches the stamp region of the artifact at path in place. The
// artifact must be an uncompressed image containing exactly one region
// whose declared capacity equals len(payload); the payload then
// replaces the region's payload bytes byte for byte. An advisory
// exclusive lock covers the write so concurrent patch invocations
// serialize. On any error the artifact is unchanged.
func File(path string, payload []byte) (Location, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return Location{}, fmt.Errorf("opening %s for patching: %w", path, err)
	}
	defer file.Close()

	if err := lockExclusive(file); err != nil {
		return Location{}, err
	}

	var head [4]byte
	headLen, err := file.ReadAt(head[:], 0)
	if err != nil && err != io.EOF {
		return Location{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if c := detectCompression(head[:headLen]); c != compressionNone {
		return Location{}, fmt.Errorf("%s is a %s stream: %w", path, c, ErrCompressedArtifact)
	}

	info, err := file.Stat()
	if err != nil {
		return Location{}, fmt.Errorf("stating %s: %w", path, err)
	}
	location, err := locateIn(file, info.Size())
	if err != nil {
		return Location{}, fmt.Errorf("patching %s: %w", path, err)
	}
	if location.Capacity != len(payload) {
		return Location{}, fmt.Errorf("patching %s: payload is %d bytes, region capacity is %d: %w",
			path, len(payload), location.Capacity, ErrSizeMismatch)
	}

	if _, err := file.WriteAt(payload, location.PayloadOffset()); err != nil {
		return Location{}, fmt.Errorf("writing payload to %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return Location{}, fmt.Errorf("closing %s: %w", path, err)
	}
	return location, nil
}

// locateIn scans size bytes of r for the region marker, requires
// exactly one occurrence, and reads the declared capacity from the
// header that follows it.
func locateIn(r io.ReaderAt, size int64) (Location, error) {
	offsets, err := findMarkers(io.NewSectionReader(r, 0, size), stamp.Marker())
	if err != nil {
		return Location{}, fmt.Errorf("scanning for region marker: %w", err)
	}
	switch {
	case len(offsets) == 0:
		return Location{}, ErrRegionNotFound
	case len(offsets) > 1:
		return Location{}, fmt.Errorf("%d markers at offsets %v: %w", len(offsets), offsets, ErrMultipleRegions)
	}
	offset := offsets[0]

	var header [2]byte
	if _, err := r.ReadAt(header[:], offset+stamp.MarkerLength); err != nil {
		return Location{}, fmt.Errorf("reading region header at offset %d: %w", offset, err)
	}
	capacity := int(binary.LittleEndian.Uint16(header[:]))

	if end := offset + stamp.RegionHeaderLength + int64(capacity); end > size {
		return Location{}, fmt.Errorf("region at offset %d declares %d payload bytes but the file ends %d bytes short",
			offset, capacity, end-size)
	}
	return Location{Offset: offset, Capacity: capacity}, nil
}

// findMarkers returns the offset of every occurrence of needle in r.
// The stream is read in fixed-size chunks; each chunk keeps the last
// len(needle)-1 bytes of its predecessor so occurrences spanning a
// chunk boundary are found exactly once.
func findMarkers(r io.Reader, needle []byte) ([]int64, error) {
	var offsets []int64
	buf := make([]byte, scanChunkSize+len(needle)-1)
	carry := 0
	base := int64(0)
	for {
		readCount, err := io.ReadFull(r, buf[carry:])
		window := buf[:carry+readCount]

		searched := 0
		for {
			i := bytes.Index(window[searched:], needle)
			if i < 0 {
				break
			}
			offsets = append(offsets, base+int64(searched+i))
			searched += i + len(needle)
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return offsets, nil
		}
		if err != nil {
			return nil, err
		}

		keep := len(needle) - 1
		copy(buf, window[len(window)-keep:])
		base += int64(len(window) - keep)
		carry = keep
	}
}
