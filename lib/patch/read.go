// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package patch

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/buildstamp/buildstamp/lib/section"
)

// ReadSection extracts the stamp region payload from the artifact at
// path. gzip, zstd and lz4 streams are transparently decompressed in
// memory first, so release archives can be inspected without
// unpacking. The returned slice holds the payload only, Capacity
// bytes, ready for section.Decode; for compressed artifacts the
// Location refers to the decompressed image.
func ReadSection(path string) ([]byte, Location, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Location{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var head [4]byte
	headLen, err := file.ReadAt(head[:], 0)
	if err != nil && err != io.EOF {
		return nil, Location{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if c := detectCompression(head[:headLen]); c != compressionNone {
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, Location{}, fmt.Errorf("reading %s: %w", path, err)
		}
		image, err := decompress(c, data)
		if err != nil {
			return nil, Location{}, fmt.Errorf("decompressing %s: %w", path, err)
		}
		payload, location, err := payloadFromImage(image)
		if err != nil {
			return nil, Location{}, fmt.Errorf("reading stamp region from %s (%s): %w", path, c, err)
		}
		return payload, location, nil
	}

	info, err := file.Stat()
	if err != nil {
		return nil, Location{}, fmt.Errorf("stating %s: %w", path, err)
	}
	location, err := locateIn(file, info.Size())
	if err != nil {
		return nil, Location{}, fmt.Errorf("reading stamp region from %s: %w", path, err)
	}
	payload := make([]byte, location.Capacity)
	if _, err := file.ReadAt(payload, location.PayloadOffset()); err != nil {
		return nil, Location{}, fmt.Errorf("reading payload from %s: %w", path, err)
	}
	return payload, location, nil
}

// ReadFields extracts and decodes the stamp region of the artifact at
// path in one step.
func ReadFields(path string) (section.Fields, error) {
	payload, _, err := ReadSection(path)
	if err != nil {
		return section.Fields{}, err
	}
	return section.Decode(payload), nil
}

// payloadFromImage locates the region in an in-memory image and copies
// out its payload.
func payloadFromImage(image []byte) ([]byte, Location, error) {
	location, err := locateIn(bytes.NewReader(image), int64(len(image)))
	if err != nil {
		return nil, Location{}, err
	}
	payload := make([]byte, location.Capacity)
	copy(payload, image[location.PayloadOffset():])
	return payload, location, nil
}
