// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 keyed digest of a stamped artifact's
// bytes.
type Digest [32]byte

// artifactDomainKey is the fixed 32-byte key for BLAKE3 keyed hashing
// of artifact contents. Domain separation keeps these digests from
// colliding with any other BLAKE3 use of the same bytes. The byte
// values are the ASCII encoding of the domain name, zero-padded to 32
// bytes, so the key is recognizable in hex dumps without losing any
// cryptographic property.
var artifactDomainKey = [32]byte{
	'b', 'u', 'i', 'l', 'd', 's', 't', 'a', 'm', 'p', '.', 'a', 'r', 't', 'i', 'f',
	'a', 'c', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// newHasher returns a BLAKE3 hasher keyed with the artifact domain.
func newHasher() *blake3.Hasher {
	// NewKeyed only fails for a wrong key length, which the fixed-size
	// array rules out.
	hasher, err := blake3.NewKeyed(artifactDomainKey[:])
	if err != nil {
		panic("manifest: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}

// DigestFile computes the artifact digest and size of the file at
// path, streaming so artifact size does not matter.
func DigestFile(path string) (Digest, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, 0, fmt.Errorf("opening artifact: %w", err)
	}
	defer file.Close()

	hasher := newHasher()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return Digest{}, 0, fmt.Errorf("hashing artifact %s: %w", path, err)
	}

	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, size, nil
}

// DigestBytes computes the artifact digest of an in-memory artifact.
func DigestBytes(data []byte) Digest {
	hasher := newHasher()
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// FormatDigest returns the canonical hex form used in manifests, logs,
// and CLI output.
func FormatDigest(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a 64-character hex string into a Digest.
func ParseDigest(hexString string) (Digest, error) {
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return Digest{}, fmt.Errorf("parsing artifact digest: %w", err)
	}
	if len(decoded) != 32 {
		return Digest{}, fmt.Errorf("artifact digest is %d bytes, want 32", len(decoded))
	}
	var digest Digest
	copy(digest[:], decoded)
	return digest, nil
}
