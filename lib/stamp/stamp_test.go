// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package stamp

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/buildstamp/buildstamp/lib/section"
)

func TestRegionLayout(t *testing.T) {
	t.Parallel()
	if len(region) != RegionHeaderLength+section.DefaultBufferSize {
		t.Fatalf("region length: got %d, want %d", len(region), RegionHeaderLength+section.DefaultBufferSize)
	}
	if region[0] != 0xff || region[MarkerLength-1] != 0xff {
		t.Error("marker is not framed by 0xff bytes")
	}
	if got := binary.LittleEndian.Uint16(region[MarkerLength:]); got != section.DefaultBufferSize {
		t.Errorf("declared capacity: got %d, want %d", got, section.DefaultBufferSize)
	}
	for i := RegionHeaderLength; i < len(region); i++ {
		if region[i] != 0 {
			t.Fatalf("payload byte %d is 0x%02x before patching, want 0x00", i, region[i])
		}
	}
}

func TestMarkerMatchesRegion(t *testing.T) {
	t.Parallel()
	marker := Marker()
	if len(marker) != MarkerLength {
		t.Fatalf("marker length: got %d, want %d", len(marker), MarkerLength)
	}
	if !bytes.Equal(marker, region[:MarkerLength]) {
		t.Errorf("Marker() = %q, want the region's opening bytes %q", marker, region[:MarkerLength])
	}

	// Mutating the returned slice must not reach the region.
	marker[0] = 'x'
	if region[0] != 0xff {
		t.Fatal("Marker() aliases the region")
	}
}

func TestUnpatchedBinaryReportsNothing(t *testing.T) {
	t.Parallel()
	accessors := map[string]func() (string, bool){
		"GitSHA":             GitSHA,
		"GitDescribe":        GitDescribe,
		"GitBranch":          GitBranch,
		"GitCommitTimestamp": GitCommitTimestamp,
		"GitCommitDate":      GitCommitDate,
		"GitCommitMessage":   GitCommitMessage,
		"BuildTimestamp":     BuildTimestamp,
		"BuildDate":          BuildDate,
		"Custom":             Custom,
	}
	for name, accessor := range accessors {
		if value, ok := accessor(); ok {
			t.Errorf("%s: got %q on an unpatched binary, want absent", name, value)
		}
	}

	if Populated() {
		t.Error("Populated: got true on an unpatched binary")
	}
	if Fields() != (section.Fields{}) {
		t.Error("Fields: got non-empty set on an unpatched binary")
	}
	if _, ok := Semver(); ok {
		t.Error("Semver: got a version on an unpatched binary")
	}
	if got := Summary(); got != "unstamped" {
		t.Errorf("Summary: got %q, want \"unstamped\"", got)
	}
}

func TestSemverFromDescribe(t *testing.T) {
	t.Parallel()
	tests := []struct {
		describe string
		want     string
		ok       bool
	}{
		{describe: "v1.4.0", want: "1.4.0", ok: true},
		{describe: "1.4.0", want: "1.4.0", ok: true},
		{describe: "v1.4.0-12-g4f0c2db", want: "1.4.0-12-g4f0c2db", ok: true},
		{describe: "v1.4.0-dirty", want: "1.4.0-dirty", ok: true},
		{describe: "v2.0", want: "2.0.0", ok: true},
		{describe: "4f0c2db", ok: false},
		{describe: "", ok: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.describe, func(t *testing.T) {
			t.Parallel()
			version, ok := SemverFromDescribe(test.describe)
			if ok != test.ok {
				t.Fatalf("SemverFromDescribe(%q): ok = %t, want %t", test.describe, ok, test.ok)
			}
			if ok && version.String() != test.want {
				t.Errorf("SemverFromDescribe(%q): got %q, want %q", test.describe, version.String(), test.want)
			}
		})
	}
}

func TestShortHash(t *testing.T) {
	t.Parallel()
	if got := shortHash("4f0c2db07e4d61c4ca1a9cd5bd4d9b7e6a3c8a11"); got != "4f0c2db07e4d" {
		t.Errorf("shortHash: got %q, want \"4f0c2db07e4d\"", got)
	}
	if got := shortHash("4f0c2db"); got != "4f0c2db" {
		t.Errorf("shortHash on short input: got %q, want unchanged", got)
	}
}
