// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/buildstamp/buildstamp/lib/section"
)

// writeArtifact writes a throwaway artifact file and returns its path.
func writeArtifact(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0755); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

// sampleFields returns a representative stamped field set.
func sampleFields() section.Fields {
	var fields section.Fields
	fields.Set(section.FieldGitSHA, "4f0c2db07e4d61c4ca1a9cd5bd4d9b7e6a3c8a11")
	fields.Set(section.FieldGitBranch, "main")
	fields.Set(section.FieldBuildDate, "2026-03-10")
	return fields
}

func TestNewRecordsArtifactIdentity(t *testing.T) {
	t.Parallel()
	path := writeArtifact(t, "server", []byte("artifact bytes"))

	m, err := New(path, 512, sampleFields())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if m.Format != Format {
		t.Errorf("Format: got %d, want %d", m.Format, Format)
	}
	if m.Artifact != "server" {
		t.Errorf("Artifact: got %q, want \"server\"", m.Artifact)
	}
	if m.SizeBytes != int64(len("artifact bytes")) {
		t.Errorf("SizeBytes: got %d, want %d", m.SizeBytes, len("artifact bytes"))
	}
	if m.BufferSize != 512 {
		t.Errorf("BufferSize: got %d, want 512", m.BufferSize)
	}
	if m.Fields["git_branch"] != "main" {
		t.Errorf("Fields[git_branch]: got %q, want \"main\"", m.Fields["git_branch"])
	}

	digest, _, err := DigestFile(path)
	if err != nil {
		t.Fatalf("DigestFile: %v", err)
	}
	if m.Digest != FormatDigest(digest) {
		t.Errorf("Digest: got %s, want %s", m.Digest, FormatDigest(digest))
	}
}

func TestDigestFileMatchesDigestBytes(t *testing.T) {
	t.Parallel()
	data := []byte("the same bytes either way")
	path := writeArtifact(t, "artifact", data)

	fromFile, size, err := DigestFile(path)
	if err != nil {
		t.Fatalf("DigestFile: %v", err)
	}
	if size != int64(len(data)) {
		t.Errorf("size: got %d, want %d", size, len(data))
	}
	if fromFile != DigestBytes(data) {
		t.Error("file and byte digests differ for identical content")
	}
	if DigestBytes([]byte("other bytes")) == fromFile {
		t.Error("different content produced the same digest")
	}
}

func TestFormatParseDigestRoundTrip(t *testing.T) {
	t.Parallel()
	digest := DigestBytes([]byte("round trip"))
	parsed, err := ParseDigest(FormatDigest(digest))
	if err != nil {
		t.Fatalf("ParseDigest: %v", err)
	}
	if parsed != digest {
		t.Error("digest round trip mismatch")
	}
}

func TestParseDigestRejectsBadInput(t *testing.T) {
	t.Parallel()
	if _, err := ParseDigest("zz"); err == nil {
		t.Error("expected error for non-hex input")
	}
	if _, err := ParseDigest("abcd"); err == nil {
		t.Error("expected error for short input")
	}
}

func TestEncodeDecodeFormats(t *testing.T) {
	t.Parallel()
	path := writeArtifact(t, "server", []byte("artifact bytes"))
	original, err := New(path, 512, sampleFields())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, format := range []string{"json", "yaml", "cbor"} {
		format := format
		t.Run(format, func(t *testing.T) {
			t.Parallel()
			data, err := original.Encode(format)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			decoded, err := Decode(data, format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if decoded.Artifact != original.Artifact || decoded.Digest != original.Digest {
				t.Errorf("round trip: got %+v, want %+v", decoded, original)
			}
			if decoded.Fields["git_sha"] != original.Fields["git_sha"] {
				t.Errorf("Fields[git_sha]: got %q, want %q", decoded.Fields["git_sha"], original.Fields["git_sha"])
			}
		})
	}
}

func TestEncodeRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	if _, err := (Manifest{}).Encode("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := Decode(nil, "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestFormatForPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path string
		want string
	}{
		{path: "stamp.json", want: "json"},
		{path: "stamp.yaml", want: "yaml"},
		{path: "stamp.YML", want: "yaml"},
		{path: "stamp.cbor", want: "cbor"},
		{path: "stamp.manifest", want: "json"},
		{path: "stamp", want: "json"},
	}
	for _, test := range tests {
		if got := FormatForPath(test.path); got != test.want {
			t.Errorf("FormatForPath(%q): got %q, want %q", test.path, got, test.want)
		}
	}
}

func TestWriteReadFileByExtension(t *testing.T) {
	t.Parallel()
	artifact := writeArtifact(t, "server", []byte("artifact bytes"))
	original, err := New(artifact, 512, sampleFields())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dir := t.TempDir()
	for _, name := range []string{"stamp.json", "stamp.yaml", "stamp.cbor"} {
		path := filepath.Join(dir, name)
		if err := original.WriteFile(path, ""); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
		loaded, err := ReadFile(path, "")
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", name, err)
		}
		if loaded.Digest != original.Digest {
			t.Errorf("%s: digest got %s, want %s", name, loaded.Digest, original.Digest)
		}
	}
}

func TestVerifyCleanPair(t *testing.T) {
	t.Parallel()
	fields := sampleFields()
	path := writeArtifact(t, "server", []byte("artifact bytes"))
	m, err := New(path, 512, fields)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := m.Verify(path, fields); err != nil {
		t.Errorf("Verify: %v, want clean pass", err)
	}
}

func TestVerifyDetectsTamperedArtifact(t *testing.T) {
	t.Parallel()
	fields := sampleFields()
	path := writeArtifact(t, "server", []byte("artifact bytes"))
	m, err := New(path, 512, fields)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := os.WriteFile(path, []byte("artifact bytes, but longer"), 0755); err != nil {
		t.Fatalf("tamper with artifact: %v", err)
	}

	err = m.Verify(path, fields)
	if err == nil {
		t.Fatal("Verify passed a tampered artifact")
	}
	// Both the digest and the size diverge, and both are reported.
	if !strings.Contains(err.Error(), "digest") {
		t.Errorf("error %q does not mention the digest", err)
	}
	if !strings.Contains(err.Error(), "size") {
		t.Errorf("error %q does not mention the size", err)
	}
}

func TestVerifyDetectsFieldDivergence(t *testing.T) {
	t.Parallel()
	fields := sampleFields()
	path := writeArtifact(t, "server", []byte("artifact bytes"))
	m, err := New(path, 512, fields)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	changed := fields
	changed.Set(section.FieldGitBranch, "release/1.4")
	changed.Set(section.FieldCustom, "unexpected")
	changed.Clear(section.FieldBuildDate)

	err = m.Verify(path, changed)
	if err == nil {
		t.Fatal("Verify passed diverged fields")
	}
	for _, fragment := range []string{"git_branch", "custom", "build_date"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q does not mention %s", err, fragment)
		}
	}
}
