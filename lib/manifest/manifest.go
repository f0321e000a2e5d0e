// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest records what a stamping operation did: which
// artifact was patched, the keyed BLAKE3 digest of its final bytes,
// and the exact field values written into it. The manifest is a
// sidecar file next to the release artifact; Verify re-derives
// everything from the artifact itself and reports any divergence, so a
// manifest plus an artifact is a self-checking pair.
//
// Manifests deliberately contain nothing the stamp does not: no
// machine names, no wall-clock times of their own. A reproducible
// build therefore produces a byte-identical manifest.
//
// Three serializations are supported: JSON for humans and most
// tooling, YAML for configuration-flavored pipelines, deterministic
// CBOR for machine storage. The format follows the file extension
// unless the caller forces one.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/buildstamp/buildstamp/lib/codec"
	"github.com/buildstamp/buildstamp/lib/section"
)

// Format is the manifest layout version.
const Format = 1

// Manifest describes one stamped artifact.
type Manifest struct {
	// Format is the manifest layout version (always Format for
	// manifests this package writes).
	Format int `json:"format" yaml:"format"`

	// Artifact is the base name of the stamped file.
	Artifact string `json:"artifact" yaml:"artifact"`

	// SizeBytes is the artifact's size after patching.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes"`

	// Digest is the hex keyed BLAKE3 digest of the artifact's bytes
	// after patching.
	Digest string `json:"digest" yaml:"digest"`

	// BufferSize is the section payload size stamped into the
	// artifact.
	BufferSize int `json:"buffer_size" yaml:"buffer_size"`

	// Fields holds the stamped values keyed by canonical field name.
	Fields map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// New builds a Manifest for the artifact at path, digesting its
// current (post-patch) bytes.
func New(path string, bufferSize int, fields section.Fields) (Manifest, error) {
	digest, size, err := DigestFile(path)
	if err != nil {
		return Manifest{}, err
	}
	return Manifest{
		Format:     Format,
		Artifact:   filepath.Base(path),
		SizeBytes:  size,
		Digest:     FormatDigest(digest),
		BufferSize: bufferSize,
		Fields:     fields.Map(),
	}, nil
}

// FormatForPath derives the serialization from a manifest filename:
// .yaml/.yml is YAML, .cbor is CBOR, everything else is JSON.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".cbor":
		return "cbor"
	default:
		return "json"
	}
}

// Encode serializes the manifest. format is "json", "yaml", or
// "cbor"; empty means JSON.
func (m Manifest) Encode(format string) ([]byte, error) {
	switch format {
	case "", "json":
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding manifest as JSON: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml":
		data, err := yaml.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("encoding manifest as YAML: %w", err)
		}
		return data, nil
	case "cbor":
		data, err := codec.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("encoding manifest as CBOR: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown manifest format %q (want json, yaml, or cbor)", format)
	}
}

// Decode parses a serialized manifest in the given format ("" means
// JSON).
func Decode(data []byte, format string) (Manifest, error) {
	var m Manifest
	switch format {
	case "", "json":
		if err := json.Unmarshal(data, &m); err != nil {
			return Manifest{}, fmt.Errorf("decoding JSON manifest: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Manifest{}, fmt.Errorf("decoding YAML manifest: %w", err)
		}
	case "cbor":
		if err := codec.Unmarshal(data, &m); err != nil {
			return Manifest{}, fmt.Errorf("decoding CBOR manifest: %w", err)
		}
	default:
		return Manifest{}, fmt.Errorf("unknown manifest format %q (want json, yaml, or cbor)", format)
	}
	return m, nil
}

// WriteFile serializes the manifest to path. An empty format follows
// the path's extension.
func (m Manifest) WriteFile(path, format string) error {
	if format == "" {
		format = FormatForPath(path)
	}
	data, err := m.Encode(format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadFile loads a manifest from path. An empty format follows the
// path's extension.
func ReadFile(path, format string) (Manifest, error) {
	if format == "" {
		format = FormatForPath(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Decode(data, format)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Verify checks the manifest against the artifact at path and the
// field set decoded from it. Every divergence is reported, not just
// the first: a tampered artifact usually diverges in several ways at
// once and the full list is what the operator wants.
func (m Manifest) Verify(path string, fields section.Fields) error {
	var problems []error

	if m.Format != Format {
		problems = append(problems, fmt.Errorf("manifest format %d, this tool writes %d", m.Format, Format))
	}

	digest, size, err := DigestFile(path)
	if err != nil {
		return err
	}
	if got := FormatDigest(digest); got != m.Digest {
		problems = append(problems, fmt.Errorf("artifact digest %s, manifest records %s", got, m.Digest))
	}
	if size != m.SizeBytes {
		problems = append(problems, fmt.Errorf("artifact size %d, manifest records %d", size, m.SizeBytes))
	}

	got := fields.Map()
	for _, name := range sortedKeys(m.Fields) {
		want := m.Fields[name]
		value, ok := got[name]
		switch {
		case !ok:
			problems = append(problems, fmt.Errorf("field %s missing from artifact, manifest records %q", name, want))
		case value != want:
			problems = append(problems, fmt.Errorf("field %s is %q in artifact, manifest records %q", name, value, want))
		}
	}
	for _, name := range sortedKeys(got) {
		if _, ok := m.Fields[name]; !ok {
			problems = append(problems, fmt.Errorf("field %s is %q in artifact but absent from manifest", name, got[name]))
		}
	}

	return errors.Join(problems...)
}

// sortedKeys returns the map's keys in sorted order so verification
// output is stable.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
