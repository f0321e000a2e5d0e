// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package buildenv

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/buildstamp/buildstamp/lib/section"
)

// Project holds per-repository stamping defaults, authored as a JSONC
// file (JSON extended with // comments and trailing commas) and named
// explicitly on the command line. Flags and environment variables
// override everything here.
type Project struct {
	// BufferSize is the section size for this project, or 0 to defer
	// to the environment or the built-in default.
	BufferSize int `json:"buffer_size"`

	// Fields lists the canonical names of the fields to stamp.
	Fields []string `json:"fields"`

	// Custom is the default value for the custom field.
	Custom string `json:"custom"`

	// Section names the artifact section to patch in ELF mode. Empty
	// selects marker discovery.
	Section string `json:"section"`

	// Manifest is a path to write a provenance manifest to after
	// patching; empty disables the manifest.
	Manifest string `json:"manifest"`

	// ManifestFormat selects the manifest serialization: "json",
	// "yaml", or "cbor". Empty defers to the manifest path extension.
	ManifestFormat string `json:"manifest_format"`

	// Strict aborts the build when a selected field cannot be
	// collected, instead of leaving it absent.
	Strict bool `json:"strict"`
}

// ParseProject strips JSONC comments and trailing commas from data,
// then unmarshals and validates the result.
func ParseProject(data []byte) (Project, error) {
	stripped := jsonc.ToJSON(data)

	var project Project
	if err := json.Unmarshal(stripped, &project); err != nil {
		return Project{}, fmt.Errorf("parsing project config: %w", err)
	}

	if project.BufferSize != 0 {
		if err := section.ValidateBufferSize(project.BufferSize); err != nil {
			return Project{}, fmt.Errorf("buffer_size: %w", err)
		}
	}
	for _, name := range project.Fields {
		if _, err := section.ParseField(name); err != nil {
			return Project{}, fmt.Errorf("fields: %w", err)
		}
	}
	switch project.ManifestFormat {
	case "", "json", "yaml", "cbor":
	default:
		return Project{}, fmt.Errorf("manifest_format %q (want json, yaml, or cbor)", project.ManifestFormat)
	}

	return project, nil
}

// ReadProjectFile reads a JSONC project file from disk and parses it.
func ReadProjectFile(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("reading %s: %w", path, err)
	}

	project, err := ParseProject(data)
	if err != nil {
		return Project{}, fmt.Errorf("%s: %w", path, err)
	}

	return project, nil
}

// FieldList returns the selected fields parsed into section.Field
// values, in the order the file lists them.
func (p Project) FieldList() []section.Field {
	fields := make([]section.Field, 0, len(p.Fields))
	for _, name := range p.Fields {
		// Names were validated during parsing.
		if f, err := section.ParseField(name); err == nil {
			fields = append(fields, f)
		}
	}
	return fields
}
