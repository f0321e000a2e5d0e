// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package section

import "fmt"

// Field identifies one slot in the section layout. The numeric value is
// the field's position in the descriptor table and the string pool, so
// the order here is frozen: appending new fields is a format revision,
// reordering existing ones is a format break.
type Field uint8

const (
	// FieldGitSHA is the full commit hash of HEAD.
	FieldGitSHA Field = iota

	// FieldGitDescribe is the `git describe --always --dirty` output.
	FieldGitDescribe

	// FieldGitBranch is the abbreviated name of the checked-out branch.
	FieldGitBranch

	// FieldGitCommitTimestamp is the author timestamp of HEAD in RFC 3339.
	FieldGitCommitTimestamp

	// FieldGitCommitDate is the author date of HEAD (YYYY-MM-DD).
	FieldGitCommitDate

	// FieldGitCommitMessage is the first line of the HEAD commit message,
	// truncated to 100 runes.
	FieldGitCommitMessage

	// FieldBuildTimestamp is the build wall-clock time in RFC 3339 UTC,
	// subject to the reproducibility policy (override or suppression).
	FieldBuildTimestamp

	// FieldBuildDate is the build date (YYYY-MM-DD, UTC), subject to the
	// same policy as FieldBuildTimestamp.
	FieldBuildDate

	// FieldCustom is a free-form caller-supplied string.
	FieldCustom

	// FieldCount is the number of fields in the layout.
	FieldCount
)

// fieldNames maps each Field to its canonical snake_case name. The names
// appear in manifests, inspect output, and configuration files.
var fieldNames = [FieldCount]string{
	FieldGitSHA:             "git_sha",
	FieldGitDescribe:        "git_describe",
	FieldGitBranch:          "git_branch",
	FieldGitCommitTimestamp: "git_commit_timestamp",
	FieldGitCommitDate:      "git_commit_date",
	FieldGitCommitMessage:   "git_commit_msg",
	FieldBuildTimestamp:     "build_timestamp",
	FieldBuildDate:          "build_date",
	FieldCustom:             "custom",
}

// String returns the field's canonical snake_case name.
func (f Field) String() string {
	if f >= FieldCount {
		return fmt.Sprintf("field(%d)", uint8(f))
	}
	return fieldNames[f]
}

// ParseField resolves a canonical field name back to its Field value.
func ParseField(name string) (Field, error) {
	for f := Field(0); f < FieldCount; f++ {
		if fieldNames[f] == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field name %q", name)
}
