// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

// Package gitinfo collects commit metadata from a git working tree for
// stamping into build artifacts. All commands target a specific
// directory via the -C flag, which every Repository method injects;
// there is no default directory, callers always say which tree they
// mean.
//
// The queries here report whatever git reports. A detached HEAD yields
// the literal branch name "HEAD", a repository without tags makes
// Describe fall back to the abbreviated commit hash, and a directory
// that is not a repository at all makes every query fail. Deciding what
// a failed query means (skip the field, or abort the build) is the
// caller's business.
package gitinfo

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// subjectLimit caps the commit subject at 100 runes. Subjects are
// stamped into a small fixed buffer; anything longer is noise there.
const subjectLimit = 100

// Repository represents a git working tree at a specific directory.
type Repository struct {
	dir string
}

// NewRepository returns a Repository targeting the given directory.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Dir returns the repository directory.
func (r *Repository) Dir() string {
	return r.dir
}

// run executes a git command targeting this repository and returns
// stdout with surrounding whitespace trimmed. Stderr is captured
// separately and included in error messages on failure.
func (r *Repository) run(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"-C", r.dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), r.dir, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// SHA returns the full commit hash of HEAD.
func (r *Repository) SHA(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "HEAD")
}

// Describe returns `git describe --always --dirty` for HEAD: the most
// recent tag with a commit distance suffix, or the abbreviated hash
// when no tag is reachable, with "-dirty" appended if the working tree
// has uncommitted changes.
func (r *Repository) Describe(ctx context.Context) (string, error) {
	return r.run(ctx, "describe", "--always", "--dirty")
}

// Branch returns the abbreviated name of the checked-out branch, or
// the literal "HEAD" when detached.
func (r *Repository) Branch(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// CommitTime returns the author timestamp of HEAD. The zone offset is
// the author's, as recorded in the commit.
func (r *Repository) CommitTime(ctx context.Context) (time.Time, error) {
	output, err := r.run(ctx, "log", "-1", "--format=%aI")
	if err != nil {
		return time.Time{}, err
	}
	when, err := time.Parse(time.RFC3339, output)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse author timestamp %q: %w", output, err)
	}
	return when, nil
}

// Subject returns the first line of the HEAD commit message, truncated
// to 100 runes.
func (r *Repository) Subject(ctx context.Context) (string, error) {
	output, err := r.run(ctx, "log", "-1", "--format=%s")
	if err != nil {
		return "", err
	}
	if line, _, found := strings.Cut(output, "\n"); found {
		output = line
	}
	runes := []rune(output)
	if len(runes) > subjectLimit {
		output = string(runes[:subjectLimit])
	}
	return output, nil
}
