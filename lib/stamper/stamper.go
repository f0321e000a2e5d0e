// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

// Package stamper assembles the field values for a section payload at
// build time. A Writer is constructed once per build, populated from
// the version-control history and the build clock, and consumed by a
// single Encode; the reproducibility policy (override or suppression of
// wall-clock fields) is resolved at construction so a bad configuration
// stops the build before any bytes exist.
//
// Collecting a field is forgiving by default: a git query that fails
// leaves the field absent and logs a warning, because stamping must
// work in shallow clones, tarball checkouts, and other degraded trees.
// Strict mode turns those failures into errors for builds that would
// rather stop than ship partial provenance.
package stamper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/buildstamp/buildstamp/lib/buildenv"
	"github.com/buildstamp/buildstamp/lib/clock"
	"github.com/buildstamp/buildstamp/lib/gitinfo"
	"github.com/buildstamp/buildstamp/lib/section"
)

// ErrInvalidBuildTimeOverride reports a build-time override that parses
// as neither integer Unix seconds nor RFC 3339.
var ErrInvalidBuildTimeOverride = errors.New("build time override is neither Unix seconds nor RFC 3339")

// ErrConsumed reports use of a Writer after a successful Encode.
var ErrConsumed = errors.New("writer already produced its section")

// Options configures a Writer beyond the build environment.
type Options struct {
	// Clock supplies the build wall-clock time. Nil means clock.Real().
	Clock clock.Clock

	// Logger receives warnings about fields left absent. Nil means
	// slog.Default().
	Logger *slog.Logger

	// Strict turns collection failures into errors instead of
	// absent-field warnings.
	Strict bool
}

// Writer accumulates field values and encodes them into a section
// payload. Not safe for concurrent use; a build populates it from one
// goroutine.
type Writer struct {
	fields   section.Fields
	size     int
	now      time.Time
	stampNow bool
	strict   bool
	logger   *slog.Logger
	consumed bool
}

// New builds a Writer from the resolved build environment. The section
// size and the build-time policy are checked here: an out-of-range
// buffer size or an unparseable override fails immediately, before any
// field is collected.
//
// When build.Idempotent is set, the build timestamp and date fields are
// suppressed outright and build.BuildTime is ignored without being
// parsed; the switch exists to make repeated builds byte-identical, so
// it must not introduce new failure modes.
func New(build buildenv.Build, options Options) (*Writer, error) {
	size := build.BufferSize
	if size == 0 {
		size = section.DefaultBufferSize
	}
	if err := section.ValidateBufferSize(size); err != nil {
		return nil, fmt.Errorf("section size: %w", err)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	writer := &Writer{
		size:   size,
		strict: options.Strict,
		logger: logger,
	}

	switch {
	case build.Idempotent:
		writer.stampNow = false
	case build.BuildTime != "":
		now, err := parseOverride(build.BuildTime)
		if err != nil {
			return nil, err
		}
		writer.now = now
		writer.stampNow = true
	default:
		buildClock := options.Clock
		if buildClock == nil {
			buildClock = clock.Real()
		}
		writer.now = buildClock.Now().UTC()
		writer.stampNow = true
	}

	return writer, nil
}

// parseOverride interprets a build-time override: integer Unix seconds
// first, then RFC 3339. The result is normalized to UTC.
func parseOverride(value string) (time.Time, error) {
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(seconds, 0).UTC(), nil
	}
	if when, err := time.Parse(time.RFC3339, value); err == nil {
		return when.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%q: %w", value, ErrInvalidBuildTimeOverride)
}

// BufferSize returns the section size payloads will be encoded into.
func (w *Writer) BufferSize() int {
	return w.size
}

// Fields returns a snapshot of the accumulated field values.
func (w *Writer) Fields() section.Fields {
	return w.fields
}

// collect stores a collaborator-supplied value, applying the failure
// policy: strict builds stop, everything else logs and leaves the
// field absent.
func (w *Writer) collect(f section.Field, value string, err error) error {
	if w.consumed {
		return ErrConsumed
	}
	if err != nil {
		if w.strict {
			return fmt.Errorf("collect %s: %w", f, err)
		}
		w.logger.Warn("field left absent", "field", f.String(), "error", err)
		return nil
	}
	w.fields.Set(f, value)
	return nil
}

// AddGitSHA stamps the full commit hash of HEAD.
func (w *Writer) AddGitSHA(ctx context.Context, repo *gitinfo.Repository) error {
	value, err := repo.SHA(ctx)
	return w.collect(section.FieldGitSHA, value, err)
}

// AddGitDescribe stamps the `git describe --always --dirty` output.
func (w *Writer) AddGitDescribe(ctx context.Context, repo *gitinfo.Repository) error {
	value, err := repo.Describe(ctx)
	return w.collect(section.FieldGitDescribe, value, err)
}

// AddGitBranch stamps the checked-out branch name.
func (w *Writer) AddGitBranch(ctx context.Context, repo *gitinfo.Repository) error {
	value, err := repo.Branch(ctx)
	return w.collect(section.FieldGitBranch, value, err)
}

// AddGitCommitTimestamp stamps the author timestamp of HEAD in
// RFC 3339, preserving the author's zone offset.
func (w *Writer) AddGitCommitTimestamp(ctx context.Context, repo *gitinfo.Repository) error {
	when, err := repo.CommitTime(ctx)
	if err != nil {
		return w.collect(section.FieldGitCommitTimestamp, "", err)
	}
	return w.collect(section.FieldGitCommitTimestamp, when.Format(time.RFC3339), nil)
}

// AddGitCommitDate stamps the author date of HEAD (YYYY-MM-DD in the
// author's zone).
func (w *Writer) AddGitCommitDate(ctx context.Context, repo *gitinfo.Repository) error {
	when, err := repo.CommitTime(ctx)
	if err != nil {
		return w.collect(section.FieldGitCommitDate, "", err)
	}
	return w.collect(section.FieldGitCommitDate, when.Format(time.DateOnly), nil)
}

// AddGitCommitMessage stamps the first line of the HEAD commit message.
func (w *Writer) AddGitCommitMessage(ctx context.Context, repo *gitinfo.Repository) error {
	value, err := repo.Subject(ctx)
	return w.collect(section.FieldGitCommitMessage, value, err)
}

// AddAllGit stamps every git-derived field. In strict mode the first
// failure stops; otherwise every field gets its chance.
func (w *Writer) AddAllGit(ctx context.Context, repo *gitinfo.Repository) error {
	adds := []func(context.Context, *gitinfo.Repository) error{
		w.AddGitSHA,
		w.AddGitDescribe,
		w.AddGitBranch,
		w.AddGitCommitTimestamp,
		w.AddGitCommitDate,
		w.AddGitCommitMessage,
	}
	for _, add := range adds {
		if err := add(ctx, repo); err != nil {
			return err
		}
	}
	return nil
}

// AddBuildTimestamp stamps the resolved build time in RFC 3339 UTC.
// Under the idempotent switch this is a logged no-op.
func (w *Writer) AddBuildTimestamp() error {
	if w.consumed {
		return ErrConsumed
	}
	if !w.stampNow {
		w.logger.Debug("build timestamp suppressed", "reason", "idempotent build")
		return nil
	}
	w.fields.Set(section.FieldBuildTimestamp, w.now.Format(time.RFC3339))
	return nil
}

// AddBuildDate stamps the resolved build date (YYYY-MM-DD, UTC). Under
// the idempotent switch this is a logged no-op.
func (w *Writer) AddBuildDate() error {
	if w.consumed {
		return ErrConsumed
	}
	if !w.stampNow {
		w.logger.Debug("build date suppressed", "reason", "idempotent build")
		return nil
	}
	w.fields.Set(section.FieldBuildDate, w.now.Format(time.DateOnly))
	return nil
}

// SetCustom stamps a caller-supplied string. An empty value clears the
// field.
func (w *Writer) SetCustom(value string) error {
	if w.consumed {
		return ErrConsumed
	}
	w.fields.Set(section.FieldCustom, value)
	return nil
}

// Encode serializes the accumulated fields into a section payload of
// exactly the configured size. A successful Encode consumes the Writer:
// later adds or encodes fail with ErrConsumed. A failed Encode (the
// values overflow the buffer) leaves the Writer intact so the caller
// can shed a field and try again.
func (w *Writer) Encode() ([]byte, error) {
	if w.consumed {
		return nil, ErrConsumed
	}
	payload, err := section.Encode(w.fields, w.size)
	if err != nil {
		return nil, err
	}
	w.consumed = true
	return payload, nil
}

// WriteFile encodes the section payload and writes it to path as a
// bare binary file of exactly BufferSize bytes, the shape expected by
// section-update tools.
func (w *Writer) WriteFile(path string) error {
	payload, err := w.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("writing section payload: %w", err)
	}
	return nil
}
