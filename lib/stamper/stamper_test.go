// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package stamper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/buildstamp/buildstamp/lib/buildenv"
	"github.com/buildstamp/buildstamp/lib/clock"
	"github.com/buildstamp/buildstamp/lib/gitinfo"
	"github.com/buildstamp/buildstamp/lib/section"
	"github.com/buildstamp/buildstamp/lib/testutil"
)

// quiet discards warning output in tests that provoke collection
// failures on purpose.
var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNewDefaultsBufferSize(t *testing.T) {
	t.Parallel()
	writer, err := New(buildenv.Build{}, Options{Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := writer.BufferSize(); got != section.DefaultBufferSize {
		t.Errorf("BufferSize: got %d, want %d", got, section.DefaultBufferSize)
	}
}

func TestNewRejectsBadBufferSize(t *testing.T) {
	t.Parallel()
	for _, size := range []int{32, 65536, -5} {
		_, err := New(buildenv.Build{BufferSize: size}, Options{Logger: quiet})
		if !errors.Is(err, section.ErrBufferSize) {
			t.Errorf("size %d: got %v, want ErrBufferSize", size, err)
		}
	}
}

func TestNewRejectsBadOverride(t *testing.T) {
	t.Parallel()
	_, err := New(buildenv.Build{BuildTime: "not-a-timestamp"}, Options{Logger: quiet})
	if !errors.Is(err, ErrInvalidBuildTimeOverride) {
		t.Fatalf("got %v, want ErrInvalidBuildTimeOverride", err)
	}
	if !strings.Contains(err.Error(), "not-a-timestamp") {
		t.Errorf("error %q does not quote the bad value", err)
	}
}

func TestBuildTimeOverrides(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		override      string
		wantTimestamp string
		wantDate      string
	}{
		{
			name:          "unix seconds",
			override:      "1700000000",
			wantTimestamp: "2023-11-14T22:13:20Z",
			wantDate:      "2023-11-14",
		},
		{
			name:          "rfc3339 utc",
			override:      "2024-06-15T12:30:00Z",
			wantTimestamp: "2024-06-15T12:30:00Z",
			wantDate:      "2024-06-15",
		},
		{
			name:          "rfc3339 with offset normalizes to utc",
			override:      "2026-03-09T01:30:00+05:00",
			wantTimestamp: "2026-03-08T20:30:00Z",
			wantDate:      "2026-03-08",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			writer, err := New(buildenv.Build{BuildTime: test.override}, Options{Logger: quiet})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if err := writer.AddBuildTimestamp(); err != nil {
				t.Fatalf("AddBuildTimestamp: %v", err)
			}
			if err := writer.AddBuildDate(); err != nil {
				t.Fatalf("AddBuildDate: %v", err)
			}

			fields := writer.Fields()
			if got, _ := fields.Get(section.FieldBuildTimestamp); got != test.wantTimestamp {
				t.Errorf("build_timestamp: got %q, want %q", got, test.wantTimestamp)
			}
			if got, _ := fields.Get(section.FieldBuildDate); got != test.wantDate {
				t.Errorf("build_date: got %q, want %q", got, test.wantDate)
			}
		})
	}
}

func TestIdempotentSuppressesTimestamps(t *testing.T) {
	t.Parallel()
	writer, err := New(buildenv.Build{Idempotent: true, BuildTime: "1700000000"}, Options{Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := writer.AddBuildTimestamp(); err != nil {
		t.Fatalf("AddBuildTimestamp: %v", err)
	}
	if err := writer.AddBuildDate(); err != nil {
		t.Fatalf("AddBuildDate: %v", err)
	}

	fields := writer.Fields()
	if _, ok := fields.Get(section.FieldBuildTimestamp); ok {
		t.Error("build_timestamp present despite idempotent switch")
	}
	if _, ok := fields.Get(section.FieldBuildDate); ok {
		t.Error("build_date present despite idempotent switch")
	}
}

func TestIdempotentToleratesGarbageOverride(t *testing.T) {
	t.Parallel()
	// The switch wins before the override is parsed: a broken override
	// must not fail a build the switch was meant to stabilize.
	if _, err := New(buildenv.Build{Idempotent: true, BuildTime: "not-a-timestamp"}, Options{Logger: quiet}); err != nil {
		t.Fatalf("New: %v", err)
	}
}

func TestClockSuppliesBuildTime(t *testing.T) {
	t.Parallel()
	fake := clock.Fake(time.Date(2026, 3, 10, 8, 30, 0, 0, time.FixedZone("CET", 3600)))
	writer, err := New(buildenv.Build{}, Options{Clock: fake, Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := writer.AddBuildTimestamp(); err != nil {
		t.Fatalf("AddBuildTimestamp: %v", err)
	}
	if err := writer.AddBuildDate(); err != nil {
		t.Fatalf("AddBuildDate: %v", err)
	}

	fields := writer.Fields()
	if got, _ := fields.Get(section.FieldBuildTimestamp); got != "2026-03-10T07:30:00Z" {
		t.Errorf("build_timestamp: got %q, want clock time in UTC", got)
	}
	if got, _ := fields.Get(section.FieldBuildDate); got != "2026-03-10" {
		t.Errorf("build_date: got %q, want \"2026-03-10\"", got)
	}
}

func TestAddAllGit(t *testing.T) {
	t.Parallel()
	dir := testutil.GitRepo(t, "initial commit")
	repo := gitinfo.NewRepository(dir)

	writer, err := New(buildenv.Build{}, Options{Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := writer.AddAllGit(context.Background(), repo); err != nil {
		t.Fatalf("AddAllGit: %v", err)
	}

	fields := writer.Fields()
	if sha, ok := fields.Get(section.FieldGitSHA); !ok || len(sha) != 40 {
		t.Errorf("git_sha: got %q (present=%t)", sha, ok)
	}
	if branch, _ := fields.Get(section.FieldGitBranch); branch != "main" {
		t.Errorf("git_branch: got %q, want \"main\"", branch)
	}
	if when, _ := fields.Get(section.FieldGitCommitTimestamp); when != "2026-03-09T14:02:55+01:00" {
		t.Errorf("git_commit_timestamp: got %q", when)
	}
	if date, _ := fields.Get(section.FieldGitCommitDate); date != "2026-03-09" {
		t.Errorf("git_commit_date: got %q, want \"2026-03-09\"", date)
	}
	if subject, _ := fields.Get(section.FieldGitCommitMessage); subject != "initial commit" {
		t.Errorf("git_commit_msg: got %q", subject)
	}
	if _, ok := fields.Get(section.FieldGitDescribe); !ok {
		t.Error("git_describe: absent")
	}
}

func TestCollectFailureLeavesFieldAbsent(t *testing.T) {
	t.Parallel()
	repo := gitinfo.NewRepository(t.TempDir())

	writer, err := New(buildenv.Build{}, Options{Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := writer.AddAllGit(context.Background(), repo); err != nil {
		t.Fatalf("AddAllGit outside a repository: %v", err)
	}
	if count := writer.Fields().Count(); count != 0 {
		t.Errorf("fields present: got %d, want 0", count)
	}
}

func TestStrictCollectFailureStopsBuild(t *testing.T) {
	t.Parallel()
	repo := gitinfo.NewRepository(t.TempDir())

	writer, err := New(buildenv.Build{}, Options{Logger: quiet, Strict: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := writer.AddGitSHA(context.Background(), repo); err == nil {
		t.Fatal("expected strict mode to surface the collection failure")
	}
}

func TestEncodeConsumesWriter(t *testing.T) {
	t.Parallel()
	writer, err := New(buildenv.Build{BuildTime: "1700000000"}, Options{Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := writer.SetCustom("rc1"); err != nil {
		t.Fatalf("SetCustom: %v", err)
	}
	if _, err := writer.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if err := writer.SetCustom("rc2"); !errors.Is(err, ErrConsumed) {
		t.Errorf("SetCustom after Encode: got %v, want ErrConsumed", err)
	}
	if err := writer.AddBuildTimestamp(); !errors.Is(err, ErrConsumed) {
		t.Errorf("AddBuildTimestamp after Encode: got %v, want ErrConsumed", err)
	}
	if _, err := writer.Encode(); !errors.Is(err, ErrConsumed) {
		t.Errorf("second Encode: got %v, want ErrConsumed", err)
	}
}

func TestFailedEncodeLeavesWriterUsable(t *testing.T) {
	t.Parallel()
	writer, err := New(buildenv.Build{BufferSize: section.MinBufferSize}, Options{Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := writer.SetCustom(strings.Repeat("x", 100)); err != nil {
		t.Fatalf("SetCustom: %v", err)
	}

	_, err = writer.Encode()
	var overflow *section.OverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("got %v, want OverflowError", err)
	}

	// Shed the oversized value and encode again.
	if err := writer.SetCustom("ok"); err != nil {
		t.Fatalf("SetCustom after failed Encode: %v", err)
	}
	payload, err := writer.Encode()
	if err != nil {
		t.Fatalf("Encode after shrinking: %v", err)
	}
	got := section.Decode(payload)
	if value, _ := got.Get(section.FieldCustom); value != "ok" {
		t.Errorf("custom: got %q, want \"ok\"", value)
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()
	writer, err := New(buildenv.Build{BufferSize: 128, BuildTime: "1700000000"}, Options{Logger: quiet})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := writer.AddBuildTimestamp(); err != nil {
		t.Fatalf("AddBuildTimestamp: %v", err)
	}

	path := filepath.Join(t.TempDir(), "stamp.bin")
	if err := writer.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read payload: %v", err)
	}
	if len(payload) != 128 {
		t.Fatalf("payload length: got %d, want 128", len(payload))
	}
	fields := section.Decode(payload)
	if got, _ := fields.Get(section.FieldBuildTimestamp); got != "2023-11-14T22:13:20Z" {
		t.Errorf("build_timestamp: got %q", got)
	}
}
