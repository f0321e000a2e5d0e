// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// CommitDate is the author and committer date applied to every commit
// [Git] makes.
const CommitDate = "2026-03-09T14:02:55+01:00"

// GitRepo creates a working tree with one commit whose message is
// subject, and returns its path. The tree lives under t.TempDir and is
// removed when the test completes.
func GitRepo(t *testing.T, subject string) string {
	t.Helper()

	dir := t.TempDir()
	Git(t, dir, "init", "--initial-branch=main", ".")

	path := filepath.Join(dir, "README")
	if err := os.WriteFile(path, []byte("test\n"), 0644); err != nil {
		t.Fatalf("write README: %v", err)
	}
	Git(t, dir, "add", "README")
	Git(t, dir, "commit", "-m", subject)

	return dir
}

// Git runs a git command in dir with a pinned identity and dates so
// commit hashes and timestamps are reproducible across runs.
func Git(t *testing.T, dir string, args ...string) {
	t.Helper()

	command := exec.Command("git", append([]string{"-C", dir}, args...)...)
	command.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test",
		"GIT_AUTHOR_EMAIL=test@test.local",
		"GIT_AUTHOR_DATE="+CommitDate,
		"GIT_COMMITTER_NAME=Test",
		"GIT_COMMITTER_EMAIL=test@test.local",
		"GIT_COMMITTER_DATE="+CommitDate,
	)
	if output, err := command.CombinedOutput(); err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, output)
	}
}
