// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for buildstamp
// packages.
//
// [GitRepo] creates a throwaway working tree with a single commit.
// Identity, author date, and committer date are pinned (see
// [CommitDate]) so commit hashes, timestamps, and describe output are
// reproducible across runs and machines. [Git] runs further git
// commands against such a tree with the same pinned environment, for
// tests that need tags, extra commits, or a dirtied tree.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no buildstamp-internal dependencies.
package testutil
