// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !darwin && !linux

package patch

import "os"

// lockExclusive is a no-op where flock is unavailable. Patching stays
// correct for the usual single-writer build pipeline; only concurrent
// patchers lose their serialization.
func lockExclusive(*os.File) error {
	return nil
}
