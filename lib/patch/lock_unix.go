// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin || linux

package patch

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// lockExclusive takes an advisory exclusive lock on the open file so
// concurrent patch invocations serialize instead of interleaving
// writes. The lock lives until the file is closed.
func lockExclusive(file *os.File) error {
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("locking %s: %w", file.Name(), err)
	}
	return nil
}
