// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the current time for testability. Production
// code injects Real(); tests inject a Fake frozen at a known instant so
// build timestamps come out deterministic.
package clock

import "time"

// Clock supplies the current time. Everything that stamps a wall-clock
// value takes a Clock instead of calling time.Now directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
