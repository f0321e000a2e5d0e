// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

// Buildstamp-example is the runtime half of the stamping workflow,
// reduced to the smallest possible program: it links the stamp
// package and prints every field. Build it, run it, patch it, run it
// again:
//
//	go build -o example ./cmd/buildstamp-example
//	./example                          # every field is (not set)
//	buildstamp patch --all-git example
//	./example                          # git fields carry real values
//
// The source never changes between those runs; only the patched bytes
// in the binary differ.
package main
