// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR encoding configuration for
// binary provenance manifests.
//
// Manifests exist to be compared and re-derived: the same stamped
// artifact must always produce the same manifest bytes, or digest
// comparisons across build machines turn into noise. The encoder
// therefore uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// Same logical data always produces identical bytes.
//
// JSON and YAML manifests serve humans and text-oriented tooling; CBOR
// manifests serve machine pipelines that store or transmit them.
// Whichever format a manifest is written in, this package is the only
// place the CBOR configuration lives, so every encoder agrees.
package codec
