// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildenv resolves the build-time configuration surface: which
// section size to use, whether a build-time override or the idempotent
// switch is in effect, and optional project-level defaults from a JSONC
// file. Precedence is explicit everywhere: command-line flag, then
// environment, then project file, then the built-in default. Nothing is
// loaded implicitly; .env and project files are read only when the
// caller names them.
package buildenv

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/buildstamp/buildstamp/lib/section"
)

// envPrefix namespaces every buildstamp environment variable:
// BUILDSTAMP_BUFFER_SIZE, BUILDSTAMP_BUILD_TIME, BUILDSTAMP_IDEMPOTENT.
const envPrefix = "buildstamp"

// sourceDateEpochVar is the reproducible-builds convention for pinning
// build timestamps: integer Unix seconds, honored when
// BUILDSTAMP_BUILD_TIME is not set.
const sourceDateEpochVar = "SOURCE_DATE_EPOCH"

// Build is the resolved build-time configuration.
type Build struct {
	// BufferSize is the requested section size in bytes, or 0 when the
	// environment does not choose one (resolve the final value with
	// ResolveBufferSize).
	BufferSize int `envconfig:"BUFFER_SIZE"`

	// BuildTime overrides the build wall clock. Either integer Unix
	// seconds or an RFC 3339 timestamp; empty means use the real clock.
	BuildTime string `envconfig:"BUILD_TIME"`

	// Idempotent suppresses the build timestamp and date fields
	// entirely so repeated builds of the same tree produce identical
	// bytes. Takes precedence over BuildTime.
	Idempotent bool `envconfig:"IDEMPOTENT"`
}

// FromEnvironment reads the BUILDSTAMP_* variables, falling back to
// SOURCE_DATE_EPOCH for the build-time override. A buffer size that is
// set but out of range fails here rather than at encode time.
func FromEnvironment() (Build, error) {
	var build Build
	if err := envconfig.Process(envPrefix, &build); err != nil {
		return Build{}, fmt.Errorf("reading BUILDSTAMP environment: %w", err)
	}

	if _, set := os.LookupEnv("BUILDSTAMP_BUFFER_SIZE"); set {
		if err := section.ValidateBufferSize(build.BufferSize); err != nil {
			return Build{}, fmt.Errorf("BUILDSTAMP_BUFFER_SIZE: %w", err)
		}
	}

	if build.BuildTime == "" {
		if epoch, set := os.LookupEnv(sourceDateEpochVar); set {
			if _, err := strconv.ParseInt(epoch, 10, 64); err != nil {
				return Build{}, fmt.Errorf("%s %q is not integer Unix seconds", sourceDateEpochVar, epoch)
			}
			build.BuildTime = epoch
		}
	}

	return build, nil
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment. Variables already set in the real environment win; the
// file only fills gaps. Missing files are an error because the caller
// asked for this file by name.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// ResolveBufferSize picks the section size from candidates in
// precedence order: the first nonzero candidate wins and must be a
// valid size; if every candidate is zero, the default applies.
func ResolveBufferSize(candidates ...int) (int, error) {
	for _, candidate := range candidates {
		if candidate == 0 {
			continue
		}
		if err := section.ValidateBufferSize(candidate); err != nil {
			return 0, err
		}
		return candidate, nil
	}
	return section.DefaultBufferSize, nil
}
