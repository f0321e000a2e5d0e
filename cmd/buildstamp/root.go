// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/buildstamp/buildstamp/cmd/buildstamp/cli"
	"github.com/buildstamp/buildstamp/lib/stamp"
)

// rootCommand builds the buildstamp command tree.
func rootCommand() *cli.Command {
	return &cli.Command{
		Name: "buildstamp",
		Description: `buildstamp: build provenance stamping for binaries.

Reserve a fixed-size region in a binary at build time, fill it with
git and build metadata after linking, and read it back at runtime or
straight from the artifact.`,
		Subcommands: []*cli.Command{
			genCommand(),
			patchCommand(),
			inspectCommand(),
			verifyCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Printf("buildstamp %s\n", stamp.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Stamp a freshly built binary with all git fields",
				Command:     "buildstamp patch --all-git dist/app",
			},
			{
				Description: "Reproducible stamp: pin the build time, record a manifest",
				Command:     "BUILDSTAMP_BUILD_TIME=1700000000 buildstamp patch --all-git --all-build-time --manifest dist/app.stamp.json dist/app",
			},
			{
				Description: "Show what an artifact was built from",
				Command:     "buildstamp inspect dist/app",
			},
			{
				Description: "Gate a release on a clean version tag",
				Command:     "buildstamp verify --semver dist/app",
			},
		},
	}
}
