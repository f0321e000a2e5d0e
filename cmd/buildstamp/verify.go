// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/buildstamp/buildstamp/cmd/buildstamp/cli"
	"github.com/buildstamp/buildstamp/lib/manifest"
	"github.com/buildstamp/buildstamp/lib/section"
	"github.com/buildstamp/buildstamp/lib/stamp"
)

func verifyCommand() *cli.Command {
	var (
		sectionName  string
		manifestPath string
		checkSemver  bool
	)
	return &cli.Command{
		Name:    "verify",
		Summary: "Check that an artifact carries a valid stamp",
		Usage:   "buildstamp verify [flags] TARGET",
		Description: `Checks TARGET for stamp findings and reports every one. An
unstamped artifact is a finding; with --semver, a git_describe that is
not a semantic version is a finding; with --manifest, any divergence
between the artifact and its recorded manifest is a finding.

Findings go to stderr and the command exits 1. A clean artifact
prints a single ok line and exits 0. Errors reading the artifact or
the manifest itself exit 2.`,
		Examples: []cli.Example{
			{
				Description: "Gate a release on being stamped with a version tag",
				Command:     "buildstamp verify --semver dist/app",
			},
			{
				Description: "Check an artifact against its recorded manifest",
				Command:     "buildstamp verify --manifest dist/app.stamp.json dist/app",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("verify", pflag.ContinueOnError)
			flags.StringVar(&sectionName, "section", "", "read this ELF section instead of scanning for the marker")
			flags.StringVar(&manifestPath, "manifest", "", "verify the artifact against this manifest")
			flags.BoolVar(&checkSemver, "semver", false, "require git_describe to parse as a semantic version")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("verify takes exactly one TARGET argument, got %d", len(args))
			}
			target := args[0]
			fields, err := readArtifactFields(target, sectionName)
			if err != nil {
				return err
			}

			var problems []string
			if fields.Count() == 0 {
				problems = append(problems, "artifact is unstamped: no fields present")
			}
			if checkSemver && fields.Count() > 0 {
				describe, ok := fields.Get(section.FieldGitDescribe)
				switch {
				case !ok:
					problems = append(problems, "no git_describe field to check against --semver")
				default:
					if _, ok := stamp.SemverFromDescribe(describe); !ok {
						problems = append(problems, fmt.Sprintf("git_describe %q is not a semantic version", describe))
					}
				}
			}
			if manifestPath != "" && fields.Count() > 0 {
				record, err := manifest.ReadFile(manifestPath, "")
				if err != nil {
					return err
				}
				if err := record.Verify(target, fields); err != nil {
					problems = append(problems, err.Error())
				}
			}

			if len(problems) > 0 {
				for _, problem := range problems {
					fmt.Fprintf(os.Stderr, "verify %s: %s\n", target, problem)
				}
				return &cli.ExitError{Code: 1}
			}
			fmt.Printf("ok: %s is stamped with %d fields\n", target, fields.Count())
			return nil
		},
	}
}
