// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/buildstamp/buildstamp/cmd/buildstamp/cli"
)

func genCommand() *cli.Command {
	var (
		selection fieldSelection
		output    string
	)
	return &cli.Command{
		Name:    "gen",
		Summary: "Generate a stamp payload file",
		Description: `Collects the selected fields, encodes them, and writes the raw
payload to a file. The payload is sized to the configured buffer and
can be applied to a binary later with "buildstamp patch --input".

Splitting gen from patch lets one payload stamp several artifacts, or
lets the stamping step run on a machine without the git checkout.`,
		Examples: []cli.Example{
			{
				Description: "Stamp all git fields into a payload file",
				Command:     "buildstamp gen --all-git --output stamp.bin",
			},
			{
				Description: "Pin the build time for a reproducible payload",
				Command:     "BUILDSTAMP_BUILD_TIME=1700000000 buildstamp gen --all-git --all-build-time",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("gen", pflag.ContinueOnError)
			selection.addFlags(flags)
			flags.StringVar(&output, "output", "stamp.bin", "file to write the payload to")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return fmt.Errorf("gen takes no positional arguments, got %d", len(args))
			}
			writer, project, err := selection.resolve(logger)
			if err != nil {
				return err
			}
			if err := selection.collect(ctx, writer, project); err != nil {
				return err
			}
			if err := writer.WriteFile(output); err != nil {
				return err
			}
			fmt.Printf("wrote %d byte payload to %s\n", writer.BufferSize(), output)
			return nil
		},
	}
}
