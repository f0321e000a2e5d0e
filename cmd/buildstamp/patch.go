// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/buildstamp/buildstamp/cmd/buildstamp/cli"
	"github.com/buildstamp/buildstamp/lib/buildenv"
	"github.com/buildstamp/buildstamp/lib/manifest"
	"github.com/buildstamp/buildstamp/lib/patch"
	"github.com/buildstamp/buildstamp/lib/section"
)

func patchCommand() *cli.Command {
	var (
		selection      fieldSelection
		input          string
		sectionName    string
		manifestPath   string
		manifestFormat string
	)
	return &cli.Command{
		Name:    "patch",
		Summary: "Write a stamp into a built artifact",
		Usage:   "buildstamp patch [flags] TARGET",
		Description: `Collects the selected fields and writes the encoded payload into
TARGET in place. By default the target is scanned for the reserved
stamp region and patched where it sits; with --section the payload is
written into the named ELF section instead.

With --input the payload comes from a file produced by "buildstamp
gen" and no fields are collected. Compressed artifacts are refused:
decompress, patch, and recompress instead.`,
		Examples: []cli.Example{
			{
				Description: "Stamp all git fields into a built binary",
				Command:     "buildstamp patch --all-git dist/app",
			},
			{
				Description: "Apply a pre-generated payload",
				Command:     "buildstamp patch --input stamp.bin dist/app",
			},
			{
				Description: "Patch a named section and record a manifest",
				Command:     "buildstamp patch --all-git --section .buildstamp --manifest dist/app.stamp.json dist/app",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("patch", pflag.ContinueOnError)
			selection.addFlags(flags)
			flags.StringVar(&input, "input", "", "apply this payload file instead of collecting fields")
			flags.StringVar(&sectionName, "section", "", "patch this ELF section instead of scanning for the marker")
			flags.StringVar(&manifestPath, "manifest", "", "write a provenance manifest to this path after patching")
			flags.StringVar(&manifestFormat, "manifest-format", "", "manifest serialization: json, yaml, or cbor (default by extension)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("patch takes exactly one TARGET argument, got %d", len(args))
			}
			target := args[0]

			var (
				payload []byte
				fields  section.Fields
				project buildenv.Project
				err     error
			)
			if input != "" {
				if len(selection.fields()) != 0 || selection.custom != "" {
					return errors.New("--input and field selection flags are mutually exclusive")
				}
				if selection.configPath != "" {
					if project, err = buildenv.ReadProjectFile(selection.configPath); err != nil {
						return err
					}
				}
				if payload, err = os.ReadFile(input); err != nil {
					return err
				}
				fields = section.Decode(payload)
			} else {
				if payload, fields, project, err = selection.payload(ctx, logger); err != nil {
					return err
				}
			}

			name := sectionName
			if name == "" {
				name = project.Section
			}
			if name != "" {
				if err := patch.ELFSection(target, name, payload); err != nil {
					return err
				}
				fmt.Printf("patched section %s of %s (%d fields)\n", name, target, fields.Count())
			} else {
				location, err := patch.File(target, payload)
				if err != nil {
					return err
				}
				fmt.Printf("patched %s at offset %d (%d fields)\n", target, location.PayloadOffset(), fields.Count())
			}

			sidecar := manifestPath
			if sidecar == "" {
				sidecar = project.Manifest
			}
			if sidecar != "" {
				format := manifestFormat
				if format == "" {
					format = project.ManifestFormat
				}
				record, err := manifest.New(target, len(payload), fields)
				if err != nil {
					return err
				}
				if err := record.WriteFile(sidecar, format); err != nil {
					return err
				}
				fmt.Printf("wrote manifest %s\n", sidecar)
			}
			return nil
		},
	}
}
