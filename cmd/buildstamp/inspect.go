// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/buildstamp/buildstamp/cmd/buildstamp/cli"
	"github.com/buildstamp/buildstamp/lib/codec"
	"github.com/buildstamp/buildstamp/lib/patch"
	"github.com/buildstamp/buildstamp/lib/section"
)

func inspectCommand() *cli.Command {
	var (
		sectionName string
		format      string
	)
	return &cli.Command{
		Name:    "inspect",
		Summary: "Print the stamp embedded in an artifact",
		Usage:   "buildstamp inspect [flags] TARGET",
		Description: `Reads the stamp out of TARGET and prints every field. Gzip, zstd,
and lz4 compressed artifacts are decompressed transparently.

An unpatched artifact is not an error: every field prints as not set
and the command exits 0. Use "buildstamp verify" to treat a missing
stamp as a finding.`,
		Examples: []cli.Example{
			{
				Description: "Print the stamp as a table",
				Command:     "buildstamp inspect dist/app",
			},
			{
				Description: "Emit JSON for scripting",
				Command:     "buildstamp inspect --format json dist/app",
			},
			{
				Description: "Read from a named ELF section",
				Command:     "buildstamp inspect --section .buildstamp dist/app",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flags.StringVar(&sectionName, "section", "", "read this ELF section instead of scanning for the marker")
			flags.StringVar(&format, "format", "", "output format: text, json, yaml, or cbor (default text on a terminal, json otherwise)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("inspect takes exactly one TARGET argument, got %d", len(args))
			}
			fields, err := readArtifactFields(args[0], sectionName)
			if err != nil {
				return err
			}
			return printFields(os.Stdout, fields, format)
		},
	}
}

// readArtifactFields decodes the stamp out of an artifact, from the
// named ELF section when one is given and by marker scan otherwise.
func readArtifactFields(target, sectionName string) (section.Fields, error) {
	if sectionName != "" {
		payload, err := patch.ReadELFSection(target, sectionName)
		if err != nil {
			return section.Fields{}, err
		}
		return section.Decode(payload), nil
	}
	return patch.ReadFields(target)
}

// printFields renders a field set to w. An empty format picks text
// for terminals and JSON for pipes.
func printFields(w io.Writer, fields section.Fields, format string) error {
	if format == "" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			format = "text"
		} else {
			format = "json"
		}
	}
	switch format {
	case "text":
		tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
		for f := section.Field(0); f < section.FieldCount; f++ {
			value, ok := fields.Get(f)
			if !ok {
				value = "(not set)"
			}
			fmt.Fprintf(tw, "%s\t%s\n", f, value)
		}
		return tw.Flush()
	case "json":
		data, err := json.MarshalIndent(fields.Map(), "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case "yaml":
		data, err := yaml.Marshal(fields.Map())
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "cbor":
		data, err := codec.Marshal(fields.Map())
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q (want text, json, yaml, or cbor)", format)
	}
}
