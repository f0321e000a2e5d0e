// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/buildstamp/buildstamp/lib/buildenv"
	"github.com/buildstamp/buildstamp/lib/gitinfo"
	"github.com/buildstamp/buildstamp/lib/section"
	"github.com/buildstamp/buildstamp/lib/stamper"
)

// fieldSelection is the flag surface shared by gen and patch: which
// fields to stamp, where to collect them from, and how strictly.
type fieldSelection struct {
	gitSHA             bool
	gitDescribe        bool
	gitBranch          bool
	gitCommitTimestamp bool
	gitCommitDate      bool
	gitCommitMessage   bool
	allGit             bool
	buildTimestamp     bool
	buildDate          bool
	allBuildTime       bool
	custom             string
	repo               string
	bufferSize         int
	strict             bool
	configPath         string
	envFile            string
}

func (s *fieldSelection) addFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&s.gitSHA, "git-sha", false, "stamp the full commit hash")
	flags.BoolVar(&s.gitDescribe, "git-describe", false, "stamp git describe output")
	flags.BoolVar(&s.gitBranch, "git-branch", false, "stamp the branch name")
	flags.BoolVar(&s.gitCommitTimestamp, "git-commit-timestamp", false, "stamp the commit author timestamp")
	flags.BoolVar(&s.gitCommitDate, "git-commit-date", false, "stamp the commit author date")
	flags.BoolVar(&s.gitCommitMessage, "git-commit-msg", false, "stamp the first line of the commit message")
	flags.BoolVar(&s.allGit, "all-git", false, "stamp all six git fields")
	flags.BoolVar(&s.buildTimestamp, "build-timestamp", false, "stamp the build wall-clock timestamp")
	flags.BoolVar(&s.buildDate, "build-date", false, "stamp the build date")
	flags.BoolVar(&s.allBuildTime, "all-build-time", false, "stamp both build time fields")
	flags.StringVar(&s.custom, "custom", "", "stamp an arbitrary string into the custom field")
	flags.StringVar(&s.repo, "repo", ".", "git repository to query")
	flags.IntVar(&s.bufferSize, "buffer-size", 0, "section payload size in bytes (default 512)")
	flags.BoolVar(&s.strict, "strict", false, "fail when a selected field cannot be collected")
	flags.StringVar(&s.configPath, "config", "", "project file with stamping defaults (JSONC)")
	flags.StringVar(&s.envFile, "env-file", "", "load BUILDSTAMP_* settings from this file first")
}

// fields returns the fields selected by flags, in wire order. An
// empty result means no field flag was given; the project file's list
// may still apply.
func (s *fieldSelection) fields() []section.Field {
	var selected []section.Field
	add := func(field section.Field, on bool) {
		if on {
			selected = append(selected, field)
		}
	}
	add(section.FieldGitSHA, s.gitSHA || s.allGit)
	add(section.FieldGitDescribe, s.gitDescribe || s.allGit)
	add(section.FieldGitBranch, s.gitBranch || s.allGit)
	add(section.FieldGitCommitTimestamp, s.gitCommitTimestamp || s.allGit)
	add(section.FieldGitCommitDate, s.gitCommitDate || s.allGit)
	add(section.FieldGitCommitMessage, s.gitCommitMessage || s.allGit)
	add(section.FieldBuildTimestamp, s.buildTimestamp || s.allBuildTime)
	add(section.FieldBuildDate, s.buildDate || s.allBuildTime)
	return selected
}

// resolve loads the optional env and project files, resolves the
// buffer size (flag beats environment beats project file), and builds
// the writer. The returned project carries file-supplied defaults for
// anything the flags left unset.
func (s *fieldSelection) resolve(logger *slog.Logger) (*stamper.Writer, buildenv.Project, error) {
	var project buildenv.Project
	if s.envFile != "" {
		if err := buildenv.LoadEnvFile(s.envFile); err != nil {
			return nil, project, err
		}
	}
	build, err := buildenv.FromEnvironment()
	if err != nil {
		return nil, project, err
	}
	if s.configPath != "" {
		if project, err = buildenv.ReadProjectFile(s.configPath); err != nil {
			return nil, project, err
		}
	}

	size, err := buildenv.ResolveBufferSize(s.bufferSize, build.BufferSize, project.BufferSize)
	if err != nil {
		return nil, project, err
	}
	build.BufferSize = size

	writer, err := stamper.New(build, stamper.Options{
		Logger: logger,
		Strict: s.strict || project.Strict,
	})
	if err != nil {
		return nil, project, err
	}
	return writer, project, nil
}

// collect gathers every selected field into the writer. Field flags
// win over the project file's field list; when no flag selects
// anything, the project list applies. Selecting nothing at all is a
// usage error.
func (s *fieldSelection) collect(ctx context.Context, writer *stamper.Writer, project buildenv.Project) error {
	selected := s.fields()
	if len(selected) == 0 {
		selected = project.FieldList()
	}
	custom := s.custom
	if custom == "" {
		custom = project.Custom
	}
	if len(selected) == 0 && custom == "" {
		return errors.New("nothing selected to stamp; pass field flags like --all-git, or a --config with a fields list")
	}

	repo := gitinfo.NewRepository(s.repo)
	for _, field := range selected {
		var err error
		switch field {
		case section.FieldGitSHA:
			err = writer.AddGitSHA(ctx, repo)
		case section.FieldGitDescribe:
			err = writer.AddGitDescribe(ctx, repo)
		case section.FieldGitBranch:
			err = writer.AddGitBranch(ctx, repo)
		case section.FieldGitCommitTimestamp:
			err = writer.AddGitCommitTimestamp(ctx, repo)
		case section.FieldGitCommitDate:
			err = writer.AddGitCommitDate(ctx, repo)
		case section.FieldGitCommitMessage:
			err = writer.AddGitCommitMessage(ctx, repo)
		case section.FieldBuildTimestamp:
			err = writer.AddBuildTimestamp()
		case section.FieldBuildDate:
			err = writer.AddBuildDate()
		case section.FieldCustom:
			// Valued via --custom or the project file's custom
			// string, handled below.
		}
		if err != nil {
			return err
		}
	}
	if custom != "" {
		if err := writer.SetCustom(custom); err != nil {
			return err
		}
	}
	return nil
}

// payload runs the full pipeline: resolve, collect, encode.
func (s *fieldSelection) payload(ctx context.Context, logger *slog.Logger) ([]byte, section.Fields, buildenv.Project, error) {
	writer, project, err := s.resolve(logger)
	if err != nil {
		return nil, section.Fields{}, project, err
	}
	if err := s.collect(ctx, writer, project); err != nil {
		return nil, section.Fields{}, project, err
	}
	encoded, err := writer.Encode()
	if err != nil {
		return nil, section.Fields{}, project, err
	}
	return encoded, writer.Fields(), project, nil
}
