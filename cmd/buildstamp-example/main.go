// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/buildstamp/buildstamp/lib/stamp"
)

func main() {
	fmt.Println(stamp.Summary())
	fmt.Println()

	show("git_sha", stamp.GitSHA)
	show("git_describe", stamp.GitDescribe)
	show("git_branch", stamp.GitBranch)
	show("git_commit_timestamp", stamp.GitCommitTimestamp)
	show("git_commit_date", stamp.GitCommitDate)
	show("git_commit_msg", stamp.GitCommitMessage)
	show("build_timestamp", stamp.BuildTimestamp)
	show("build_date", stamp.BuildDate)
	show("custom", stamp.Custom)

	if version, ok := stamp.Semver(); ok {
		fmt.Printf("\nsemantic version: %s\n", version)
	}
}

// show prints one field, standing in a placeholder when the build
// never stamped it.
func show(name string, get func() (string, bool)) {
	value, ok := get()
	if !ok {
		value = "(not set)"
	}
	fmt.Printf("%-21s %s\n", name, value)
}
