// Package main provides the entry point for the rosterlink CLI tool.
package main

import (
	"github.com/rosterlink/rosterlink/cmd/rosterlink/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
