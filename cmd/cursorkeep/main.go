// Package main is the entry point for the cursorkeep command.
package main

import (
	"os"

	"github.com/dshills/cursorkeep/internal/cli"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version, commit, date)

	// cobra has already printed the error
	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}
