// Package main provides the CLI for the chdump table schema dump toolkit.
package main

import (
	"os"

	"github.com/tablekit/chdump/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
