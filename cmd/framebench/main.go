// Package main provides the framebench CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/framebench/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
