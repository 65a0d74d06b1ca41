// Package main provides the rpncalc command.
package main

import (
	"os"

	"github.com/leapstack-labs/rpncalc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
