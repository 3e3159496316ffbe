// Package main provides the leapbind command.
package main

import (
	"os"

	"github.com/leapstack-labs/leapbind/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
