// Package main is the entry point for the pasteclean CLI.
package main

import (
	"os"

	"github.com/jmylchreest/pasteclean/cmd/pasteclean/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
