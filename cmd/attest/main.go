// Package main provides the entry point for the attest integrity checker CLI.
package main

import (
	"os"

	"github.com/jamesainslie/attest/pkg/attest/logging"
)

func main() {
	err := Execute()
	_ = logging.Close()
	if err != nil {
		os.Exit(1)
	}
}
