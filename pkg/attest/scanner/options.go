// Package scanner provides parallel directory traversal with per-file
// digesting for attest. It uses fastwalk with atomic counters so large
// trees are digested with one goroutine per walker.
package scanner

import (
	"github.com/jamesainslie/attest/pkg/attest/types"
)

// Options configures the scanner behavior.
type Options struct {
	// Root is the directory whose regular files are digested.
	Root string

	// Exclude contains glob patterns for paths to skip during the walk.
	// Patterns are matched against the full path and the base name.
	Exclude []string

	// OnEntry is called once per successfully digested file. Calls are
	// serialized and arrive in the same order entries are accumulated.
	OnEntry func(types.FileEntry)

	// OnError is called once per file that could not be digested. Calls
	// are serialized. Errors never abort the walk.
	OnError func(types.FileError)

	// OnProgress is called periodically with traversal progress.
	// It must be safe to call from multiple goroutines.
	OnProgress func(types.Progress)
}

// Validate normalizes the options, defaulting the root to the current
// directory.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = "."
	}
	return nil
}
