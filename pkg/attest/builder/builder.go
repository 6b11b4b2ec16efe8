// Package builder produces manifest artifacts: it walks a directory tree,
// digests every regular file, and persists the relative-path-to-digest
// mapping.
package builder

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jamesainslie/attest/pkg/attest/journal"
	"github.com/jamesainslie/attest/pkg/attest/logging"
	"github.com/jamesainslie/attest/pkg/attest/manifest"
	"github.com/jamesainslie/attest/pkg/attest/scanner"
	"github.com/jamesainslie/attest/pkg/attest/types"
)

// logger is the package-level logger for build runs.
var logger = logging.Get("builder")

// Options configures a build run.
type Options struct {
	// Root is the directory to enumerate and digest.
	Root string

	// ManifestPath is where the manifest artifact is written.
	ManifestPath string

	// Exclude contains glob patterns for paths to skip.
	Exclude []string

	// OnProgress is called periodically with traversal progress.
	OnProgress func(types.Progress)

	// OnFailure is called once per file that could not be recorded.
	// Calls are serialized; failures never abort the run.
	OnFailure func(types.FileError)

	// Journal, when set, records the completed run.
	Journal *journal.Journal
}

// Result is the outcome of a build run.
type Result struct {
	// Entries holds the recorded files sorted by relative path, exactly
	// as written to the manifest artifact.
	Entries []types.FileEntry

	// Failures holds files that were excluded from the manifest because
	// they could not be digested or recorded.
	Failures []types.FileError

	// BytesDigested is the total bytes read.
	BytesDigested int64

	// Elapsed is the total build time.
	Elapsed time.Duration

	// ManifestPath is where the artifact was written.
	ManifestPath string
}

// Build walks opts.Root, digests every regular file, and persists the
// manifest. A single unreadable file is reported through OnFailure and
// excluded; only an invalid root or a manifest write failure are fatal.
func Build(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrNotDirectory, opts.Root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", types.ErrNotDirectory, opts.Root)
	}

	var (
		entries  []types.FileEntry
		failures []types.FileError
		failMu   sync.Mutex
	)

	// Called from both the entry and error callbacks, which the scanner
	// serializes independently of each other.
	fail := func(fe types.FileError) {
		failMu.Lock()
		failures = append(failures, fe)
		failMu.Unlock()
		if opts.OnFailure != nil {
			opts.OnFailure(fe)
		}
	}

	sc := scanner.New(scanner.Options{
		Root:       opts.Root,
		Exclude:    opts.Exclude,
		OnProgress: opts.OnProgress,
		OnEntry: func(e types.FileEntry) {
			// A path carrying the manifest delimiter cannot be
			// recorded; treat it like any other per-file failure.
			if strings.Contains(e.Path, manifest.Delimiter) {
				fail(types.FileError{
					Path:  e.Path,
					Error: manifest.ErrDelimiterInPath.Error(),
				})
				return
			}
			entries = append(entries, e)
		},
		OnError: fail,
	})

	res, err := sc.Scan(ctx)
	if err != nil {
		return nil, err
	}

	// Completion order is nondeterministic under the parallel walk;
	// sorting makes the artifact stable across runs.
	sort.Slice(entries, func(i, k int) bool {
		return entries[i].Path < entries[k].Path
	})

	if err := manifest.WriteFile(opts.ManifestPath, entries); err != nil {
		return nil, err
	}

	logger.Info("build complete",
		"root", opts.Root,
		"entries", len(entries),
		"failures", len(failures),
		"manifest", opts.ManifestPath)

	result := &Result{
		Entries:       entries,
		Failures:      failures,
		BytesDigested: res.BytesDigested,
		Elapsed:       time.Since(start),
		ManifestPath:  opts.ManifestPath,
	}

	if opts.Journal != nil {
		jerr := opts.Journal.EnsureDir()
		if jerr == nil {
			_, jerr = opts.Journal.LogBuild(opts.Root, opts.ManifestPath, journal.Counts{
				TotalFiles: int64(len(entries)),
				TotalBytes: res.BytesDigested,
				Failures:   int64(len(failures)),
			})
		}
		if jerr != nil {
			logger.Warn("journal write failed", "error", jerr)
		}
	}

	return result, nil
}
