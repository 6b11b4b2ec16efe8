// Package verifier checks a directory tree against a previously built
// manifest. Each file on disk is re-digested and classified as verified,
// mismatched, or unexpected; manifest entries never seen on disk are
// reported missing.
package verifier

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jamesainslie/attest/pkg/attest/journal"
	"github.com/jamesainslie/attest/pkg/attest/logging"
	"github.com/jamesainslie/attest/pkg/attest/manifest"
	"github.com/jamesainslie/attest/pkg/attest/report"
	"github.com/jamesainslie/attest/pkg/attest/scanner"
	"github.com/jamesainslie/attest/pkg/attest/types"
)

// logger is the package-level logger for verify runs.
var logger = logging.Get("verifier")

// Options configures a verification run.
type Options struct {
	// Root is the directory to verify.
	Root string

	// ManifestPath is the manifest artifact to verify against.
	ManifestPath string

	// ReportPath is where the report artifact is written. Empty skips
	// report persistence.
	ReportPath string

	// Exclude contains glob patterns for paths to skip.
	Exclude []string

	// Renderer receives per-file status lines in processing order and
	// the final summary. Nil disables console rendering.
	Renderer report.Renderer

	// OnProgress is called periodically with traversal progress.
	OnProgress func(types.Progress)

	// Journal, when set, records the completed run.
	Journal *journal.Journal
}

// Verify re-walks opts.Root and compares every regular file against the
// manifest at opts.ManifestPath. Per-file read failures are classified as
// mismatched and never abort the run. The two preconditions fail with
// distinct errors before any traversal begins.
func Verify(ctx context.Context, opts Options) (*types.Summary, error) {
	start := time.Now()

	info, err := os.Stat(opts.Root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", types.ErrNotDirectory, opts.Root)
	}

	man, err := manifest.ReadFile(opts.ManifestPath)
	if err != nil {
		return nil, err
	}
	logger.Info("manifest loaded", "path", opts.ManifestPath, "entries", man.Len(), "skipped", man.Skipped)

	sum := &types.Summary{}
	visited := make(map[string]bool, man.Len())

	// classifyMu serializes classification across the entry and error
	// callbacks, which the scanner serializes independently of each
	// other; it also guarantees status lines never interleave.
	var classifyMu sync.Mutex

	record := func(res types.FileResult) {
		sum.Results = append(sum.Results, res)
		switch res.Status {
		case types.StatusVerified:
			sum.Verified++
		case types.StatusMismatched:
			sum.Mismatched++
		case types.StatusUnexpected:
			sum.Unexpected++
		case types.StatusMissing:
			sum.Missing++
		}
		if opts.Renderer != nil {
			opts.Renderer.FileLine(res)
		}
	}

	sc := scanner.New(scanner.Options{
		Root:       opts.Root,
		Exclude:    opts.Exclude,
		OnProgress: opts.OnProgress,
		OnEntry: func(e types.FileEntry) {
			classifyMu.Lock()
			defer classifyMu.Unlock()

			expected, ok := man.Lookup(e.Path)
			switch {
			case !ok:
				record(types.FileResult{
					Path:   e.Path,
					Status: types.StatusUnexpected,
					Actual: e.Digest,
				})
			case expected == e.Digest:
				visited[e.Path] = true
				record(types.FileResult{
					Path:     e.Path,
					Status:   types.StatusVerified,
					Expected: expected,
					Actual:   e.Digest,
				})
			default:
				visited[e.Path] = true
				record(types.FileResult{
					Path:     e.Path,
					Status:   types.StatusMismatched,
					Expected: expected,
					Actual:   e.Digest,
				})
			}
		},
		OnError: func(fe types.FileError) {
			classifyMu.Lock()
			defer classifyMu.Unlock()

			// A file the manifest knows about but we could not read
			// fails verification. Walk errors on paths outside the
			// manifest are surfaced via the log only.
			if expected, ok := man.Lookup(fe.Path); ok {
				visited[fe.Path] = true
				record(types.FileResult{
					Path:     fe.Path,
					Status:   types.StatusMismatched,
					Expected: expected,
					Error:    fe.Error,
				})
			}
		},
	})

	scanRes, err := sc.Scan(ctx)
	if err != nil {
		return nil, err
	}
	sum.BytesDigested = scanRes.BytesDigested

	// Manifest entries never seen on disk are missing. The manifest is
	// written sorted, so these come out in path order.
	for _, e := range man.Entries {
		if !visited[e.Path] {
			record(types.FileResult{
				Path:     e.Path,
				Status:   types.StatusMissing,
				Expected: e.Digest,
			})
		}
	}

	sum.Elapsed = time.Since(start)

	if opts.ReportPath != "" {
		if err := report.WriteArtifact(opts.ReportPath, sum); err != nil {
			return nil, err
		}
	}

	if opts.Renderer != nil {
		opts.Renderer.Summary(sum)
	}

	logger.Info("verify complete",
		"root", opts.Root,
		"verified", sum.Verified,
		"mismatched", sum.Mismatched,
		"unexpected", sum.Unexpected,
		"missing", sum.Missing)

	if opts.Journal != nil {
		jerr := opts.Journal.EnsureDir()
		if jerr == nil {
			_, jerr = opts.Journal.LogVerify(opts.Root, opts.ManifestPath, journal.Counts{
				TotalFiles: sum.TotalWalked(),
				Verified:   sum.Verified,
				Failed:     sum.Failed(),
				Missing:    sum.Missing,
				Unexpected: sum.Unexpected,
			})
		}
		if jerr != nil {
			logger.Warn("journal write failed", "error", jerr)
		}
	}

	return sum, nil
}
