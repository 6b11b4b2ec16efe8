package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/attest/pkg/attest/digest"
	"github.com/jamesainslie/attest/pkg/attest/logging"
	"github.com/jamesainslie/attest/pkg/attest/types"
)

// logger is the package-level logger for scan operations.
var logger = logging.Get("scanner")

// Result contains the aggregated outcome of a scan.
type Result struct {
	// Entries holds one entry per digested file, in processing order.
	Entries []types.FileEntry

	// Errors holds per-file failures encountered during the walk.
	Errors []types.FileError

	// DirsWalked is the total number of directories traversed.
	DirsWalked int64

	// FilesDigested is the total number of files digested.
	FilesDigested int64

	// BytesDigested is the total bytes read while digesting.
	BytesDigested int64

	// Elapsed is the total time taken to complete the scan.
	Elapsed time.Duration
}

// Scanner walks a directory tree and digests every regular file.
// Symbolic links are not followed and non-regular files are skipped.
type Scanner struct {
	opts Options

	// Atomic counters for thread-safe progress reporting.
	dirsWalked    atomic.Int64
	filesDigested atomic.Int64
	bytesDigested atomic.Int64
	failures      atomic.Int64

	// currentPath is the path currently being processed (for progress).
	currentPath atomic.Value

	// entries collects digested files; the mutex also serializes OnEntry.
	entries   []types.FileEntry
	entriesMu sync.Mutex

	// errors collects per-file failures without stopping the walk; the
	// mutex also serializes OnError.
	errors   []types.FileError
	errorsMu sync.Mutex

	// lastProgress tracks when we last reported progress to avoid
	// excessive callbacks.
	lastProgress atomic.Int64

	// root is the resolved absolute path being scanned.
	root string

	walkComplete atomic.Bool
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	_ = opts.Validate()

	s := &Scanner{
		opts:    opts,
		entries: make([]types.FileEntry, 0),
		errors:  make([]types.FileError, 0),
	}
	s.currentPath.Store("")
	return s
}

// Scan performs the walk and returns results.
// It blocks until complete or the context is cancelled. A per-file read
// failure is recorded and the walk continues; only a broken root or an
// internal walk error are returned as errors.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	startTime := time.Now()

	root, err := s.validateRoot()
	if err != nil {
		return nil, err
	}
	s.root = root

	s.currentPath.Store(root)
	s.reportProgressForce()

	if err := s.executeWalk(ctx); err != nil {
		return nil, err
	}

	s.walkComplete.Store(true)
	s.reportProgressForce()

	logger.Info("walk complete",
		"root", root,
		"files", s.filesDigested.Load(),
		"failures", s.failures.Load(),
		"elapsed", time.Since(startTime))

	return &Result{
		Entries:       s.entries,
		Errors:        s.errors,
		DirsWalked:    s.dirsWalked.Load(),
		FilesDigested: s.filesDigested.Load(),
		BytesDigested: s.bytesDigested.Load(),
		Elapsed:       time.Since(startTime),
	}, nil
}

// validateRoot resolves the root path to absolute and verifies it is a
// directory.
func (s *Scanner) validateRoot() (string, error) {
	root, err := filepath.Abs(s.opts.Root)
	if err != nil {
		return "", err
	}

	rootInfo, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !rootInfo.IsDir() {
		return "", types.ErrNotDirectory
	}

	return root, nil
}

// executeWalk runs fastwalk on the root.
func (s *Scanner) executeWalk(ctx context.Context) error {
	conf := fastwalk.Config{
		Follow: false, // Don't follow symlinks.
	}

	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		<-walkCtx.Done()
		close(done)
	}()

	walkErr := fastwalk.Walk(&conf, s.root, s.walkCallback(done))
	if walkErr != nil && !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, fastwalk.ErrSkipFiles) {
		return walkErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// walkCallback returns the callback function for fastwalk.Walk.
func (s *Scanner) walkCallback(done <-chan struct{}) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		// Check for cancellation.
		select {
		case <-done:
			return fastwalk.ErrSkipFiles
		default:
		}

		// Handle errors gracefully - record and continue.
		if err != nil {
			s.addError(path, err)
			return nil
		}

		// Check exclusions.
		if s.isExcluded(path) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		// Directories are never entries.
		if d.IsDir() {
			s.dirsWalked.Add(1)
			s.currentPath.Store(path)
			s.reportProgress()
			return nil
		}

		// Only regular files are digested; symlinks and special files
		// are out of scope.
		if d.Type().IsRegular() {
			s.processFile(path, d)
		}

		return nil
	}
}

// processFile digests a regular file and records the entry.
func (s *Scanner) processFile(path string, d fs.DirEntry) {
	s.currentPath.Store(path)

	rel, err := s.relPath(path)
	if err != nil {
		s.addError(path, err)
		return
	}

	sum, err := digest.File(path)
	if err != nil {
		s.addError(rel, err)
		return
	}

	if info, err := d.Info(); err == nil {
		s.bytesDigested.Add(info.Size())
	}
	s.filesDigested.Add(1)

	entry := types.FileEntry{Path: rel, Digest: sum}

	s.entriesMu.Lock()
	s.entries = append(s.entries, entry)
	if s.opts.OnEntry != nil {
		s.opts.OnEntry(entry)
	}
	s.entriesMu.Unlock()

	s.reportProgress()
}

// relPath converts an absolute walked path to a slash-separated path
// relative to the scan root. The relative form is the stable join key
// between build and verify runs.
func (s *Scanner) relPath(path string) (string, error) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// addError records a per-file failure thread-safely and notifies the
// caller.
func (s *Scanner) addError(path string, err error) {
	s.failures.Add(1)
	logger.Warn("file skipped", "path", path, "error", err)

	fe := types.FileError{Path: path, Error: err.Error()}

	s.errorsMu.Lock()
	s.errors = append(s.errors, fe)
	if s.opts.OnError != nil {
		s.opts.OnError(fe)
	}
	s.errorsMu.Unlock()
}

// reportProgress calls the progress callback if configured.
// Throttles calls to avoid excessive overhead.
func (s *Scanner) reportProgress() {
	if s.opts.OnProgress == nil {
		return
	}

	// Throttle progress updates to every 10ms.
	now := time.Now().UnixMilli()
	last := s.lastProgress.Load()
	if now-last < 10 {
		return
	}
	if !s.lastProgress.CompareAndSwap(last, now) {
		return // Another goroutine updated it.
	}

	s.sendProgress()
}

// reportProgressForce calls the progress callback immediately, bypassing
// the throttle. Use for important state changes like walk start/end.
func (s *Scanner) reportProgressForce() {
	if s.opts.OnProgress == nil {
		return
	}
	s.lastProgress.Store(time.Now().UnixMilli())
	s.sendProgress()
}

// sendProgress sends the current progress to the callback.
func (s *Scanner) sendProgress() {
	currentPath, _ := s.currentPath.Load().(string)

	s.opts.OnProgress(types.Progress{
		DirsWalked:    s.dirsWalked.Load(),
		FilesDigested: s.filesDigested.Load(),
		BytesDigested: s.bytesDigested.Load(),
		Failures:      s.failures.Load(),
		CurrentPath:   currentPath,
		WalkComplete:  s.walkComplete.Load(),
	})
}

// isExcluded checks if a path matches any exclusion pattern.
func (s *Scanner) isExcluded(path string) bool {
	for _, pattern := range s.opts.Exclude {
		if s.matchesExclusionPattern(path, pattern) {
			return true
		}
	}
	return false
}

// matchesExclusionPattern checks if a path matches a single exclusion
// pattern.
func (s *Scanner) matchesExclusionPattern(path, pattern string) bool {
	if pattern == "" {
		return false
	}

	// Check if the path starts with the exclusion pattern (for directories).
	if len(path) >= len(pattern) {
		if path == pattern {
			return true
		}
		if len(path) > len(pattern) && path[:len(pattern)+1] == pattern+string(filepath.Separator) {
			return true
		}
	}

	// Try glob matching against basename.
	if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
		return true
	}

	// Try matching against full path.
	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	return false
}
