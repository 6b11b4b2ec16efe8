// Package types provides core data types for the attest integrity checker.
// It includes structures for manifest entries, per-file verification results,
// run summaries, and progress reporting, along with size formatting helpers.
package types

import (
	"errors"
	"time"

	"github.com/dustin/go-humanize"
)

// FileEntry pairs a relative file path with its content digest.
// Paths are expressed relative to the traversal root and always use
// forward-slash separators so that manifests are portable across platforms.
type FileEntry struct {
	// Path is the slash-separated path relative to the traversal root.
	Path string `json:"path"`

	// Digest is the lowercase hexadecimal SHA-256 of the file contents.
	Digest string `json:"digest"`
}

// Status classifies a single file during verification.
type Status string

// Verification statuses. The string values are what appear on per-file
// status lines and in the persisted report artifact.
const (
	// StatusVerified means the recomputed digest matched the manifest.
	StatusVerified Status = "verified"

	// StatusMismatched means the file exists but its digest differs from
	// the manifest, or the file could not be read during verification.
	StatusMismatched Status = "failed verification"

	// StatusUnexpected means the file exists on disk but has no entry in
	// the manifest.
	StatusUnexpected Status = "unexpected"

	// StatusMissing means the manifest records the file but it was not
	// found on disk.
	StatusMissing Status = "missing"
)

// FileResult is the verification outcome for a single relative path.
type FileResult struct {
	// Path is the slash-separated path relative to the traversal root.
	Path string `json:"path"`

	// Status is the classification for this path.
	Status Status `json:"status"`

	// Expected is the digest recorded in the manifest, if any.
	Expected string `json:"expected,omitempty"`

	// Actual is the recomputed digest, if the file could be read.
	Actual string `json:"actual,omitempty"`

	// Error holds the read error message when digesting failed.
	Error string `json:"error,omitempty"`
}

// Summary aggregates the results of a verification run.
// Results preserves the order in which files were processed; the counts
// are derived from it as results are appended.
type Summary struct {
	// Results contains one entry per classified path, in processing order.
	// Missing paths are appended after the walk completes.
	Results []FileResult `json:"results"`

	// Verified is the number of files whose digests matched.
	Verified int64 `json:"verified"`

	// Mismatched is the number of files whose digests differed or that
	// could not be read.
	Mismatched int64 `json:"mismatched"`

	// Unexpected is the number of files on disk absent from the manifest.
	Unexpected int64 `json:"unexpected"`

	// Missing is the number of manifest entries absent from disk.
	Missing int64 `json:"missing"`

	// BytesDigested is the total bytes read while recomputing digests.
	BytesDigested int64 `json:"bytes_digested"`

	// Elapsed is the total verification time.
	Elapsed time.Duration `json:"elapsed"`
}

// TotalWalked returns the number of files encountered on disk.
// Missing entries are not walked and do not count.
func (s *Summary) TotalWalked() int64 {
	return s.Verified + s.Mismatched + s.Unexpected
}

// Failed returns the number of walked files that failed verification.
// Unexpected files count as failures so that TotalWalked = Verified + Failed.
func (s *Summary) Failed() int64 {
	return s.Mismatched + s.Unexpected
}

// FileError records a per-file failure encountered during a traversal.
// These never abort a run; they are collected and surfaced to the operator.
type FileError struct {
	// Path is the file or directory path where the error occurred.
	Path string `json:"path"`

	// Error is the error message describing what went wrong.
	Error string `json:"error"`
}

// Progress reports real-time traversal progress.
// It provides a snapshot of the current run state for progress reporting.
type Progress struct {
	// DirsWalked is the number of directories traversed so far.
	DirsWalked int64 `json:"dirs_walked"`

	// FilesDigested is the number of files digested so far.
	FilesDigested int64 `json:"files_digested"`

	// BytesDigested is the total bytes read so far.
	BytesDigested int64 `json:"bytes_digested"`

	// Failures is the number of per-file errors so far.
	Failures int64 `json:"failures"`

	// CurrentPath is the path most recently visited.
	CurrentPath string `json:"current_path"`

	// WalkComplete indicates that directory traversal is finished.
	WalkComplete bool `json:"walk_complete,omitempty"`
}

// Sentinel errors for precondition failures. These are fatal and abort a
// run before any traversal begins.
var (
	// ErrNotDirectory indicates the requested root is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrManifestUnreadable indicates the manifest artifact cannot be read.
	ErrManifestUnreadable = errors.New("manifest not readable")
)

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units for consistency with common filesystem tools.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
