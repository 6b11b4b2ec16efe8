// Package journal persists a record of build and verify runs to the
// filesystem, one JSON file per run.
package journal

import "time"

// OperationType represents the type of operation.
type OperationType string

const (
	// OpBuild represents a manifest build run.
	OpBuild OperationType = "build"
	// OpVerify represents a verification run.
	OpVerify OperationType = "verify"
)

// Entry represents a single journal entry.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Operation OperationType `json:"operation"`
	Root      string        `json:"root"`
	Artifact  string        `json:"artifact"`
	Counts    Counts        `json:"counts"`
}

// Counts contains the aggregate numbers for a run.
type Counts struct {
	TotalFiles int64 `json:"total_files"`
	TotalBytes int64 `json:"total_bytes"`
	Verified   int64 `json:"verified,omitempty"`
	Failed     int64 `json:"failed,omitempty"`
	Missing    int64 `json:"missing,omitempty"`
	Unexpected int64 `json:"unexpected,omitempty"`
	Failures   int64 `json:"failures,omitempty"`
}
