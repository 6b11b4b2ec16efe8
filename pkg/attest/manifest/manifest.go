// Package manifest encodes and decodes the manifest artifact: a flat UTF-8
// text file with one `relativePath:::hexDigest` line per file. The triple
// colon delimiter comes from the original artifact format and is rejected
// in paths at build time rather than escaped.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jamesainslie/attest/pkg/attest/logging"
	"github.com/jamesainslie/attest/pkg/attest/types"
)

// Delimiter separates the relative path from the digest on each line.
// It must never occur in a recorded path.
const Delimiter = ":::"

// logger is the package-level logger for manifest I/O.
var logger = logging.Get("manifest")

// ErrDelimiterInPath indicates a path that cannot be recorded because it
// contains the line delimiter.
var ErrDelimiterInPath = errors.New("path contains manifest delimiter")

// Manifest is a decoded manifest artifact: the entries in file order plus
// a lookup index keyed by relative path.
type Manifest struct {
	// Entries holds the entries in the order they appear in the artifact.
	Entries []types.FileEntry

	// Skipped is the number of malformed lines ignored during decoding.
	Skipped int

	index map[string]string
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.Entries)
}

// Lookup returns the expected digest for a relative path.
func (m *Manifest) Lookup(path string) (string, bool) {
	d, ok := m.index[path]
	return d, ok
}

// Encode writes entries to w, one line per entry. It fails on the first
// path containing the delimiter; callers are expected to have screened
// such paths out as per-file failures beforehand.
func Encode(w io.Writer, entries []types.FileEntry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if strings.Contains(e.Path, Delimiter) {
			return fmt.Errorf("%w: %s", ErrDelimiterInPath, e.Path)
		}
		if _, err := fmt.Fprintf(bw, "%s%s%s\n", e.Path, Delimiter, e.Digest); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Decode reads a manifest from r. Lines without the delimiter are skipped
// and counted rather than failing the whole load; the split happens on the
// first occurrence of the delimiter so digests containing colons would
// still parse. Duplicate paths keep the last digest seen, matching map
// semantics of the original format.
func Decode(r io.Reader) (*Manifest, error) {
	m := &Manifest{index: make(map[string]string)}

	sc := bufio.NewScanner(r)
	// Paths can be long; digests are fixed. Allow lines up to 1 MiB.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}

		path, dig, ok := strings.Cut(line, Delimiter)
		if !ok {
			m.Skipped++
			logger.Warn("skipping malformed manifest line", "line", lineNo)
			continue
		}

		if _, dup := m.index[path]; dup {
			for i := range m.Entries {
				if m.Entries[i].Path == path {
					m.Entries[i].Digest = dig
					break
				}
			}
		} else {
			m.Entries = append(m.Entries, types.FileEntry{Path: path, Digest: dig})
		}
		m.index[path] = dig
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	return m, nil
}

// WriteFile persists entries to path atomically using a temp file and
// rename. A write failure here is fatal to the run: without the artifact
// the run's purpose is unmet.
func WriteFile(path string, entries []types.FileEntry) error {
	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}

	if err := Encode(f, entries); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing manifest: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming manifest: %w", err)
	}

	logger.Info("manifest written", "path", path, "entries", len(entries))
	return nil
}

// ReadFile loads and decodes the manifest artifact at path.
func ReadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrManifestUnreadable, path, err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
