// Package digest computes SHA-256 content digests for files.
// Files are read in fixed-size chunks so arbitrarily large files never
// need to fit in memory.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// ChunkSize is the read buffer size used when digesting a file.
const ChunkSize = 64 * 1024

// HexLength is the length of a rendered SHA-256 digest.
const HexLength = sha256.Size * 2

// Sum reads r to EOF and returns the lowercase hex SHA-256 of its contents.
func Sum(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, ChunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File opens path and returns the lowercase hex SHA-256 of its contents.
// Open and read errors are returned to the caller; during a traversal they
// must be treated as per-file failures, never as fatal.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sum, err := Sum(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return sum, nil
}
