package verifier

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jamesainslie/attest/pkg/attest/builder"
	"github.com/jamesainslie/attest/pkg/attest/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree creates a.txt ("hello") and sub/b.txt ("world") under a temp
// root and builds a manifest for it. Returns root and manifest path.
func buildTree(t *testing.T) (string, string) {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("world"), 0o644))

	manifestPath := filepath.Join(t.TempDir(), "hashes.txt")
	_, err := builder.Build(context.Background(), builder.Options{
		Root:         root,
		ManifestPath: manifestPath,
	})
	require.NoError(t, err)

	return root, manifestPath
}

// captureRenderer records every streamed line and the final summary.
type captureRenderer struct {
	lines   []types.FileResult
	summary *types.Summary
}

func (r *captureRenderer) FileLine(res types.FileResult) { r.lines = append(r.lines, res) }
func (r *captureRenderer) Summary(sum *types.Summary)    { r.summary = sum }

func TestVerifySelfConsistency(t *testing.T) {
	root, manifestPath := buildTree(t)

	sum, err := Verify(context.Background(), Options{
		Root:         root,
		ManifestPath: manifestPath,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), sum.Verified)
	assert.Zero(t, sum.Mismatched)
	assert.Zero(t, sum.Missing)
	assert.Zero(t, sum.Unexpected)
	assert.Equal(t, int64(2), sum.TotalWalked())
	assert.Zero(t, sum.Failed())
}

func TestVerifyTamperDetection(t *testing.T) {
	root, manifestPath := buildTree(t)

	// Flip one byte of one file.
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hellp"), 0o644))

	sum, err := Verify(context.Background(), Options{
		Root:         root,
		ManifestPath: manifestPath,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), sum.Verified)
	assert.Equal(t, int64(1), sum.Mismatched)

	var tampered *types.FileResult
	for i := range sum.Results {
		if sum.Results[i].Path == "a.txt" {
			tampered = &sum.Results[i]
		}
	}
	require.NotNil(t, tampered)
	assert.Equal(t, types.StatusMismatched, tampered.Status)
	assert.NotEqual(t, tampered.Expected, tampered.Actual)
}

func TestVerifyMissingFile(t *testing.T) {
	root, manifestPath := buildTree(t)
	require.NoError(t, os.Remove(filepath.Join(root, "sub", "b.txt")))

	sum, err := Verify(context.Background(), Options{
		Root:         root,
		ManifestPath: manifestPath,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), sum.Verified)
	assert.Equal(t, int64(1), sum.Missing)

	last := sum.Results[len(sum.Results)-1]
	assert.Equal(t, "sub/b.txt", last.Path)
	assert.Equal(t, types.StatusMissing, last.Status)
}

func TestVerifyUnexpectedFile(t *testing.T) {
	root, manifestPath := buildTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "extra.txt"), []byte("surprise"), 0o644))

	sum, err := Verify(context.Background(), Options{
		Root:         root,
		ManifestPath: manifestPath,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), sum.Verified)
	assert.Equal(t, int64(1), sum.Unexpected)
	assert.Equal(t, int64(1), sum.Failed())
	assert.Equal(t, int64(3), sum.TotalWalked())
}

func TestVerifyUnreadableFileFailsVerification(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}

	root, manifestPath := buildTree(t)
	require.NoError(t, os.Chmod(filepath.Join(root, "a.txt"), 0o000))

	sum, err := Verify(context.Background(), Options{
		Root:         root,
		ManifestPath: manifestPath,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), sum.Verified)
	assert.Equal(t, int64(1), sum.Mismatched)
	assert.Zero(t, sum.Missing)

	var failed *types.FileResult
	for i := range sum.Results {
		if sum.Results[i].Path == "a.txt" {
			failed = &sum.Results[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, types.StatusMismatched, failed.Status)
	assert.NotEmpty(t, failed.Expected)
	assert.NotEmpty(t, failed.Error)
	assert.Empty(t, failed.Actual)
}

func TestVerifyStreamsOneLinePerFile(t *testing.T) {
	root, manifestPath := buildTree(t)
	require.NoError(t, os.Remove(filepath.Join(root, "a.txt")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "extra.txt"), []byte("surprise"), 0o644))

	r := &captureRenderer{}
	sum, err := Verify(context.Background(), Options{
		Root:         root,
		ManifestPath: manifestPath,
		Renderer:     r,
	})
	require.NoError(t, err)

	// One line per classified path, in the same order as the summary.
	require.Len(t, r.lines, len(sum.Results))
	for i := range r.lines {
		assert.Equal(t, sum.Results[i], r.lines[i])
	}
	assert.Same(t, sum, r.summary)
}

func TestVerifyReportArtifact(t *testing.T) {
	root, manifestPath := buildTree(t)
	reportPath := filepath.Join(t.TempDir(), "report.txt")

	_, err := Verify(context.Background(), Options{
		Root:         root,
		ManifestPath: manifestPath,
		ReportPath:   reportPath,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "a.txt ")
	assert.Contains(t, text, " verified")
	assert.Contains(t, text, "|Summary|")
	assert.Contains(t, text, "Total files: 2")
	assert.Contains(t, text, "Verified: 2")
	assert.Contains(t, text, "Failed Verification: 0")
}

func TestVerifyInvalidRoot(t *testing.T) {
	_, manifestPath := buildTree(t)

	_, err := Verify(context.Background(), Options{
		Root:         filepath.Join(t.TempDir(), "nope"),
		ManifestPath: manifestPath,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNotDirectory))
}

func TestVerifyUnreadableManifest(t *testing.T) {
	root, _ := buildTree(t)

	_, err := Verify(context.Background(), Options{
		Root:         root,
		ManifestPath: filepath.Join(t.TempDir(), "nope.txt"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrManifestUnreadable))

	// The two precondition failures carry distinct sentinel errors.
	assert.False(t, errors.Is(err, types.ErrNotDirectory))
}

func TestVerifySkipsMalformedManifestLines(t *testing.T) {
	root, manifestPath := buildTree(t)

	data, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	corrupted := "not a manifest line\n" + string(data)
	require.NoError(t, os.WriteFile(manifestPath, []byte(corrupted), 0o644))

	sum, err := Verify(context.Background(), Options{
		Root:         root,
		ManifestPath: manifestPath,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Verified)
}

func TestVerifyMissingEntriesFollowManifestOrder(t *testing.T) {
	root := t.TempDir()
	manifestPath := filepath.Join(t.TempDir(), "hashes.txt")

	lines := []string{
		"a.txt:::" + strings.Repeat("1", 64),
		"b.txt:::" + strings.Repeat("2", 64),
		"c.txt:::" + strings.Repeat("3", 64),
	}
	require.NoError(t, os.WriteFile(manifestPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	sum, err := Verify(context.Background(), Options{
		Root:         root,
		ManifestPath: manifestPath,
	})
	require.NoError(t, err)

	require.Equal(t, int64(3), sum.Missing)
	assert.Equal(t, "a.txt", sum.Results[0].Path)
	assert.Equal(t, "b.txt", sum.Results[1].Path)
	assert.Equal(t, "c.txt", sum.Results[2].Path)
}
