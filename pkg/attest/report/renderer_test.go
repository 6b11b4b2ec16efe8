package report

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/jamesainslie/attest/pkg/attest/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() *types.Summary {
	return &types.Summary{
		Results: []types.FileResult{
			{Path: "a.txt", Status: types.StatusVerified},
			{Path: "sub/long-name.txt", Status: types.StatusMismatched},
			{Path: "gone.txt", Status: types.StatusMissing},
		},
		Verified:   1,
		Mismatched: 1,
		Missing:    1,
	}
}

func TestPlainRendererFileLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(&buf)

	r.FileLine(types.FileResult{Path: "a.txt", Status: types.StatusVerified})

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "a.txt "))
	assert.True(t, strings.HasSuffix(line, " verified\n"))
	assert.Contains(t, line, "---")
}

func TestPlainRendererSummaryBlock(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(&buf)

	r.Summary(sampleSummary())

	out := buf.String()
	assert.Contains(t, out, "---------\n|Summary|\n---------\n")
	assert.Contains(t, out, "Total files: 2")
	assert.Contains(t, out, "Verified: 1")
	assert.Contains(t, out, "Failed Verification: 1")
	assert.Contains(t, out, "Missing: 1")
}

func TestAlignerGrowsColumn(t *testing.T) {
	var a aligner

	short := a.dashes("a.txt")
	long := a.dashes("a/much/longer/path.txt")
	shortAgain := a.dashes("a.txt")

	// Once a longer path arrives, later short paths align to its column.
	assert.Greater(t, len(shortAgain), len(short))
	assert.Equal(t, len("a/much/longer/path.txt")+len(long), len("a.txt")+len(shortAgain))
}

func TestRenderArtifactAlignment(t *testing.T) {
	out := RenderArtifact(sampleSummary())
	lines := strings.Split(out, "\n")

	// Every status line puts the status word in the same column.
	statusCol := -1
	for _, line := range lines[:3] {
		idx := strings.LastIndex(line, "- ")
		require.NotEqual(t, -1, idx)
		if statusCol == -1 {
			statusCol = idx
		}
		assert.Equal(t, statusCol, idx, "line %q not aligned", line)
	}

	// Blank separator, then the boxed summary.
	assert.Equal(t, "", lines[3])
	assert.Contains(t, out, "|Summary|")
	assert.Contains(t, out, "Failed Verification: 1")
}

func TestRenderArtifactOrderFollowsResults(t *testing.T) {
	out := RenderArtifact(sampleSummary())

	aIdx := strings.Index(out, "a.txt")
	longIdx := strings.Index(out, "sub/long-name.txt")
	goneIdx := strings.Index(out, "gone.txt")
	assert.Less(t, aIdx, longIdx)
	assert.Less(t, longIdx, goneIdx)
}

func TestWriteArtifact(t *testing.T) {
	path := t.TempDir() + "/report.txt"
	require.NoError(t, WriteArtifact(path, sampleSummary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, RenderArtifact(sampleSummary()), string(data))
}

func TestPrettyRendererStreams(t *testing.T) {
	var buf bytes.Buffer
	r := NewPrettyRenderer(&buf)

	r.FileLine(types.FileResult{Path: "a.txt", Status: types.StatusVerified})
	r.Summary(sampleSummary())

	out := buf.String()
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "verified")
	assert.Contains(t, out, "Summary")
}
