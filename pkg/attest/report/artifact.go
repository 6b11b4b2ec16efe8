package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/jamesainslie/attest/pkg/attest/logging"
	"github.com/jamesainslie/attest/pkg/attest/types"
)

// logger is the package-level logger for report persistence.
var logger = logging.Get("report")

// RenderArtifact produces the full text of the verification report
// artifact: one status line per result in processing order, a blank line,
// the boxed summary header, then the aggregate counts. Alignment uses the
// longest path across all results so every status sits in one column.
func RenderArtifact(sum *types.Summary) string {
	col := 0
	for _, res := range sum.Results {
		if want := len(res.Path) + statusPadding; want > col {
			col = want
		}
	}

	var sb strings.Builder
	for _, res := range sum.Results {
		n := col - len(res.Path)
		if n < minDashes {
			n = minDashes
		}
		fmt.Fprintf(&sb, "%s %s %s\n", res.Path, strings.Repeat("-", n), res.Status)
	}

	sb.WriteString("\n")
	sb.WriteString(summaryBlock(sum))
	return sb.String()
}

// WriteArtifact persists the report atomically using a temp file and
// rename. Failure is fatal to the run.
func WriteArtifact(path string, sum *types.Summary) error {
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, []byte(RenderArtifact(sum)), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming report: %w", err)
	}

	logger.Info("report written", "path", path, "results", len(sum.Results))
	return nil
}
