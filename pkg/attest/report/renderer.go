// Package report renders verification results: streamed per-file status
// lines on the console, the aggregate count block, machine-readable
// summary formats, and the persisted report artifact.
//
// The console renderer is selected once at startup (plain or decorated)
// and passed explicitly to the verifier; nothing probes terminal
// capabilities mid-run.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/attest/pkg/attest/types"
)

// statusPadding is the gap between the longest path and the status column.
const statusPadding = 8

// minDashes is the minimum number of alignment dashes on a status line.
const minDashes = 3

// Renderer receives per-file results as they are produced and the final
// summary. Implementations are called from a single goroutine at a time;
// the verifier serializes FileLine calls.
type Renderer interface {
	// FileLine renders the status line for one classified path.
	FileLine(res types.FileResult)

	// Summary renders the aggregate count block after the run completes.
	Summary(sum *types.Summary)
}

// aligner tracks the status column so consecutive lines stay aligned.
// The column grows when a longer path arrives and never shrinks.
type aligner struct {
	col int
}

func (a *aligner) dashes(path string) string {
	if want := len(path) + statusPadding; want > a.col {
		a.col = want
	}
	n := a.col - len(path)
	if n < minDashes {
		n = minDashes
	}
	return strings.Repeat("-", n)
}

// PlainRenderer writes undecorated status lines and the classic boxed
// summary. Suitable for pipes and dumb terminals.
type PlainRenderer struct {
	w io.Writer
	a aligner
}

// NewPlainRenderer creates a PlainRenderer writing to w.
func NewPlainRenderer(w io.Writer) *PlainRenderer {
	return &PlainRenderer{w: w}
}

// FileLine renders the status line for one classified path.
func (r *PlainRenderer) FileLine(res types.FileResult) {
	fmt.Fprintf(r.w, "%s %s %s\n", res.Path, r.a.dashes(res.Path), res.Status)
}

// Summary renders the aggregate count block.
func (r *PlainRenderer) Summary(sum *types.Summary) {
	fmt.Fprint(r.w, "\n"+summaryBlock(sum))
}

// PrettyRenderer writes lipgloss-decorated status lines and a boxed
// summary. Select it only when stdout is a capable terminal.
type PrettyRenderer struct {
	w io.Writer
	a aligner
}

// NewPrettyRenderer creates a PrettyRenderer writing to w.
func NewPrettyRenderer(w io.Writer) *PrettyRenderer {
	return &PrettyRenderer{w: w}
}

// FileLine renders the status line for one classified path.
func (r *PrettyRenderer) FileLine(res types.FileResult) {
	fmt.Fprintf(r.w, "%s %s %s\n",
		res.Path,
		MutedStyle.Render(r.a.dashes(res.Path)),
		styleFor(res.Status).Render(string(res.Status)))
}

// Summary renders the aggregate count block inside a rounded border.
func (r *PrettyRenderer) Summary(sum *types.Summary) {
	lines := []string{
		TitleStyle.Render("Summary"),
		fmt.Sprintf("%s %s", LabelStyle.Render("Total files:"), ValueStyle.Render(fmt.Sprint(sum.TotalWalked()))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Verified:"), SuccessStyle.Render(fmt.Sprint(sum.Verified))),
	}

	failedLine := fmt.Sprintf("%s %d", LabelStyle.Render("Failed Verification:"), sum.Failed())
	if sum.Failed() > 0 {
		failedLine = fmt.Sprintf("%s %s", LabelStyle.Render("Failed Verification:"), ErrorStyle.Render(fmt.Sprint(sum.Failed())))
	}
	lines = append(lines, failedLine)

	missingLine := fmt.Sprintf("%s %d", LabelStyle.Render("Missing:"), sum.Missing)
	if sum.Missing > 0 {
		missingLine = fmt.Sprintf("%s %s", LabelStyle.Render("Missing:"), ErrorStyle.Render(fmt.Sprint(sum.Missing)))
	}
	lines = append(lines, missingLine)

	if sum.Unexpected > 0 {
		lines = append(lines, fmt.Sprintf("%s %s",
			LabelStyle.Render("Unexpected:"),
			WarningStyle.Render(fmt.Sprint(sum.Unexpected))))
	}

	fmt.Fprintln(r.w, SummaryBox.Render(strings.Join(lines, "\n")))
}

// styleFor maps a status to its display style.
func styleFor(s types.Status) lipgloss.Style {
	switch s {
	case types.StatusVerified:
		return SuccessStyle
	case types.StatusUnexpected:
		return WarningStyle
	default:
		return ErrorStyle
	}
}

// summaryBlock builds the classic boxed summary text shared by the plain
// renderer and the report artifact.
func summaryBlock(sum *types.Summary) string {
	const title = "Summary"
	border := strings.Repeat("-", len(title)+2)

	var sb strings.Builder
	sb.WriteString(border + "\n")
	sb.WriteString("|" + title + "|\n")
	sb.WriteString(border + "\n")
	fmt.Fprintf(&sb, "Total files: %d\n", sum.TotalWalked())
	fmt.Fprintf(&sb, "Verified: %d\n", sum.Verified)
	fmt.Fprintf(&sb, "Failed Verification: %d\n", sum.Failed())
	fmt.Fprintf(&sb, "Missing: %d\n", sum.Missing)
	if sum.Unexpected > 0 {
		fmt.Fprintf(&sb, "Unexpected: %d\n", sum.Unexpected)
	}
	return sb.String()
}

// Ensure both renderers implement Renderer.
var (
	_ Renderer = (*PlainRenderer)(nil)
	_ Renderer = (*PrettyRenderer)(nil)
)
