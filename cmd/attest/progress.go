package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/attest/pkg/attest/report"
	"github.com/jamesainslie/attest/pkg/attest/types"
	"github.com/mattn/go-isatty"
)

// progressMsg is sent when traversal progress is updated.
type progressMsg types.Progress

// failureMsg is sent when a file could not be digested.
type failureMsg types.FileError

// doneMsg is sent when the run is complete.
type doneMsg struct{ err error }

// progressModel displays a spinner with live digest counters while a
// build runs in the background.
type progressModel struct {
	spinner   spinner.Model
	progress  types.Progress
	root      string
	startTime time.Time
	done      bool
	err       error
}

// newProgressModel creates the progress display for a run over root.
func newProgressModel(root string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(report.ColorPrimary)

	return progressModel{
		spinner:   s,
		root:      root,
		startTime: time.Now(),
	}
}

// Init initializes the progress model.
func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the progress model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.progress = types.Progress(msg)
		return m, nil

	case failureMsg:
		// Failures are emitted inline, above the managed progress line.
		line := report.ErrorStyle.Render("failed to digest ") + msg.Path + report.MutedStyle.Render(" ("+msg.Error+")")
		return m, tea.Println(line)

	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress line.
func (m progressModel) View() string {
	if m.done {
		return ""
	}

	counters := fmt.Sprintf("%d files, %s, %d dirs",
		m.progress.FilesDigested,
		types.FormatSize(m.progress.BytesDigested),
		m.progress.DirsWalked)
	if m.progress.Failures > 0 {
		counters += report.ErrorStyle.Render(fmt.Sprintf(", %d failures", m.progress.Failures))
	}

	elapsed := time.Since(m.startTime).Round(time.Second)

	return fmt.Sprintf("%s Digesting %s  %s %s\n",
		m.spinner.View(),
		report.ValueStyle.Render(m.root),
		counters,
		report.MutedStyle.Render(fmt.Sprintf("(%s)", elapsed)))
}

// progressEnabled reports whether an interactive progress display should
// be shown: stderr must be a terminal and progress must not be disabled.
func progressEnabled() bool {
	if appCfg != nil && appCfg.NoProgress {
		return false
	}
	if getQuiet() {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd())
}

// withProgress executes run, wiring its progress and failure callbacks to
// either an interactive spinner display or plain stderr lines.
func withProgress(root string, interactive bool, run func(onProgress func(types.Progress), onFailure func(types.FileError)) error) error {
	if !interactive {
		return run(nil, func(fe types.FileError) {
			printError("failed to digest %s: %s", fe.Path, fe.Error)
		})
	}

	p := tea.NewProgram(newProgressModel(root), tea.WithOutput(os.Stderr))

	var runErr error
	go func() {
		runErr = run(
			func(prog types.Progress) { p.Send(progressMsg(prog)) },
			func(fe types.FileError) { p.Send(failureMsg(fe)) },
		)
		p.Send(doneMsg{err: runErr})
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	return runErr
}
