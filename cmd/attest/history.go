package main

import (
	"fmt"

	"github.com/jamesainslie/attest/pkg/attest/config"
	"github.com/jamesainslie/attest/pkg/attest/journal"
	"github.com/jamesainslie/attest/pkg/attest/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past build and verify runs",
	Long: `View the journal of build and verify runs.

Each run records its root directory, the artifact produced or checked,
and the aggregate counts.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of a specific run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove journal entries older than the retention period",
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// openJournal returns a journal instance with the configured directory,
// or nil when journaling is disabled.
func openJournal() *journal.Journal {
	if appCfg != nil && !appCfg.Journal.Enabled {
		return nil
	}

	dir := config.DefaultJournalDir()
	if appCfg != nil && appCfg.Journal.Path != "" {
		dir = appCfg.Journal.Path
	}

	j, err := journal.New(dir)
	if err != nil {
		return nil
	}
	return j
}

// requireJournal is like openJournal but errors when journaling is off.
func requireJournal() (*journal.Journal, error) {
	j := openJournal()
	if j == nil {
		return nil, fmt.Errorf("journaling is disabled (journal.enabled: false)")
	}
	return j, nil
}

// runHistory lists recent runs.
func runHistory(_ *cobra.Command, _ []string) error {
	j, err := requireJournal()
	if err != nil {
		return err
	}

	entries, err := j.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'attest build <directory>' to create a manifest.")
		return nil
	}

	for _, e := range entries {
		printInfo("%-22s %s %-6s %s", e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Operation, summaryLine(e))
	}
	return nil
}

// summaryLine builds the one-line count summary for a listing row.
func summaryLine(e journal.Entry) string {
	switch e.Operation {
	case journal.OpBuild:
		s := fmt.Sprintf("%d files (%s)", e.Counts.TotalFiles, types.FormatSize(e.Counts.TotalBytes))
		if e.Counts.Failures > 0 {
			s += fmt.Sprintf(", %d failures", e.Counts.Failures)
		}
		return s
	case journal.OpVerify:
		return fmt.Sprintf("%d verified, %d failed, %d missing",
			e.Counts.Verified, e.Counts.Failed, e.Counts.Missing)
	default:
		return ""
	}
}

// runHistoryShow displays one run in full.
func runHistoryShow(_ *cobra.Command, args []string) error {
	j, err := requireJournal()
	if err != nil {
		return err
	}

	entry, err := j.Get(args[0])
	if err != nil {
		return err
	}

	printInfo("ID:        %s", entry.ID)
	printInfo("Time:      %s", entry.Timestamp.Local().Format("2006-01-02 15:04:05"))
	printInfo("Operation: %s", entry.Operation)
	printInfo("Root:      %s", entry.Root)
	printInfo("Artifact:  %s", entry.Artifact)
	printInfo("Counts:")
	printInfo("  total files: %d", entry.Counts.TotalFiles)
	if entry.Operation == journal.OpBuild {
		printInfo("  total bytes: %s", types.FormatSize(entry.Counts.TotalBytes))
		printInfo("  failures:    %d", entry.Counts.Failures)
	} else {
		printInfo("  verified:    %d", entry.Counts.Verified)
		printInfo("  failed:      %d", entry.Counts.Failed)
		printInfo("  missing:     %d", entry.Counts.Missing)
		printInfo("  unexpected:  %d", entry.Counts.Unexpected)
	}
	return nil
}

// runHistoryClean prunes entries past the retention period.
func runHistoryClean(_ *cobra.Command, _ []string) error {
	j, err := requireJournal()
	if err != nil {
		return err
	}

	days := config.DefaultRetentionDays
	if appCfg != nil && appCfg.Journal.RetentionDays > 0 {
		days = appCfg.Journal.RetentionDays
	}

	removed, err := j.Prune(days)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	if removed == 0 {
		printInfo("Nothing to clean (retention: %d days).", days)
	} else {
		printInfo("Removed %d %s older than %d days.", removed, plural(removed, "entry", "entries"), days)
	}
	return nil
}

// plural picks the singular or plural noun.
func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
