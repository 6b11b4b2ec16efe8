package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jamesainslie/attest/pkg/attest/config"
	"github.com/jamesainslie/attest/pkg/attest/report"
	"github.com/jamesainslie/attest/pkg/attest/verifier"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <directory> <manifest>",
	Short: "Verify a directory tree against a manifest",
	Long: `Verify re-walks the given directory, recomputes every file digest, and
compares it against the manifest. Each file is reported as verified,
failed verification, or unexpected; manifest entries absent from disk are
reported missing. The full report is also persisted to a report artifact.`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

var verifyReportPath string

func init() {
	verifyCmd.Flags().StringVarP(&verifyReportPath, "report", "r", "", "report output path (default: ./"+config.DefaultReportName+")")
	rootCmd.AddCommand(verifyCmd)
}

// runVerify is the verify command handler.
func runVerify(_ *cobra.Command, args []string) error {
	root, err := resolveDir(args[0])
	if err != nil {
		return err
	}

	manifestPath, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	if info, err := os.Stat(manifestPath); err != nil || info.IsDir() {
		return fmt.Errorf("%s does not exist or is not a readable manifest", manifestPath)
	}

	reportPath := verifyReportPath
	if reportPath == "" {
		reportPath = appCfg.ReportName
	}
	reportPath, err = filepath.Abs(reportPath)
	if err != nil {
		return fmt.Errorf("failed to resolve report path: %w", err)
	}

	outFormat := viper.GetString("output")
	if outFormat == "" {
		outFormat = appCfg.Output
	}

	renderer, formatter, err := selectOutput(outFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := verifier.Verify(ctx, verifier.Options{
		Root:         root,
		ManifestPath: manifestPath,
		ReportPath:   reportPath,
		Exclude:      viper.GetStringSlice("exclude"),
		Renderer:     renderer,
		Journal:      openJournal(),
	})
	if err != nil {
		return err
	}

	if formatter != nil {
		var buf bytes.Buffer
		if err := formatter.Format(&buf, sum); err != nil {
			return fmt.Errorf("formatting summary: %w", err)
		}
		fmt.Print(buf.String())
	}

	if getStrict() && sum.Failed()+sum.Missing > 0 {
		return fmt.Errorf("verification failed for %d files", sum.Failed()+sum.Missing)
	}
	return nil
}

// selectOutput picks the console rendering for a verify run: a streaming
// renderer for human formats, or a summary formatter for machine formats.
// Exactly one of the two returns non-nil.
func selectOutput(format string) (report.Renderer, report.Formatter, error) {
	switch format {
	case "json", "yaml":
		f, err := report.Get(format)
		if err != nil {
			return nil, nil, err
		}
		return nil, f, nil
	case "plain":
		return report.NewPlainRenderer(os.Stdout), nil, nil
	case "", "pretty":
		if colorCapable() {
			return report.NewPrettyRenderer(os.Stdout), nil, nil
		}
		return report.NewPlainRenderer(os.Stdout), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown output format %q (available: plain, pretty, %v)",
			format, report.Available())
	}
}

// colorCapable reports whether decorated output should be used: stdout is
// a terminal and color has not been disabled.
func colorCapable() bool {
	if viper.GetBool("no_color") || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}
