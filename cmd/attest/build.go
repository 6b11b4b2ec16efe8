package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jamesainslie/attest/pkg/attest/builder"
	"github.com/jamesainslie/attest/pkg/attest/config"
	"github.com/jamesainslie/attest/pkg/attest/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var buildCmd = &cobra.Command{
	Use:   "build <directory>",
	Short: "Digest every file under a directory and write a manifest",
	Long: `Build walks the given directory, computes a SHA-256 digest for every
regular file, and writes a manifest mapping each relative path to its
digest. A file that cannot be read is reported and excluded; it never
aborts the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

var buildManifestPath string

func init() {
	buildCmd.Flags().StringVarP(&buildManifestPath, "manifest", "m", "", "manifest output path (default: ./"+config.DefaultManifestName+")")
	rootCmd.AddCommand(buildCmd)
}

// runBuild is the build command handler.
func runBuild(_ *cobra.Command, args []string) error {
	root, err := resolveDir(args[0])
	if err != nil {
		return err
	}

	manifestPath := buildManifestPath
	if manifestPath == "" {
		manifestPath = appCfg.ManifestName
	}
	manifestPath, err = filepath.Abs(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result *builder.Result
	err = withProgress(root, progressEnabled(), func(onProgress func(types.Progress), onFailure func(types.FileError)) error {
		var buildErr error
		result, buildErr = builder.Build(ctx, builder.Options{
			Root:         root,
			ManifestPath: manifestPath,
			Exclude:      viper.GetStringSlice("exclude"),
			OnProgress:   onProgress,
			OnFailure:    onFailure,
			Journal:      openJournal(),
		})
		return buildErr
	})
	if err != nil {
		return err
	}

	printInfo("Hashed %d files (%s) in %s",
		len(result.Entries),
		types.FormatSize(result.BytesDigested),
		result.Elapsed.Round(time.Millisecond))
	printInfo("Manifest written to %s", result.ManifestPath)
	if len(result.Failures) > 0 {
		printInfo("%d files could not be recorded (see above)", len(result.Failures))
	}

	if getStrict() && len(result.Failures) > 0 {
		return fmt.Errorf("%d files failed to digest", len(result.Failures))
	}
	return nil
}
