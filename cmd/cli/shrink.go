// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"photobatch/internal/config"
	"photobatch/internal/exiftool"
	"photobatch/internal/logger"
	"photobatch/internal/runner"
	"photobatch/internal/scan"
	"photobatch/internal/shrink"
	"photobatch/internal/ui"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	shrinkOutFormat           string
	shrinkQuality             int
	shrinkMaxEdge             int
	shrinkStrip               bool
	shrinkKeepOrientationOnly bool
	shrinkWorkers             int
	shrinkOverwrite           bool
	shrinkPlain               bool
)

var shrinkCmd = &cobra.Command{
	Use:   "shrink <input-dir> <output-dir>",
	Short: "Batch shrink photos (JPG/PNG/WebP/TIFF/HEIC/ARW) to smaller files",
	Long: `Recursively scans the input directory for supported photos, downscales
each one to the maximum long edge, and re-encodes it into the output
directory. RAW (ARW) and HEIC/HEIF inputs are decoded through the full-size
JPEG preview embedded by the camera, which requires exiftool. Metadata is
carried over by default; use --strip or --keep-orientation-only to drop it.`,
	Example: "  pb shrink ~/photos/2026-03-shoot ~/photos/2026-03-shoot-small\n" +
		"  pb shrink --max-edge 3000 --quality 70 --strip ./in ./out\n" +
		"  pb shrink --out-format png --workers 4 ./in ./out",
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runShrink(cmd, args[0], args[1])
	},
}

func init() {
	defaults := config.Config{}.EffectiveDefaults()

	shrinkCmd.Flags().StringVar(&shrinkOutFormat, "out-format", defaults.OutFormat, "Output format (jpeg or png)")
	shrinkCmd.Flags().IntVar(&shrinkQuality, "quality", defaults.Quality, "JPEG quality 1-95")
	shrinkCmd.Flags().IntVar(&shrinkMaxEdge, "max-edge", defaults.MaxEdge, "Max long edge in pixels")
	shrinkCmd.Flags().BoolVar(&shrinkStrip, "strip", false, "Strip metadata/EXIF from outputs")
	shrinkCmd.Flags().BoolVar(&shrinkKeepOrientationOnly, "keep-orientation-only", false, "Drop EXIF but keep the ICC profile (orientation is baked into pixels)")
	shrinkCmd.Flags().IntVar(&shrinkWorkers, "workers", defaults.Workers, "Parallel workers")
	shrinkCmd.Flags().BoolVar(&shrinkOverwrite, "overwrite", false, "Overwrite same-named outputs")
	shrinkCmd.Flags().BoolVar(&shrinkPlain, "plain", false, "Line-based output instead of the progress view")

	_ = shrinkCmd.RegisterFlagCompletionFunc("out-format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"jpeg", "png"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// applyShrinkDefaults overlays config-file defaults onto flags the user did
// not set explicitly.
func applyShrinkDefaults(cmd *cobra.Command, cfg config.Config) {
	d := cfg.EffectiveDefaults()
	if !cmd.Flags().Changed("out-format") {
		shrinkOutFormat = d.OutFormat
	}
	if !cmd.Flags().Changed("quality") {
		shrinkQuality = d.Quality
	}
	if !cmd.Flags().Changed("max-edge") {
		shrinkMaxEdge = d.MaxEdge
	}
	if !cmd.Flags().Changed("workers") {
		shrinkWorkers = d.Workers
	}
}

func runShrink(cmd *cobra.Command, inDir, outDir string) {
	cfg, err := config.LoadConfig()
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	applyShrinkDefaults(cmd, cfg)

	format, err := shrink.ParseFormat(shrinkOutFormat)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if shrinkQuality < 1 || shrinkQuality > 95 {
		errorColor.Fprintln(os.Stderr, "Error: --quality must be between 1 and 95.")
		os.Exit(1)
	}

	inDir, err = filepath.Abs(inDir)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error resolving input directory: %v\n", err)
		os.Exit(1)
	}
	if info, statErr := os.Stat(inDir); statErr != nil || !info.IsDir() {
		errorColor.Fprintf(os.Stderr, "Error: input path is not a directory: %s\n", inDir)
		os.Exit(1)
	}

	statusColor.Printf("Scanning %s...\n", inDir)
	files, err := scan.FindLocalFiles(inDir, scan.ShrinkExtensions())
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error scanning input directory: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No supported files found (%s).\n", strings.Join(scan.ShrinkExtensions().Sorted(), "/"))
		os.Exit(1)
	}

	metadata := shrink.MetaAll
	if shrinkStrip {
		metadata = shrink.MetaStrip
	} else if shrinkKeepOrientationOnly {
		metadata = shrink.MetaOrientationOnly
	}

	// exiftool is needed to copy metadata and to pull previews out of
	// RAW/HEIF inputs; a pure strip run over plain images works without it.
	if needsExiftool(files, metadata) {
		version, verErr := exiftool.Version(runner.LocalTarget())
		if verErr != nil {
			errorColor.Fprintf(os.Stderr, "Error: %v\n", verErr)
			os.Exit(1)
		}
		logger.Debug("exiftool available", "version", version)
	}

	opts := shrink.Options{
		OutputDir: outDir,
		Format:    format,
		Quality:   shrinkQuality,
		MaxEdge:   shrinkMaxEdge,
		Metadata:  metadata,
		Overwrite: shrinkOverwrite,
	}

	statusColor.Printf("Shrinking %d file(s) with %d worker(s)...\n", len(files), shrinkWorkers)

	results := shrink.Run(context.Background(), files, opts, shrinkWorkers)

	var summary shrink.Summary
	var failures []string

	if useProgressView(shrinkPlain) {
		summary, failures = collectShrinkResults(results, func(items <-chan ui.ItemResult) error {
			return ui.RunProgress("Shrinking photos", len(files), items)
		})
	} else {
		for res := range results {
			summary.Add(res)
			switch {
			case res.Err != nil:
				failures = append(failures, res.Err.Error())
				errorColor.Printf("FAIL %s: %v\n", res.Input, res.Err)
			case res.Skipped:
				dimColor.Printf("skip %s (output exists)\n", res.Input)
			default:
				fmt.Printf("ok   %s -> %s (%s -> %s)\n",
					res.Input, res.Output,
					humanize.Bytes(uint64(res.BytesBefore)), humanize.Bytes(uint64(res.BytesAfter)))
			}
		}
	}

	printShrinkSummary(summary, failures)
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// collectShrinkResults folds the batch results into a summary while feeding
// the progress view. The feeder goroutine owns the accumulators and hands
// them over a channel once the batch drains, so the caller never reads them
// concurrently. The view may return early (ctrl+c); the drain loop keeps
// receiving so the feeder can finish instead of blocking on a dead channel.
func collectShrinkResults(results <-chan shrink.Result, runView func(<-chan ui.ItemResult) error) (shrink.Summary, []string) {
	type outcome struct {
		summary  shrink.Summary
		failures []string
	}

	uiResults := make(chan ui.ItemResult)
	done := make(chan outcome, 1)

	go func() {
		var o outcome
		for res := range results {
			o.summary.Add(res)
			if res.Err != nil {
				o.failures = append(o.failures, res.Err.Error())
			}
			uiResults <- shrinkItemResult(res)
		}
		close(uiResults)
		done <- o
	}()

	if err := runView(uiResults); err != nil {
		logger.Errorf("Progress view error: %v", err)
	}
	for range uiResults {
	}

	o := <-done
	return o.summary, o.failures
}

// needsExiftool reports whether the batch has to shell out to exiftool.
func needsExiftool(files []scan.File, metadata shrink.MetadataMode) bool {
	if metadata != shrink.MetaStrip {
		return true
	}
	previewExts := shrink.PreviewExtensions()
	for _, f := range files {
		if previewExts.Has(f.Path) {
			return true
		}
	}
	return false
}

func shrinkItemResult(res shrink.Result) ui.ItemResult {
	item := ui.ItemResult{Name: filepath.Base(res.Input)}
	switch {
	case res.Err != nil:
		item.Status = ui.ItemFailed
		item.Detail = res.Err.Error()
	case res.Skipped:
		item.Status = ui.ItemSkipped
	default:
		item.Status = ui.ItemOK
		item.Detail = fmt.Sprintf("%s -> %s", humanize.Bytes(uint64(res.BytesBefore)), humanize.Bytes(uint64(res.BytesAfter)))
	}
	return item
}

func printShrinkSummary(summary shrink.Summary, failures []string) {
	fmt.Println()
	stepColor.Println("Summary")
	fmt.Printf("- Processed: %d\n", summary.Processed)
	fmt.Printf("- Skipped:   %d\n", summary.Skipped)
	if summary.Failed > 0 {
		errorColor.Printf("- Failed:    %d\n", summary.Failed)
	}
	if summary.BytesBefore > 0 {
		fmt.Printf("- Total before: %s\n", humanize.Bytes(uint64(summary.BytesBefore)))
		fmt.Printf("- Total after : %s\n", humanize.Bytes(uint64(summary.BytesAfter)))
		successColor.Printf("- Reduction   : %.1f%%\n", summary.ReductionPercent())
	}
	for _, failure := range failures {
		errorColor.Fprintf(os.Stderr, "Error: %s\n", failure)
	}
}
