// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"photobatch/internal/config"
	"photobatch/internal/exiftool"
	"photobatch/internal/logger"
	"photobatch/internal/runner"
	"photobatch/internal/scan"
	"photobatch/internal/timeshift"
	"photobatch/internal/ui"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var (
	fixtzInput   string
	fixtzOutput  string
	fixtzFromUTC string
	fixtzToUTC   string
	fixtzExts    []string
	fixtzDryRun  bool
	fixtzHost    string
	fixtzPlain   bool
)

var fixtzCmd = &cobra.Command{
	Use:   "fixtz",
	Short: "Copy photos and shift their EXIF timestamps by a timezone correction",
	Long: `Corrects timestamps recorded under a wrong camera timezone setting.
Each matching file is copied into the output directory (preserving the
relative directory structure), then exiftool shifts DateTimeOriginal,
CreateDate, ModifyDate, the XMP dates, and the filesystem timestamps of the
copy by (to-utc - from-utc) hours. Originals are never modified.

With --host the whole run happens on a configured remote host: input and
output paths are remote paths and exiftool executes there over SSH.`,
	Example: "  pb fixtz -i ~/photos/tokyo -o ~/photos/tokyo-fixed\n" +
		"  pb fixtz -i ./dump -o ./fixed --from-utc -8 --to-utc +8\n" +
		"  pb fixtz -i /volume1/photos/raw -o /volume1/photos/fixed --host nas\n" +
		"  pb fixtz -i ./dump --ext .jpg --ext .mp4 --dry-run",
	Run: func(cmd *cobra.Command, args []string) {
		runFixtz()
	},
}

func init() {
	fixtzCmd.Flags().StringVarP(&fixtzInput, "input", "i", "", "Input directory (scanned recursively)")
	fixtzCmd.Flags().StringVarP(&fixtzOutput, "output", "o", "output", "Output directory")
	fixtzCmd.Flags().StringVar(&fixtzFromUTC, "from-utc", "-8", "UTC offset the camera was wrongly set to")
	fixtzCmd.Flags().StringVar(&fixtzToUTC, "to-utc", "+8", "UTC offset the timestamps should have")
	fixtzCmd.Flags().StringArrayVar(&fixtzExts, "ext", nil, "Additional extension to process (repeatable), e.g. --ext .jpg")
	fixtzCmd.Flags().BoolVar(&fixtzDryRun, "dry-run", false, "Print the exiftool commands without copying or writing anything")
	fixtzCmd.Flags().StringVar(&fixtzHost, "host", "", "Run against a configured remote SSH host")
	fixtzCmd.Flags().BoolVar(&fixtzPlain, "plain", false, "Line-based output instead of the progress view")
	_ = fixtzCmd.MarkFlagRequired("input")

	_ = fixtzCmd.RegisterFlagCompletionFunc("host", hostCompletionFunc)
}

func runFixtz() {
	fromUTC, err := timeshift.ParseUTCOffset(fixtzFromUTC)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	toUTC, err := timeshift.ParseUTCOffset(fixtzToUTC)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	shift := timeshift.Delta(fromUTC, toUTC)

	target := runner.LocalTarget()
	if fixtzHost != "" {
		cfg, cfgErr := config.LoadConfig()
		if cfgErr != nil {
			errorColor.Fprintf(os.Stderr, "Error loading configuration: %v\n", cfgErr)
			os.Exit(1)
		}
		host := cfg.FindHost(fixtzHost)
		if host == nil {
			errorColor.Fprintf(os.Stderr, "Error: host '%s' not found in configuration.\n", fixtzHost)
			os.Exit(1)
		}
		target = runner.RemoteTarget(host)
	}

	inputDir := fixtzInput
	outputDir := fixtzOutput
	if !target.IsRemote {
		inputDir, err = filepath.Abs(inputDir)
		if err != nil {
			errorColor.Fprintf(os.Stderr, "Error resolving input directory: %v\n", err)
			os.Exit(1)
		}
		if info, statErr := os.Stat(inputDir); statErr != nil || !info.IsDir() {
			errorColor.Fprintf(os.Stderr, "Error: input path is not a directory: %s\n", inputDir)
			os.Exit(1)
		}
		outputDir, err = filepath.Abs(outputDir)
		if err != nil {
			errorColor.Fprintf(os.Stderr, "Error resolving output directory: %v\n", err)
			os.Exit(1)
		}
	}

	if !fixtzDryRun {
		version, verErr := exiftool.Version(target)
		if verErr != nil {
			errorColor.Fprintf(os.Stderr, "Error: %v\n", verErr)
			os.Exit(1)
		}
		logger.Debug("exiftool available", "target", target.ServerName, "version", version)
	}

	exts := scan.FixtzExtensions()
	for _, e := range fixtzExts {
		exts.Add(e)
	}

	statusColor.Printf("Scanning %s on %s...\n", inputDir, identifierColor.Sprint(target.ServerName))
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Color("cyan")
	s.Suffix = " Scanning for photos..."
	s.Start()
	var files []scan.File
	if target.IsRemote {
		files, err = scan.FindRemoteFiles(target, inputDir, exts)
	} else {
		files, err = scan.FindLocalFiles(inputDir, exts)
	}
	s.Stop()
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error scanning input directory: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No matching files. Input: %s, extensions: %s\n", inputDir, strings.Join(exts.Sorted(), " "))
		return
	}

	opts := timeshift.Options{
		Target:    target,
		InputDir:  inputDir,
		OutputDir: outputDir,
		Shift:     shift,
		DryRun:    fixtzDryRun,
	}

	stepColor.Println("Parameters")
	fmt.Printf("- Input dir : %s\n", inputDir)
	fmt.Printf("- Output dir: %s\n", outputDir)
	fmt.Printf("- Target    : %s\n", identifierColor.Sprint(target.ServerName))
	fmt.Printf("- Correction: UTC%+d -> UTC%+d\n", fromUTC, toUTC)
	fmt.Printf("- Time shift: %s\n", shift)
	fmt.Printf("- Extensions: %s\n", strings.Join(exts.Sorted(), " "))
	fmt.Printf("- Files     : %d\n", len(files))
	fmt.Println()

	ok, failed := runFixtzBatch(opts, files)

	fmt.Println()
	stepColor.Println("Done")
	successColor.Printf("- Succeeded: %d\n", ok)
	if failed > 0 {
		errorColor.Printf("- Failed:    %d\n", failed)
	}
	fmt.Printf("- Output dir: %s\n", outputDir)

	if failed > 0 {
		os.Exit(1)
	}
}

// runFixtzBatch processes files one at a time. exiftool rewrites each copy
// in place, and a sequential pass keeps remote hosts from being hammered
// with parallel SSH sessions.
func runFixtzBatch(opts timeshift.Options, files []scan.File) (ok, failed int) {
	if fixtzDryRun {
		for _, f := range files {
			res := timeshift.ProcessFile(opts, f)
			ok++
			fmt.Printf("DRY RUN: %s\n", res.Command)
			if res.Preview != nil {
				dimColor.Printf("  DateTimeOriginal %s -> %s\n",
					res.Preview.Original.Format("2006:01:02 15:04:05"),
					res.Preview.Shifted.Format("2006:01:02 15:04:05"))
			}
		}
		return ok, 0
	}

	if useProgressView(fixtzPlain) {
		return collectFixtzResults(opts, files, func(items <-chan ui.ItemResult) error {
			return ui.RunProgress("Fixing timestamps", len(files), items)
		})
	}

	for _, f := range files {
		res := timeshift.ProcessFile(opts, f)
		if res.Err != nil {
			failed++
			errorColor.Printf("FAIL %s: %v\n", f.Rel, res.Err)
			continue
		}
		ok++
		fmt.Printf("ok   %s\n", f.Rel)
	}
	return ok, failed
}

// collectFixtzResults processes the files while feeding the progress view.
// The worker goroutine owns the counters and hands them back over a channel
// once every file is handled, so an early view exit (ctrl+c) never races the
// caller's read. The drain loop keeps receiving after the view returns so
// the worker is never left blocked on a send.
func collectFixtzResults(opts timeshift.Options, files []scan.File, runView func(<-chan ui.ItemResult) error) (ok, failed int) {
	type outcome struct{ ok, failed int }

	uiResults := make(chan ui.ItemResult)
	done := make(chan outcome, 1)

	go func() {
		var o outcome
		for _, f := range files {
			res := timeshift.ProcessFile(opts, f)
			item := ui.ItemResult{Name: f.Rel, Status: ui.ItemOK}
			if res.Err != nil {
				o.failed++
				item.Status = ui.ItemFailed
				item.Detail = res.Err.Error()
				logger.Errorf("fixtz failed for %s: %v", f.Path, res.Err)
			} else {
				o.ok++
			}
			uiResults <- item
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
	return o.ok, o.failed
}
