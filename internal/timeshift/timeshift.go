// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

// Package timeshift corrects photo timestamps recorded under the wrong
// timezone. Files are copied into an output tree preserving their relative
// structure, then exiftool shifts every relevant datetime tag of the copy by
// the correction delta. The originals are never touched.
package timeshift

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"photobatch/internal/exiftool"
	"photobatch/internal/runner"
	"photobatch/internal/scan"
	"photobatch/internal/util"

	"github.com/rwcarlsen/goexif/exif"
)

// ParseUTCOffset parses strings like "+8", "-8", "8", or "UTC+8" into
// integer hours.
func ParseUTCOffset(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "UTC")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return 0, fmt.Errorf("empty UTC offset '%s'", s)
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid UTC offset '%s': %w", s, err)
	}
	if n < -14 || n > 14 {
		return 0, fmt.Errorf("UTC offset '%s' out of range (-14..+14)", s)
	}
	return n, nil
}

// Delta returns the shift that corrects timestamps recorded as fromUTC into
// toUTC, e.g. from -8 to +8 is +16 hours.
func Delta(fromUTC, toUTC int) exiftool.Shift {
	return exiftool.Shift{Hours: toUTC - fromUTC}
}

// Options configures a timezone fix batch.
type Options struct {
	Target    runner.Target
	InputDir  string // resolved input root on the target
	OutputDir string // output root on the target
	Shift     exiftool.Shift
	DryRun    bool
}

// DatePreview shows a file's DateTimeOriginal before and after the shift.
type DatePreview struct {
	Original time.Time
	Shifted  time.Time
}

// Result is the outcome for a single file.
type Result struct {
	Source  scan.File
	Dest    string
	Command string       // the exiftool command line (dry-run only)
	Preview *DatePreview // best-effort, dry-run on local files only
	Err     error
}

// DestPath maps a scanned file into the output tree, preserving its relative
// directory structure. Remote paths always use forward slashes.
func DestPath(opts Options, f scan.File) string {
	if opts.Target.IsRemote {
		return path.Join(opts.OutputDir, f.Rel)
	}
	return filepath.Join(opts.OutputDir, filepath.FromSlash(f.Rel))
}

// ProcessFile copies one file into the output tree and shifts its datetime
// tags. In dry-run mode nothing is written; the would-be exiftool command is
// reported instead, with a local preview of the shifted DateTimeOriginal
// where the source format allows it.
func ProcessFile(opts Options, f scan.File) Result {
	res := Result{Source: f, Dest: DestPath(opts, f)}

	if opts.DryRun {
		res.Command = exiftool.ShiftCommand(opts.Shift, res.Dest)
		if !opts.Target.IsRemote {
			// ARW is TIFF-based, so goexif can usually read it directly.
			if preview, err := PreviewDates(f.Path, opts.Shift); err == nil {
				res.Preview = preview
			}
		}
		return res
	}

	if err := copyFile(opts.Target, f.Path, res.Dest); err != nil {
		res.Err = err
		return res
	}

	if err := exiftool.ShiftDates(opts.Target, opts.Shift, res.Dest); err != nil {
		res.Err = err
		return res
	}

	return res
}

// PreviewDates reads DateTimeOriginal from the file and applies the shift.
func PreviewDates(localPath string, shift exiftool.Shift) (*DatePreview, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse EXIF in %s: %w", localPath, err)
	}
	dt, err := x.DateTime()
	if err != nil {
		return nil, fmt.Errorf("no DateTimeOriginal in %s: %w", localPath, err)
	}

	return &DatePreview{Original: dt, Shifted: ShiftTime(dt, shift)}, nil
}

// ShiftTime applies the shift to a timestamp.
func ShiftTime(t time.Time, shift exiftool.Shift) time.Time {
	d := time.Duration(shift.Hours) * time.Hour
	sign := time.Duration(1)
	if shift.Hours < 0 {
		sign = -1
	}
	m := shift.Minutes
	if m < 0 {
		m = -m
	}
	s := shift.Seconds
	if s < 0 {
		s = -s
	}
	d += sign * time.Duration(m) * time.Minute
	d += sign * time.Duration(s) * time.Second
	return t.Add(d)
}

// copyFile copies src to dst on the target, creating parent directories and
// preserving the modification time (exiftool rewrites it afterwards anyway,
// but a failed shift should still leave a faithful copy).
func copyFile(target runner.Target, src, dst string) error {
	if target.IsRemote {
		cmd := fmt.Sprintf("mkdir -p %s && cp -p %s %s",
			util.QuoteArgForShell(path.Dir(dst)),
			util.QuoteArgForShell(src),
			util.QuoteArgForShell(dst))
		out, err := runner.Output(target, "sh", []string{"-c", cmd})
		if err != nil {
			return fmt.Errorf("remote copy failed for %s: %w\nOutput: %s", src, err, strings.TrimSpace(string(out)))
		}
		return nil
	}
	return CopyLocal(src, dst)
}

// CopyLocal copies a file on the local filesystem, preserving mtime.
func CopyLocal(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", filepath.Dir(dst), err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", dst, err)
	}

	if err := os.Chtimes(dst, time.Now(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to preserve mtime on %s: %w", dst, err)
	}
	return nil
}
