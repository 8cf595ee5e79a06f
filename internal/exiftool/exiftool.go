// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

// Package exiftool wraps the invocations of the external exiftool binary:
// version probing, datetime shifting, tag copying, and embedded preview
// extraction. Commands run through the runner so they work both locally
// and on a remote host.
package exiftool

import (
	"fmt"
	"strings"

	"photobatch/internal/runner"
	"photobatch/internal/util"
)

const binary = "exiftool"

// Shift describes a signed datetime shift. The sign of Hours determines the
// direction; Minutes and Seconds are taken as absolute values.
type Shift struct {
	Hours   int
	Minutes int
	Seconds int
}

// suffix renders the exiftool time-shift operator, e.g. "+=16:0:0" or "-=2:30:0".
func (s Shift) suffix() string {
	sign := "+"
	if s.Hours < 0 {
		sign = "-"
	}
	h := s.Hours
	if h < 0 {
		h = -h
	}
	m := s.Minutes
	if m < 0 {
		m = -m
	}
	sec := s.Seconds
	if sec < 0 {
		sec = -sec
	}
	return fmt.Sprintf("%s=%d:%d:%d", sign, h, m, sec)
}

// String renders the shift for display, e.g. "+16h".
func (s Shift) String() string {
	return fmt.Sprintf("%+dh", s.Hours)
}

// Version returns the exiftool version on the target, or an error if the
// binary is not runnable there.
func Version(target runner.Target) (string, error) {
	out, err := runner.Output(target, binary, []string{"-ver"})
	if err != nil {
		return "", fmt.Errorf("exiftool not available on %s (install it and make sure `exiftool -ver` works): %w", target.ServerName, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ShiftArgs builds the argument list that shifts all relevant datetime tags
// of a file in place.
//
// AllDates covers DateTimeOriginal/CreateDate/ModifyDate where present; the
// XMP and filesystem tags are shifted explicitly. -overwrite_original avoids
// _original backups in the output folder, -m ignores minor warnings, and
// QuickTimeUTC helps with QuickTime/HEIF time handling (best-effort).
func ShiftArgs(shift Shift, path string) []string {
	op := shift.suffix()
	return []string{
		"-m",
		"-overwrite_original",
		"-api",
		"QuickTimeUTC=1",
		"-AllDates" + op,
		"-XMP:CreateDate" + op,
		"-XMP:ModifyDate" + op,
		"-FileModifyDate" + op,
		"-FileCreateDate" + op,
		path,
	}
}

// ShiftDates shifts the datetime tags of the file on the target.
func ShiftDates(target runner.Target, shift Shift, path string) error {
	out, err := runner.Output(target, binary, ShiftArgs(shift, path))
	if err != nil {
		return fmt.Errorf("datetime shift failed for %s: %w\nOutput: %s", path, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// ShiftCommand renders the full shift command line for dry-run display.
func ShiftCommand(shift Shift, path string) string {
	return util.QuoteCommand(binary, ShiftArgs(shift, path))
}

// TagCopyMode selects which metadata is carried from a source file onto an
// encoded output.
type TagCopyMode int

const (
	// CopyAll copies EXIF and the ICC profile. Orientation is forced to 1
	// because the pixels were already rotated during decode.
	CopyAll TagCopyMode = iota
	// CopyICCOnly copies just the ICC profile (color accuracy without EXIF).
	CopyICCOnly
)

// CopyTagsArgs builds the argument list that copies metadata from src onto dst.
func CopyTagsArgs(mode TagCopyMode, src, dst string) []string {
	args := []string{"-m", "-overwrite_original", "-TagsFromFile", src}
	switch mode {
	case CopyICCOnly:
		args = append(args, "-icc_profile")
	default:
		args = append(args, "-all:all", "-icc_profile", "-Orientation#=1")
	}
	return append(args, dst)
}

// CopyTags copies metadata from src onto dst on the local machine.
func CopyTags(mode TagCopyMode, src, dst string) error {
	out, err := runner.Output(runner.LocalTarget(), binary, CopyTagsArgs(mode, src, dst))
	if err != nil {
		return fmt.Errorf("metadata copy failed for %s: %w\nOutput: %s", dst, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// previewTags are tried in order when extracting an embedded JPEG preview.
// Sony ARW files carry a full-size JpgFromRaw; HEIF containers usually only
// have PreviewImage.
var previewTags = []string{"-JpgFromRaw", "-PreviewImage"}

// ExtractPreview pulls the embedded JPEG preview out of a RAW or HEIF file.
func ExtractPreview(path string) ([]byte, error) {
	for _, tag := range previewTags {
		data, err := runner.StdoutOutput(runner.LocalTarget(), binary, []string{"-b", tag, path})
		if err == nil && len(data) > 0 {
			return data, nil
		}
	}
	return nil, fmt.Errorf("no embedded JPEG preview found in %s", path)
}
