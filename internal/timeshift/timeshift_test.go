// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package timeshift

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"photobatch/internal/exiftool"
	"photobatch/internal/runner"
	"photobatch/internal/scan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUTCOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "+8", want: 8},
		{in: "-8", want: -8},
		{in: "8", want: 8},
		{in: "0", want: 0},
		{in: "UTC+8", want: 8},
		{in: "UTC-5", want: -5},
		{in: " +12 ", want: 12},
		{in: "+15", wantErr: true},
		{in: "-15", wantErr: true},
		{in: "", wantErr: true},
		{in: "UTC", wantErr: true},
		{in: "east", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUTCOffset(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDelta(t *testing.T) {
	// Recorded as UTC-8, should have been UTC+8: shift forward 16 hours.
	assert.Equal(t, exiftool.Shift{Hours: 16}, Delta(-8, 8))
	assert.Equal(t, exiftool.Shift{Hours: -16}, Delta(8, -8))
	assert.Equal(t, exiftool.Shift{Hours: 0}, Delta(2, 2))
}

func TestDestPath(t *testing.T) {
	local := Options{Target: runner.LocalTarget(), OutputDir: filepath.FromSlash("/out")}
	got := DestPath(local, scan.File{Rel: "day2/DSC00002.arw"})
	assert.Equal(t, filepath.FromSlash("/out/day2/DSC00002.arw"), got)

	remote := Options{Target: runner.Target{IsRemote: true, ServerName: "nas"}, OutputDir: "/vol/out"}
	got = DestPath(remote, scan.File{Rel: "day2/DSC00002.arw"})
	assert.Equal(t, "/vol/out/day2/DSC00002.arw", got)
}

func TestShiftTime(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, base.Add(16*time.Hour), ShiftTime(base, exiftool.Shift{Hours: 16}))
	assert.Equal(t, base.Add(-2*time.Hour-30*time.Minute), ShiftTime(base, exiftool.Shift{Hours: -2, Minutes: 30}))
}

func TestCopyLocal(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	src := filepath.Join(srcDir, "DSC00001.ARW")
	require.NoError(t, os.WriteFile(src, []byte("raw bytes"), 0644))

	mtime := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, time.Now(), mtime))

	dst := filepath.Join(dstDir, "nested", "DSC00001.ARW")
	require.NoError(t, CopyLocal(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "raw bytes", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime), "mtime should be preserved")
}

func TestCopyLocalMissingSource(t *testing.T) {
	err := CopyLocal(filepath.Join(t.TempDir(), "nope.arw"), filepath.Join(t.TempDir(), "out.arw"))
	assert.Error(t, err)
}

func TestProcessFileDryRun(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "does-not-exist-yet")

	src := filepath.Join(srcDir, "DSC00001.ARW")
	require.NoError(t, os.WriteFile(src, []byte("raw bytes"), 0644))

	opts := Options{
		Target:    runner.LocalTarget(),
		InputDir:  srcDir,
		OutputDir: outDir,
		Shift:     exiftool.Shift{Hours: 16},
		DryRun:    true,
	}

	res := ProcessFile(opts, scan.File{Path: src, Rel: "DSC00001.ARW"})
	require.NoError(t, res.Err)
	assert.Contains(t, res.Command, "-AllDates+=16:0:0")
	assert.Contains(t, res.Command, "exiftool")

	// Dry-run must not create anything.
	_, err := os.Stat(outDir)
	assert.True(t, os.IsNotExist(err))
}
