// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package shrink

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"photobatch/internal/scan"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "jpeg", want: FormatJPEG},
		{in: "jpg", want: FormatJPEG},
		{in: "JPG", want: FormatJPEG},
		{in: "png", want: FormatPNG},
		{in: " png ", want: FormatPNG},
		{in: "webp", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputPath(t *testing.T) {
	opts := Options{OutputDir: "/out", Format: FormatJPEG}

	// Names flatten into the output dir regardless of input subdirectories.
	assert.Equal(t, filepath.Join("/out", "DSC00001.jpg"), OutputPath("/in/day2/DSC00001.ARW", opts))

	opts.Format = FormatPNG
	assert.Equal(t, filepath.Join("/out", "photo.png"), OutputPath("/in/photo.jpeg", opts))
}

func TestPreviewExtensions(t *testing.T) {
	s := PreviewExtensions()
	for _, name := range []string{"a.arw", "b.ARW", "c.heic", "d.heif", "e.hif"} {
		assert.True(t, s.Has(name), name)
	}
	assert.False(t, s.Has("plain.jpg"))
}

func TestDownscale(t *testing.T) {
	t.Run("long edge capped, aspect kept", func(t *testing.T) {
		img := imaging.New(4000, 2000, color.NRGBA{})
		out := downscale(img, 1000)
		assert.Equal(t, 1000, out.Bounds().Dx())
		assert.Equal(t, 500, out.Bounds().Dy())
	})

	t.Run("portrait orientation", func(t *testing.T) {
		img := imaging.New(500, 2000, color.NRGBA{})
		out := downscale(img, 1000)
		assert.Equal(t, 250, out.Bounds().Dx())
		assert.Equal(t, 1000, out.Bounds().Dy())
	})

	t.Run("never upscales", func(t *testing.T) {
		img := imaging.New(800, 600, color.NRGBA{})
		out := downscale(img, 1000)
		assert.Equal(t, image.Rect(0, 0, 800, 600), out.Bounds())
	})
}

func writeTestJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 120, G: 60, B: 30, A: 255})
	require.NoError(t, imaging.Save(img, path))
}

func TestProcessStrip(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()

	inPath := filepath.Join(inDir, "big.jpg")
	writeTestJPEG(t, inPath, 200, 100)

	opts := Options{
		OutputDir: outDir,
		Format:    FormatJPEG,
		Quality:   80,
		MaxEdge:   100,
		Metadata:  MetaStrip,
	}

	res := Process(scan.File{Path: inPath, Rel: "big.jpg"}, opts)
	require.NoError(t, res.Err)
	assert.False(t, res.Skipped)
	assert.Positive(t, res.BytesBefore)
	assert.Positive(t, res.BytesAfter)

	out, err := imaging.Open(res.Output)
	require.NoError(t, err)
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())
}

func TestProcessSkipsExistingWithoutOverwrite(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()

	inPath := filepath.Join(inDir, "photo.jpg")
	writeTestJPEG(t, inPath, 50, 50)

	opts := Options{OutputDir: outDir, Format: FormatJPEG, Quality: 80, MaxEdge: 100, Metadata: MetaStrip}

	existing := OutputPath(inPath, opts)
	require.NoError(t, os.WriteFile(existing, []byte("keep me"), 0644))

	res := Process(scan.File{Path: inPath}, opts)
	require.NoError(t, res.Err)
	assert.True(t, res.Skipped)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestProcessOverwrite(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()

	inPath := filepath.Join(inDir, "photo.jpg")
	writeTestJPEG(t, inPath, 50, 50)

	opts := Options{OutputDir: outDir, Format: FormatJPEG, Quality: 80, MaxEdge: 100, Metadata: MetaStrip, Overwrite: true}

	existing := OutputPath(inPath, opts)
	require.NoError(t, os.WriteFile(existing, []byte("stale"), 0644))

	res := Process(scan.File{Path: inPath}, opts)
	require.NoError(t, res.Err)
	assert.False(t, res.Skipped)

	_, err := imaging.Open(existing)
	assert.NoError(t, err, "existing output should have been replaced with a real image")
}

func TestProcessDecodeError(t *testing.T) {
	inDir := t.TempDir()
	inPath := filepath.Join(inDir, "broken.jpg")
	require.NoError(t, os.WriteFile(inPath, []byte("not an image"), 0644))

	res := Process(scan.File{Path: inPath}, Options{OutputDir: t.TempDir(), Format: FormatJPEG, Quality: 80, MaxEdge: 100, Metadata: MetaStrip})
	assert.Error(t, res.Err)
}

func TestRunPool(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()

	var files []scan.File
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		p := filepath.Join(inDir, name)
		writeTestJPEG(t, p, 80, 40)
		files = append(files, scan.File{Path: p, Rel: name})
	}

	opts := Options{OutputDir: outDir, Format: FormatJPEG, Quality: 80, MaxEdge: 40, Metadata: MetaStrip}

	var summary Summary
	for res := range Run(context.Background(), files, opts, 2) {
		summary.Add(res)
	}

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 0, summary.Failed)
	assert.Positive(t, summary.BytesBefore)
}

func TestSummary(t *testing.T) {
	var s Summary
	s.Add(Result{BytesBefore: 1000, BytesAfter: 250})
	s.Add(Result{Skipped: true})
	s.Add(Result{Err: assert.AnError})

	assert.Equal(t, 1, s.Processed)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Failed)
	assert.InDelta(t, 75.0, s.ReductionPercent(), 0.001)
}

func TestSummaryReductionEmptyBatch(t *testing.T) {
	var s Summary
	assert.Zero(t, s.ReductionPercent())
}
