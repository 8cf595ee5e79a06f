// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

// Package shrink implements the batch shrink pipeline: decode, downscale to
// a maximum long edge, and re-encode as smaller JPEGs or PNGs. RAW and HEIF
// inputs are decoded through their embedded JPEG previews; everything else
// decodes in-process.
package shrink

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"photobatch/internal/exiftool"
	"photobatch/internal/scan"

	"github.com/disintegration/imaging"

	// WebP has no encoder here but the decoder lets webp inputs shrink too.
	_ "golang.org/x/image/webp"
)

// Format is a supported output image format.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported output format '%s' (supported: jpeg, png)", s)
	}
}

// Extension returns the file extension for the format, with leading dot.
func (f Format) Extension() string {
	if f == FormatPNG {
		return ".png"
	}
	return ".jpg"
}

// MetadataMode selects what metadata the output carries.
type MetadataMode int

const (
	// MetaAll copies EXIF and ICC profile from the source.
	MetaAll MetadataMode = iota
	// MetaOrientationOnly drops EXIF but keeps the ICC profile. Orientation
	// itself survives because pixels are auto-oriented during decode.
	MetaOrientationOnly
	// MetaStrip carries nothing over.
	MetaStrip
)

// Options configures a shrink batch.
type Options struct {
	OutputDir string
	Format    Format
	Quality   int // JPEG quality 1-95
	MaxEdge   int // maximum long edge in pixels
	Metadata  MetadataMode
	Overwrite bool
}

// Result is the outcome for a single input file.
type Result struct {
	Input       string
	Output      string
	BytesBefore int64
	BytesAfter  int64
	Skipped     bool
	Err         error
}

// previewExtensions are the inputs decoded via their embedded JPEG preview.
var previewExtensions = scan.NewExtSet(".arw", ".heic", ".heif", ".hif")

// PreviewExtensions returns the inputs decoded via an embedded JPEG preview,
// which requires exiftool.
func PreviewExtensions() scan.ExtSet {
	return previewExtensions
}

// OutputPath returns where the shrunk version of the input lands. Output
// names are flattened into the output directory, keeping only the base name.
func OutputPath(input string, opts Options) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(opts.OutputDir, stem+opts.Format.Extension())
}

// Process shrinks a single file according to opts.
func Process(file scan.File, opts Options) Result {
	res := Result{Input: file.Path, Output: OutputPath(file.Path, opts)}

	if !opts.Overwrite {
		if _, err := os.Stat(res.Output); err == nil {
			res.Skipped = true
			return res
		}
	}

	img, err := decode(file.Path)
	if err != nil {
		res.Err = fmt.Errorf("decode failed for %s: %w", file.Path, err)
		return res
	}

	img = downscale(img, opts.MaxEdge)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		res.Err = fmt.Errorf("failed to create output directory %s: %w", opts.OutputDir, err)
		return res
	}

	if err := encode(img, res.Output, opts); err != nil {
		res.Err = err
		return res
	}

	switch opts.Metadata {
	case MetaAll:
		if err := exiftool.CopyTags(exiftool.CopyAll, file.Path, res.Output); err != nil {
			res.Err = err
			return res
		}
	case MetaOrientationOnly:
		if err := exiftool.CopyTags(exiftool.CopyICCOnly, file.Path, res.Output); err != nil {
			res.Err = err
			return res
		}
	}

	if info, err := os.Stat(file.Path); err == nil {
		res.BytesBefore = info.Size()
	}
	if info, err := os.Stat(res.Output); err == nil {
		res.BytesAfter = info.Size()
	}

	return res
}

// decode loads the image with EXIF orientation applied to the pixels.
func decode(path string) (image.Image, error) {
	if previewExtensions.Has(path) {
		data, err := exiftool.ExtractPreview(path)
		if err != nil {
			return nil, err
		}
		return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	return imaging.Open(path, imaging.AutoOrientation(true))
}

// downscale fits the image within maxEdge on its long side. Images already
// within bounds pass through untouched; nothing is ever upscaled.
func downscale(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	if maxEdge <= 0 || (b.Dx() <= maxEdge && b.Dy() <= maxEdge) {
		return img
	}
	// Lanczos for quality
	return imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
}

func encode(img image.Image, outPath string, opts Options) error {
	var encodeOpts []imaging.EncodeOption
	if opts.Format == FormatJPEG {
		encodeOpts = append(encodeOpts, imaging.JPEGQuality(opts.Quality))
	}
	if err := imaging.Save(img, outPath, encodeOpts...); err != nil {
		return fmt.Errorf("encode failed for %s: %w", outPath, err)
	}
	return nil
}

// Summary accumulates batch results.
type Summary struct {
	Processed   int
	Skipped     int
	Failed      int
	BytesBefore int64
	BytesAfter  int64
}

// Add folds a result into the summary.
func (s *Summary) Add(r Result) {
	switch {
	case r.Err != nil:
		s.Failed++
	case r.Skipped:
		s.Skipped++
	default:
		s.Processed++
		s.BytesBefore += r.BytesBefore
		s.BytesAfter += r.BytesAfter
	}
}

// ReductionPercent returns how much smaller the outputs are, in percent.
func (s Summary) ReductionPercent() float64 {
	if s.BytesBefore == 0 {
		return 0
	}
	return 100 - float64(s.BytesAfter)/float64(s.BytesBefore)*100
}
