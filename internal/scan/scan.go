// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

// Package scan provides functionality for finding photo files to process,
// both on the local filesystem and on remote hosts reached over SSH. It
// handles recursive directory walks and extension filtering.
package scan

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"photobatch/internal/logger"
	"photobatch/internal/runner"
	"photobatch/internal/util"
)

// ExtSet is a case-insensitive set of file extensions (with leading dot).
type ExtSet map[string]struct{}

// NewExtSet builds an extension set, normalizing each entry.
func NewExtSet(exts ...string) ExtSet {
	s := make(ExtSet, len(exts))
	for _, e := range exts {
		s.Add(e)
	}
	return s
}

// Add normalizes the extension (leading dot, lower case) and inserts it.
func (s ExtSet) Add(ext string) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	s[ext] = struct{}{}
}

// Has reports whether the path's extension is in the set.
func (s ExtSet) Has(path string) bool {
	_, ok := s[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Sorted returns the extensions in lexical order, for display.
func (s ExtSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// ShrinkExtensions returns the input formats the shrink pipeline accepts.
func ShrinkExtensions() ExtSet {
	return NewExtSet(".jpg", ".jpeg", ".png", ".webp", ".tif", ".tiff", ".heic", ".heif", ".hif", ".arw")
}

// FixtzExtensions returns the default extensions for the timezone fix,
// the formats a Sony body writes.
func FixtzExtensions() ExtSet {
	return NewExtSet(".arw", ".hif", ".heif", ".heic")
}

// File is a discovered input file.
type File struct {
	Path string // full path on the target
	Rel  string // path relative to the scanned root, forward slashes
	Size int64  // size in bytes; 0 when the target does not report it
}

// FindLocalFiles walks rootDir recursively and returns the files whose
// extension is in exts.
func FindLocalFiles(rootDir string, exts ExtSet) ([]File, error) {
	var files []File

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Keep walking past unreadable entries, but surface them.
			logger.Warn("Skipping unreadable entry during scan", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !exts.Has(path) {
			return nil
		}

		rel, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			return fmt.Errorf("could not compute relative path for %s: %w", path, relErr)
		}

		var size int64
		if info, infoErr := d.Info(); infoErr == nil {
			size = info.Size()
		}

		files = append(files, File{
			Path: path,
			Rel:  filepath.ToSlash(rel),
			Size: size,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", rootDir, err)
	}

	return files, nil
}

// ResolveRemoteDir resolves a directory path on the remote target to an
// absolute path, verifying it exists along the way.
func ResolveRemoteDir(target runner.Target, dir string) (string, error) {
	resolveCmd := fmt.Sprintf("cd %s && pwd", util.QuoteArgForShell(dir))
	out, err := runner.Output(target, "sh", []string{"-c", resolveCmd})
	if err != nil {
		return "", fmt.Errorf("failed to resolve remote path '%s' on host %s: %w\nOutput: %s", dir, target.ServerName, err, string(out))
	}
	abs := strings.TrimSpace(string(out))
	if abs == "" {
		return "", fmt.Errorf("resolved remote path is empty for '%s' on host %s", dir, target.ServerName)
	}
	return abs, nil
}

// FindRemoteFiles lists files under rootDir on the remote target via find,
// filtered by extension on this side.
func FindRemoteFiles(target runner.Target, rootDir string, exts ExtSet) ([]File, error) {
	absRoot, err := ResolveRemoteDir(target, rootDir)
	if err != nil {
		return nil, err
	}

	findCmd := fmt.Sprintf("find %s -type f", util.QuoteArgForShell(absRoot))
	output, err := runner.Output(target, "sh", []string{"-c", findCmd})
	if err != nil {
		return nil, fmt.Errorf("remote find failed for host %s: %w\nOutput: %s", target.ServerName, err, string(output))
	}

	return parseFindOutput(output, absRoot, target.ServerName, exts)
}

// parseFindOutput turns line-per-path `find -type f` output into Files,
// filtered by extension, with paths relativized against absRoot.
func parseFindOutput(output []byte, absRoot, serverName string, exts ExtSet) ([]File, error) {
	var files []File
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fullPath := scanner.Text()
		if fullPath == "" || !exts.Has(fullPath) {
			continue
		}

		rel, relErr := filepath.Rel(absRoot, fullPath)
		if relErr != nil {
			logger.Warnf("Could not compute relative path for '%s' from root '%s' on host %s: %v", fullPath, absRoot, serverName, relErr)
			continue
		}

		files = append(files, File{
			Path: fullPath,
			Rel:  filepath.ToSlash(rel),
		})
	}
	if err := scanner.Err(); err != nil {
		return files, fmt.Errorf("error reading find output for host %s: %w", serverName, err)
	}

	return files, nil
}
