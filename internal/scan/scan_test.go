// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtSet(t *testing.T) {
	s := NewExtSet("jpg", ".ARW", " .heic ")

	assert.True(t, s.Has("photo.jpg"))
	assert.True(t, s.Has("photo.JPG"))
	assert.True(t, s.Has("/some/dir/DSC00001.arw"))
	assert.True(t, s.Has("img.HEIC"))
	assert.False(t, s.Has("notes.txt"))
	assert.False(t, s.Has("noext"))

	assert.Equal(t, []string{".arw", ".heic", ".jpg"}, s.Sorted())
}

func TestExtSetAddEmpty(t *testing.T) {
	s := NewExtSet()
	s.Add("")
	s.Add("  ")
	assert.Empty(t, s)
}

func TestFindLocalFiles(t *testing.T) {
	root := t.TempDir()

	mustWrite := func(rel string, size int) {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, make([]byte, size), 0644))
	}

	mustWrite("DSC00001.ARW", 100)
	mustWrite("day2/DSC00002.arw", 200)
	mustWrite("day2/notes.txt", 10)
	mustWrite("day2/sub/IMG_1.heic", 50)

	files, err := FindLocalFiles(root, FixtzExtensions())
	require.NoError(t, err)
	require.Len(t, files, 3)

	byRel := make(map[string]File)
	for _, f := range files {
		byRel[f.Rel] = f
	}

	require.Contains(t, byRel, "DSC00001.ARW")
	assert.Equal(t, int64(100), byRel["DSC00001.ARW"].Size)
	assert.Contains(t, byRel, "day2/DSC00002.arw")
	assert.Contains(t, byRel, "day2/sub/IMG_1.heic")
}

func TestFindLocalFilesEmpty(t *testing.T) {
	files, err := FindLocalFiles(t.TempDir(), ShrinkExtensions())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestParseFindOutput(t *testing.T) {
	output := []byte("/vol/photos/DSC00001.ARW\n" +
		"/vol/photos/day2/DSC00002.arw\n" +
		"/vol/photos/day2/notes.txt\n" +
		"\n" +
		"/vol/photos/day2/sub/IMG_1.heic\n")

	files, err := parseFindOutput(output, "/vol/photos", "nas", FixtzExtensions())
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, File{Path: "/vol/photos/DSC00001.ARW", Rel: "DSC00001.ARW"}, files[0])
	assert.Equal(t, File{Path: "/vol/photos/day2/DSC00002.arw", Rel: "day2/DSC00002.arw"}, files[1])
	assert.Equal(t, File{Path: "/vol/photos/day2/sub/IMG_1.heic", Rel: "day2/sub/IMG_1.heic"}, files[2])
}

func TestParseFindOutputEmpty(t *testing.T) {
	files, err := parseFindOutput(nil, "/vol/photos", "nas", FixtzExtensions())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestShrinkExtensionsCoverCameraFormats(t *testing.T) {
	s := ShrinkExtensions()
	for _, name := range []string{"a.jpg", "b.jpeg", "c.png", "d.webp", "e.tif", "f.tiff", "g.heic", "h.heif", "i.hif", "j.arw"} {
		assert.True(t, s.Has(name), name)
	}
}
