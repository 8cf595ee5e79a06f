// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package cli

import (
	"testing"

	"photobatch/internal/scan"
	"photobatch/internal/shrink"
	"photobatch/internal/ui"

	"github.com/stretchr/testify/assert"
)

func TestNeedsExiftool(t *testing.T) {
	plain := []scan.File{{Path: "a.jpg"}, {Path: "b.png"}}
	withRaw := []scan.File{{Path: "a.jpg"}, {Path: "b.ARW"}}

	tests := []struct {
		name     string
		files    []scan.File
		metadata shrink.MetadataMode
		want     bool
	}{
		{name: "metadata copy always needs it", files: plain, metadata: shrink.MetaAll, want: true},
		{name: "icc copy needs it", files: plain, metadata: shrink.MetaOrientationOnly, want: true},
		{name: "strip over plain images does not", files: plain, metadata: shrink.MetaStrip, want: false},
		{name: "raw inputs need it even when stripping", files: withRaw, metadata: shrink.MetaStrip, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, needsExiftool(tt.files, tt.metadata))
		})
	}
}

func TestCollectShrinkResults(t *testing.T) {
	makeResults := func() <-chan shrink.Result {
		results := make(chan shrink.Result, 3)
		results <- shrink.Result{Input: "a.jpg", BytesBefore: 100, BytesAfter: 50}
		results <- shrink.Result{Input: "b.jpg", Skipped: true}
		results <- shrink.Result{Input: "c.jpg", Err: assert.AnError}
		close(results)
		return results
	}

	t.Run("view consumes the whole batch", func(t *testing.T) {
		seen := 0
		summary, failures := collectShrinkResults(makeResults(), func(items <-chan ui.ItemResult) error {
			for range items {
				seen++
			}
			return nil
		})

		assert.Equal(t, 3, seen)
		assert.Equal(t, 1, summary.Processed)
		assert.Equal(t, 1, summary.Skipped)
		assert.Equal(t, 1, summary.Failed)
		assert.Len(t, failures, 1)
	})

	t.Run("view quits early", func(t *testing.T) {
		// A ctrl+c mid-batch abandons the view; the summary must still
		// cover every result and the feeder must not be left blocked.
		summary, failures := collectShrinkResults(makeResults(), func(items <-chan ui.ItemResult) error {
			<-items
			return nil
		})

		assert.Equal(t, 1, summary.Processed)
		assert.Equal(t, 1, summary.Skipped)
		assert.Equal(t, 1, summary.Failed)
		assert.Len(t, failures, 1)
	})
}

func TestShrinkItemResult(t *testing.T) {
	t.Run("success carries size change", func(t *testing.T) {
		item := shrinkItemResult(shrink.Result{Input: "/in/sub/a.jpg", BytesBefore: 2000000, BytesAfter: 500000})
		assert.Equal(t, "a.jpg", item.Name)
		assert.Equal(t, ui.ItemOK, item.Status)
		assert.NotEmpty(t, item.Detail)
	})

	t.Run("skip", func(t *testing.T) {
		item := shrinkItemResult(shrink.Result{Input: "/in/a.jpg", Skipped: true})
		assert.Equal(t, ui.ItemSkipped, item.Status)
	})

	t.Run("failure carries the error", func(t *testing.T) {
		item := shrinkItemResult(shrink.Result{Input: "/in/a.jpg", Err: assert.AnError})
		assert.Equal(t, ui.ItemFailed, item.Status)
		assert.Equal(t, assert.AnError.Error(), item.Detail)
	})
}
