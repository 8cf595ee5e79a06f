// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package shrink

import (
	"context"
	"sync"

	"photobatch/internal/logger"
	"photobatch/internal/scan"

	"golang.org/x/sync/semaphore"
)

// Run processes the files concurrently and streams results over the returned
// channel. The channel is closed once every file has been handled. workers
// caps concurrency; image decode and encode are CPU and memory heavy, so the
// cap also bounds peak memory.
func Run(ctx context.Context, files []scan.File, opts Options, workers int) <-chan Result {
	if workers < 1 {
		workers = 1
	}

	results := make(chan Result, workers)
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	wg.Add(len(files))

	go func() {
		wg.Wait()
		close(results)
	}()

	for _, file := range files {
		go func(f scan.File) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				logger.Error("Failed to acquire worker slot", "file", f.Path, "error", err)
				results <- Result{Input: f.Path, Err: err}
				return
			}
			defer sem.Release(1)

			res := Process(f, opts)
			if res.Err != nil {
				logger.Error("Shrink failed", "file", f.Path, "error", res.Err)
			} else {
				logger.Debug("Shrink finished",
					"file", f.Path,
					"bytes_before", res.BytesBefore,
					"bytes_after", res.BytesAfter,
					"skipped", res.Skipped)
			}
			results <- res
		}(file)
	}

	return results
}
