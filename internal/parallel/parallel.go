// Package parallel provides a minimal fork-join helper for splitting
// index ranges across CPU workers.
package parallel

import (
	"runtime"
	"sync"
)

// For runs fn over [0, n) split into contiguous chunks, one goroutine
// per chunk. Ranges smaller than minChunk run inline: goroutine setup
// costs more than the work for tiny batches.
func For(n, minChunk int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if minChunk < 1 {
		minChunk = 1
	}
	if n < minChunk*2 || workers == 1 {
		fn(0, n)
		return
	}
	if workers > n/minChunk {
		workers = n / minChunk
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
