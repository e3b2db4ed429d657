// Package parallel provides a small goroutine pool for splitting raster
// work into independent row bands.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of goroutines pulling work from a shared queue.
//
// Work items must be independent: the pool gives no ordering guarantees
// between items of one ExecuteAll call.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// queue is shared by all workers.
	queue chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &WorkerPool{
		workers: workers,
		queue:   make(chan func(), max(workers*4, 8)),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}

	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			p.drain()
			return
		case work := <-p.queue:
			work()
		}
	}
}

// drain executes all work remaining in the queue.
func (p *WorkerPool) drain() {
	for {
		select {
		case work := <-p.queue:
			work()
		default:
			return
		}
	}
}

// ExecuteAll runs every item and waits for all of them to complete.
// If the pool is closed, the items run on the calling goroutine instead.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if !p.running.Load() {
		for _, fn := range work {
			fn()
		}
		return
	}

	var completion sync.WaitGroup
	completion.Add(len(work))

	for _, fn := range work {
		wrapped := func() {
			defer completion.Done()
			fn()
		}

		select {
		case p.queue <- wrapped:
		case <-p.done:
			wrapped()
		}
	}

	// Items queued while Close raced with us may have missed the workers'
	// final drain.
	select {
	case <-p.done:
		p.drain()
	default:
	}

	completion.Wait()
}

// Close gracefully shuts down the pool.
// It stops accepting new work, waits for all queued work to complete,
// and then stops all workers.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// Band is a half-open range of rows [Start, End).
type Band struct {
	Start, End int
}

// Bands splits n rows into at most parts contiguous bands whose sizes differ
// by at most one. It returns nil when n <= 0.
func Bands(n, parts int) []Band {
	if n <= 0 {
		return nil
	}
	parts = min(max(parts, 1), n)

	bands := make([]Band, parts)
	size, extra := n/parts, n%parts
	start := 0
	for i := range bands {
		end := start + size
		if i < extra {
			end++
		}
		bands[i] = Band{Start: start, End: end}
		start = end
	}
	return bands
}
