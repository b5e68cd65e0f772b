// Package pool provides the fixed-size task pool shared by every parallel
// phase of csrgo (builder count and scatter, par_scan, update_traversal,
// image scans) plus small reusable buffers for traversals.
package pool

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("pool: closed")

// Pool manages a fixed set of goroutines executing submitted closures.
type Pool struct {
	numWorkers int
	workCh     chan func()
	stopCh     chan struct{}
	wg         sync.WaitGroup
	closed     atomic.Bool
	submitMu   sync.RWMutex
}

// New creates a pool with numWorkers goroutines.
// numWorkers <= 0 means runtime.GOMAXPROCS(0).
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workCh:     make(chan func(), numWorkers*2),
		stopCh:     make(chan struct{}),
	}

	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}

	return p
}

var defaultPool = sync.OnceValue(func() *Pool { return New(0) })

// Default returns the process-wide pool sized to GOMAXPROCS.
// It is never closed.
func Default() *Pool {
	return defaultPool()
}

var (
	sizedMu sync.Mutex
	sized   = map[int]*Pool{}
)

// Sized returns a process-wide pool with exactly n workers, creating it on
// first use. Like Default, these pools are never closed.
func Sized(n int) *Pool {
	if n <= 0 {
		return Default()
	}
	sizedMu.Lock()
	defer sizedMu.Unlock()
	p, ok := sized[n]
	if !ok {
		p = New(n)
		sized[n] = p
	}
	return p
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.numWorkers
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			// Drain what was queued before Close.
			for {
				select {
				case task, ok := <-p.workCh:
					if !ok {
						return
					}
					task()
				default:
					return
				}
			}
		case task, ok := <-p.workCh:
			if !ok {
				return
			}
			task()
		}
	}
}

// Submit enqueues task and returns once it is queued.
// It blocks while the queue is full.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed.Load() {
		return ErrClosed
	}

	select {
	case p.workCh <- task:
		return nil
	case <-p.stopCh:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes fn(0..n-1) on the pool and blocks until every call returns.
// Tasks that cannot be submitted (closed pool) run on the calling goroutine.
// fn must not call Run on the same pool.
func (p *Pool) Run(n int, fn func(i int)) {
	switch {
	case n <= 0:
		return
	case n == 1:
		fn(0)
		return
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		task := func() {
			defer wg.Done()
			fn(i)
		}
		if err := p.Submit(context.Background(), task); err != nil {
			task()
		}
	}
	wg.Wait()
}

// RunChunks splits [0,n) into at most NumChunks contiguous ranges and runs
// fn once per range.
func (p *Pool) RunChunks(n int, fn func(r Range)) {
	chunks := Chunks(n, NumChunks)
	p.Run(len(chunks), func(i int) { fn(chunks[i]) })
}

// Close stops the workers after draining queued tasks. It is idempotent.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	p.submitMu.Lock()
	close(p.stopCh)
	close(p.workCh)
	p.submitMu.Unlock()

	p.wg.Wait()
}
