package pool

import (
	"io"
	"runtime"
	"sync"
)

// task is sent to the latent workers of a Pool.
//
// A worker evaluates run, then signals done.
type task struct {
	run  func()
	done *sync.WaitGroup
}

func worker(tasks <-chan task) {
	for t := range tasks {
		t.run()
		t.done.Done()
	}
}

// Pool represents a pool of workers, used for parallelizing functions.
//
// Functions needing a *Pool will work with a nil receiver, doing the equivalent
// work on the current goroutine instead.
//
// By creating a pool, you avoid the overhead of spinning up goroutines for
// each new operation.
type Pool struct {
	// The common channel used to send tasks to the workers.
	//
	// This effectively makes a work stealing pool.
	tasks chan task
	// This holds the number of workers we've created
	workerCount int
	// closed is set by TearDown, under the write lock, before tasks is closed.
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new pool, with a certain number of workers.
//
// If count <= 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}

	p := &Pool{
		tasks:       make(chan task),
		workerCount: count,
	}
	for i := 0; i < count; i++ {
		go worker(p.tasks)
	}
	return p
}

// Workers returns the number of workers of p, or 1 for a nil Pool.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workerCount
}

// TearDown cleanly tears down a pool, closing channels, etc.
//
// It is safe to call TearDown more than once, and concurrently with Parallelize.
// A pool that was torn down behaves like a nil Pool.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
}

// submit hands count calls of run to the workers, and reports false if p was torn down.
func (p *Pool) submit(count int, run func(int), wg *sync.WaitGroup) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	wg.Add(count)
	for i := 0; i < count; i++ {
		i := i
		p.tasks <- task{
			run:  func() { run(i) },
			done: wg,
		}
	}
	return true
}

// Parallelize calls f count times on the workers of p, passing in indices from 0..count-1.
//
// The result will be a slice containing [f(0), f(1), ..., f(count - 1)].
// The order in which the calls happen is unspecified. With a nil or torn down
// Pool, the calls happen on the current goroutine.
func Parallelize[T any](p *Pool, count int, f func(int) T) []T {
	results := make([]T, count)
	run := func(i int) { results[i] = f(i) }

	var wg sync.WaitGroup
	if p == nil || !p.submit(count, run, &wg) {
		for i := range results {
			run(i)
		}
		return results
	}
	wg.Wait()
	return results
}

// LockedReader wraps an io.Reader to be safe for concurrent reads.
//
// This type implements io.Reader, returning the same output.
//
// This means acquiring a lock whenever a read happens, so be aware of that
// for performance or concurrency reasons.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
func NewLockedReader(r io.Reader) *LockedReader {
	// Intentionally not initializing m, since the zero value is ok
	return &LockedReader{reader: r}
}

// Read implements io.Reader for LockedReader
//
// Naturally, when calling this function concurrently, what value ends up getting
// read is raced, but you won't end up reading the same value twice, or otherwise
// messing up the state of the reader.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
