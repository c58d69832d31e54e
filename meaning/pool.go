package meaning

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("lookup pool closed")

// ErrQueueFull is returned by Submit when every queue slot is taken.
var ErrQueueFull = errors.New("lookup queue full")

// task is one queued lookup.
type task func(ctx context.Context)

// Pool runs lookup tasks on a fixed number of goroutines with a bounded
// queue, so a burst of new words cannot spawn unbounded outbound requests.
type Pool struct {
	tasks   chan task
	wg      sync.WaitGroup
	workers int

	mu     sync.Mutex
	closed bool
}

func NewPool(workers, queue int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	return &Pool{
		tasks:   make(chan task, queue),
		workers: workers,
	}
}

// Start launches the workers. They exit when ctx is cancelled or the pool
// is closed.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-p.tasks:
					if !ok {
						return
					}
					t(ctx)
				}
			}
		}()
	}
}

// Submit enqueues a task. It never blocks: lookups are best effort, and the
// caller is the transcription loop, so a slow dictionary must shed load
// here rather than stall audio processing.
func (p *Pool) Submit(t task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close rejects further submits and waits for queued tasks to drain.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
