package engine

import (
	"context"
	"runtime"
	"sync"
)

// WorkerPool runs generator requests on a fixed set of goroutines that live
// as long as the engine.
type WorkerPool struct {
	size  int
	tasks chan func()
	wg    sync.WaitGroup

	mu     sync.RWMutex // guards closed against sends on a closed channel
	closed bool
}

// NewWorkerPool starts size workers. A size of 1 suits a generator that
// batches internally; a remote generator with several replicas wants one
// worker per replica. Sizes <= 0 mean GOMAXPROCS.
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	wp := &WorkerPool{size: size, tasks: make(chan func(), size*2)}
	wp.wg.Add(size)
	for range size {
		go func() {
			defer wp.wg.Done()
			for task := range wp.tasks {
				task()
			}
		}()
	}
	return wp
}

// Size returns the number of workers.
func (wp *WorkerPool) Size() int { return wp.size }

// Submit queues task. It blocks while the queue is full and returns ErrClosed
// after Close, or the context error when ctx ends first.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return ErrClosed
	}
	select {
	case wp.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run calls fn(i) for every i in [0,n) on the pool and waits for the calls.
// On a submit error the calls already queued still finish before it returns.
func (wp *WorkerPool) Run(ctx context.Context, n int, fn func(i int)) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	for i := range n {
		wg.Add(1)
		err := wp.Submit(ctx, func() {
			defer wg.Done()
			fn(i)
		})
		if err != nil {
			wg.Done()
			return err
		}
	}
	return nil
}

// Close runs the queued tasks and stops the workers. It is idempotent.
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.tasks)
	wp.mu.Unlock()
	wp.wg.Wait()
}
