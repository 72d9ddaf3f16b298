package resource

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds the limits of background jobs.
type Config struct {
	// MemoryLimitBytes caps the bytes held by running jobs. Zero only tracks usage.
	MemoryLimitBytes int64
	// MaxBackgroundWorkers caps the jobs running at once. Zero means 1.
	MaxBackgroundWorkers int64
	// IOLimitBytesPerSec caps the write throughput reported through AcquireIO.
	// Zero means unlimited.
	IOLimitBytesPerSec int64
}

// Stats is a point-in-time view of a Controller.
type Stats struct {
	MemoryInUse int64
	RunningJobs int64
}

// Controller starts background jobs within the configured limits.
// A nil *Controller imposes no IO limit.
type Controller struct {
	cfg Config

	slots   *semaphore.Weighted
	mem     *semaphore.Weighted // nil without a memory limit
	limiter *rate.Limiter       // nil without an IO limit

	memInUse atomic.Int64
	running  atomic.Int64
}

// NewController returns a controller enforcing cfg.
func NewController(cfg Config) *Controller {
	if cfg.MaxBackgroundWorkers <= 0 {
		cfg.MaxBackgroundWorkers = 1
	}
	c := &Controller{
		cfg:   cfg,
		slots: semaphore.NewWeighted(cfg.MaxBackgroundWorkers),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.mem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// Config returns the effective limits.
func (c *Controller) Config() Config { return c.cfg }

// Stats returns the current usage.
func (c *Controller) Stats() Stats {
	return Stats{MemoryInUse: c.memInUse.Load(), RunningJobs: c.running.Load()}
}

// Job is a background task started by Go.
type Job struct {
	done chan struct{}
	err  error
}

// Wait blocks until the job has finished and returns its error.
// A nil Job is already finished.
func (j *Job) Wait() error {
	if j == nil {
		return nil
	}
	<-j.done
	return j.err
}

// Go runs fn in a background slot holding memBytes of reserved memory. It
// blocks until both are available or ctx is done. Reservations above the
// memory limit are clamped to it. A panic in fn is returned by Wait.
func (c *Controller) Go(ctx context.Context, memBytes int64, fn func(context.Context) error) (*Job, error) {
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	reserved := c.reserved(memBytes)
	if c.mem != nil && reserved > 0 {
		if err := c.mem.Acquire(ctx, reserved); err != nil {
			c.slots.Release(1)
			return nil, err
		}
	}
	c.running.Add(1)
	c.memInUse.Add(max(memBytes, 0))

	j := &Job{done: make(chan struct{})}
	go func() {
		defer close(j.done)
		defer c.release(memBytes, reserved)
		defer func() {
			if r := recover(); r != nil {
				j.err = fmt.Errorf("resource: background job panicked: %v", r)
			}
		}()
		j.err = fn(ctx)
	}()
	return j, nil
}

func (c *Controller) reserved(memBytes int64) int64 {
	if c.mem == nil || memBytes <= 0 {
		return 0
	}
	return min(memBytes, c.cfg.MemoryLimitBytes)
}

func (c *Controller) release(memBytes, reserved int64) {
	if reserved > 0 {
		c.mem.Release(reserved)
	}
	c.memInUse.Add(-max(memBytes, 0))
	c.running.Add(-1)
	c.slots.Release(1)
}

// AcquireIO waits until the IO limit admits n bytes. Requests larger than one
// second of throughput are admitted in parts.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.limiter == nil {
		return nil
	}
	burst := c.limiter.Burst()
	for n > 0 {
		part := min(n, burst)
		if err := c.limiter.WaitN(ctx, part); err != nil {
			return err
		}
		n -= part
	}
	return nil
}
