package validation

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"fhtsuite/internal"
)

// DefaultMaxWeight bounds the number of data points held by in-flight jobs
const DefaultMaxWeight int64 = 200_000

// pairJob is one (pattern, size) unit of work
type pairJob struct {
	index   int
	pattern string
	size    int
}

// jobOutcome is what a job leaves behind: a private accumulator or a failure
type jobOutcome struct {
	acc      *Accumulator
	failure  *Failure
	duration time.Duration
}

// jobFunc executes one job against its private accumulator
type jobFunc func(ctx context.Context, job pairJob, acc *Accumulator) *Failure

// ConcurrentExecutor runs jobs with a worker limit and size-weighted throttling
type ConcurrentExecutor struct {
	workers   int
	capacity  int64
	semaphore *semaphore.Weighted
	logger    *internal.Logger
}

// NewConcurrentExecutor creates an executor. workers <= 0 means GOMAXPROCS,
// capacity <= 0 means DefaultMaxWeight.
func NewConcurrentExecutor(workers int, capacity int64) *ConcurrentExecutor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if capacity <= 0 {
		capacity = DefaultMaxWeight
	}
	return &ConcurrentExecutor{
		workers:   workers,
		capacity:  capacity,
		semaphore: semaphore.NewWeighted(capacity),
		logger:    internal.DefaultLogger.WithComponent("ConcurrentExecutor"),
	}
}

// cost is the semaphore weight of a job; oversize jobs take the whole capacity
func (ce *ConcurrentExecutor) cost(size int) int64 {
	c := int64(size)
	if c < 1 {
		c = 1
	}
	if c > ce.capacity {
		c = ce.capacity
	}
	return c
}

// Execute runs every job and returns outcomes indexed like jobs. Job failures
// are carried in the outcomes; the error is non-nil only when ctx ends first.
func (ce *ConcurrentExecutor) Execute(ctx context.Context, jobs []pairJob, run jobFunc) ([]jobOutcome, error) {
	outcomes := make([]jobOutcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ce.workers)

	for _, job := range jobs {
		job := job
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			cost := ce.cost(job.size)
			if err := ce.semaphore.Acquire(gctx, cost); err != nil {
				return fmt.Errorf("waiting for capacity (%s/%d): %w", job.pattern, job.size, err)
			}
			defer ce.semaphore.Release(cost)

			start := time.Now()
			acc := NewAccumulator()
			failure := run(gctx, job, acc)
			outcomes[job.index] = jobOutcome{acc: acc, failure: failure, duration: time.Since(start)}

			ce.logger.Debug("%s/%d finished (cost: %d, duration: %v)", job.pattern, job.size, cost, time.Since(start))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
