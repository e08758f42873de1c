package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// SkippedResult is returned for jobs that never started because the
// context was cancelled first
type SkippedResult struct {
	Err error
}

// GetError returns the cancellation cause
func (r *SkippedResult) GetError() error {
	return r.Err
}

// Pool runs jobs on a bounded number of workers
type Pool struct {
	workers int
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers: workers,
	}
}

// Workers returns the concurrency limit of the pool
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes jobs and blocks until all have finished.
// results[i] is the result of jobs[i] regardless of completion order.
// Jobs not started before ctx is cancelled get a SkippedResult.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if err := ctx.Err(); err != nil {
					results[i] = &SkippedResult{Err: err}
					continue
				}
				results[i] = jobs[i].Execute(ctx)
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)

	wg.Wait()

	return results
}
