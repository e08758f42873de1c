package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	id  int
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	id        int
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{id: j.id, err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{id: j.id, err: errors.New("job error")}
	}
	return &mockResult{id: j.id}
}

func TestNewPool(t *testing.T) {
	p1 := NewPool(5)
	if p1.Workers() != 5 {
		t.Errorf("expected 5 workers, got %d", p1.Workers())
	}

	p2 := NewPool(0)
	if p2.Workers() != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.Workers())
	}

	p3 := NewPool(-1)
	if p3.Workers() != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p3.Workers())
	}
}

func TestPool_Execution(t *testing.T) {
	var executed int32
	count := 100 // well above the worker count

	jobs := make([]Job, count)
	for i := range jobs {
		jobs[i] = &mockJob{id: i, executed: &executed}
	}

	results := NewPool(2).Run(context.Background(), jobs)

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}

	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

func TestPool_PreservesOrder(t *testing.T) {
	count := 20
	jobs := make([]Job, count)
	for i := range jobs {
		// later jobs finish first
		jobs[i] = &mockJob{id: i, duration: time.Duration(count-i) * time.Millisecond}
	}

	results := NewPool(8).Run(context.Background(), jobs)

	for i, res := range results {
		if got := res.(*mockResult).id; got != i {
			t.Errorf("result %d belongs to job %d", i, got)
		}
	}
}

func TestPool_Empty(t *testing.T) {
	results := NewPool(4).Run(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

// concurrencyJob tracks max concurrent executions
type concurrencyJob struct {
	start    func()
	end      func()
	duration time.Duration
}

func (j *concurrencyJob) Execute(ctx context.Context) Result {
	if j.start != nil {
		j.start()
	}
	time.Sleep(j.duration)
	if j.end != nil {
		j.end()
	}
	return &mockResult{}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10

	var current int32
	var maxConcurrent int32
	var completed int32
	var mu sync.Mutex

	totalJobs := 50
	jobs := make([]Job, totalJobs)

	for i := range jobs {
		jobs[i] = &concurrencyJob{
			start: func() {
				curr := atomic.AddInt32(&current, 1)
				mu.Lock()
				if curr > maxConcurrent {
					maxConcurrent = curr
				}
				mu.Unlock()
			},
			end: func() {
				atomic.AddInt32(&current, -1)
				atomic.AddInt32(&completed, 1)
			},
			duration: 10 * time.Millisecond,
		}
	}

	NewPool(workers).Run(context.Background(), jobs)

	if atomic.LoadInt32(&completed) != int32(totalJobs) {
		t.Errorf("expected %d completed jobs, got %d", totalJobs, completed)
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}

	if max <= 1 {
		t.Logf("Warning: max concurrency was %d, expected > 1", max)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	jobs := []Job{
		&mockJob{shouldErr: true},
		&mockJob{shouldErr: false},
	}

	results := NewPool(2).Run(context.Background(), jobs)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].GetError() == nil {
		t.Error("expected first job to fail")
	}
	if results[1].GetError() != nil {
		t.Errorf("expected second job to succeed, got %v", results[1].GetError())
	}
}

func TestPool_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var executed int32
	jobs := make([]Job, 5)
	for i := range jobs {
		jobs[i] = &mockJob{executed: &executed}
	}

	done := make(chan []Result)
	go func() {
		done <- NewPool(2).Run(ctx, jobs)
	}()

	select {
	case results := <-done:
		if atomic.LoadInt32(&executed) != 0 {
			t.Errorf("expected no job to run, %d ran", executed)
		}
		for i, res := range results {
			if _, ok := res.(*SkippedResult); !ok {
				t.Errorf("result %d: expected SkippedResult, got %T", i, res)
			}
			if !errors.Is(res.GetError(), context.Canceled) {
				t.Errorf("result %d: expected context.Canceled, got %v", i, res.GetError())
			}
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
