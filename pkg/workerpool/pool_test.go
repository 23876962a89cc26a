package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolProcessesTasks(t *testing.T) {
	var processed int64
	pool, err := New(Config{Workers: 4, QueueSize: 100}, func(ctx context.Context, task *Task) *Result {
		atomic.AddInt64(&processed, 1)
		return &Result{TaskID: task.ID, Success: true}
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	pool.Start()
	for i := 0; i < 20; i++ {
		if err := pool.Submit(&Task{ID: fmt.Sprintf("task-%d", i)}); err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
	}
	pool.Stop()

	if got := atomic.LoadInt64(&processed); got != 20 {
		t.Errorf("processed = %d, want 20", got)
	}
	if stats := pool.Stats(); stats.Completed != 20 {
		t.Errorf("completed = %d, want 20", stats.Completed)
	}
}

func TestPoolRetriesFailedTasks(t *testing.T) {
	var attempts int64
	pool, err := New(Config{Workers: 1, QueueSize: 10, MaxRetries: 2, RetryDelay: time.Millisecond},
		func(ctx context.Context, task *Task) *Result {
			if atomic.AddInt64(&attempts, 1) < 3 {
				return &Result{TaskID: task.ID, Success: false, Error: errors.New("transient")}
			}
			return &Result{TaskID: task.ID, Success: true}
		}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	pool.Start()
	if err := pool.Submit(&Task{ID: "flaky"}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	pool.Stop()

	if got := atomic.LoadInt64(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if stats := pool.Stats(); stats.Completed != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want 1 completed, 0 failed", stats)
	}
}

func TestPoolRejectsAfterStop(t *testing.T) {
	pool, err := New(Config{Workers: 1, QueueSize: 1}, func(ctx context.Context, task *Task) *Result {
		return &Result{TaskID: task.ID, Success: true}
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	pool.Start()
	pool.Stop()

	if err := pool.Submit(&Task{ID: "late"}); err == nil {
		t.Error("expected Submit to fail after Stop")
	}
}

func TestNewRequiresWorkerFunc(t *testing.T) {
	if _, err := New(DefaultConfig(), nil, nil); err == nil {
		t.Error("expected error for nil worker func")
	}
}
