package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func drain(p *Pool) <-chan []Outcome {
	out := make(chan []Outcome, 1)
	go func() {
		var got []Outcome
		for o := range p.Results() {
			got = append(got, o)
		}
		out <- got
	}()
	return out
}

func TestPool_Flow(t *testing.T) {
	pool := NewPool(context.Background(), WithWorkers(1, 3), WithIdleTimeout(time.Minute))
	results := drain(pool)

	var processed int32
	release := make(chan struct{})

	t.Run("Dispatcher creates workers on submit", func(t *testing.T) {
		for i := range 3 {
			ok := pool.Submit(Task{Name: fmt.Sprintf("file-%d.pdf", i), Run: func(ctx context.Context) error {
				<-release
				atomic.AddInt32(&processed, 1)
				return nil
			}})
			if !ok {
				t.Fatalf("submit %d rejected", i)
			}
		}

		time.Sleep(50 * time.Millisecond)
		if count := pool.WorkerCount(); count < 2 {
			t.Errorf("Expected the pool to grow past 1 worker, got %d", count)
		}
		if count := pool.WorkerCount(); count > 3 {
			t.Errorf("Expected at most 3 workers, got %d", count)
		}
	})

	t.Run("Workers process every task", func(t *testing.T) {
		close(release)
		pool.Wait()
		if got := atomic.LoadInt32(&processed); got != 3 {
			t.Errorf("Expected 3 tasks processed, got %d", got)
		}
	})

	t.Run("Close retires workers and closes results", func(t *testing.T) {
		done := make(chan struct{})
		go func() {
			pool.Close()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Workers did not stop within timeout")
		}

		outcomes := <-results
		if len(outcomes) != 3 {
			t.Errorf("Expected 3 outcomes, got %d", len(outcomes))
		}
		if pool.WorkerCount() != 0 {
			t.Errorf("Expected no workers after close, got %d", pool.WorkerCount())
		}
		if pool.Submit(Task{Name: "late", Run: func(ctx context.Context) error { return nil }}) {
			t.Error("Submit accepted a task after Close")
		}
	})
}

func TestPool_ReportsFailuresAndPanics(t *testing.T) {
	pool := NewPool(context.Background(), WithWorkers(1, 1))
	results := drain(pool)

	pool.Submit(Task{Name: "bad.pdf", Run: func(ctx context.Context) error { return errors.New("corrupted") }})
	pool.Submit(Task{Name: "panic.pdf", Run: func(ctx context.Context) error { panic("boom") }})
	pool.Submit(Task{Name: "good.pdf", Run: func(ctx context.Context) error { return nil }})
	pool.Wait()
	pool.Close()

	byName := map[string]error{}
	for _, o := range <-results {
		byName[o.Name] = o.Err
	}
	if byName["bad.pdf"] == nil || byName["panic.pdf"] == nil {
		t.Errorf("Expected failures to be reported, got %v", byName)
	}
	if err, ok := byName["good.pdf"]; !ok || err != nil {
		t.Errorf("Expected good.pdf to succeed after a panic, got %v (present=%v)", err, ok)
	}
}

func TestPool_TasksCarryTraceId(t *testing.T) {
	pool := NewPool(context.Background(), WithWorkers(1, 1))
	results := drain(pool)

	var seen atomic.Value
	pool.Submit(Task{Name: "trace.pdf", Run: func(ctx context.Context) error {
		seen.Store(ctx.Value("traceId"))
		return nil
	}})
	pool.Wait()
	pool.Close()
	<-results

	if id, _ := seen.Load().(string); id == "" {
		t.Error("Expected a trace id in the task context")
	}
}

func TestWorker_IdleTimeout(t *testing.T) {
	pool := NewPool(context.Background(), WithWorkers(1, 3), WithIdleTimeout(50*time.Millisecond))
	results := drain(pool)
	defer func() {
		pool.Close()
		<-results
	}()

	release := make(chan struct{})
	for i := range 3 {
		pool.Submit(Task{Name: fmt.Sprintf("slow-%d", i), Run: func(ctx context.Context) error {
			<-release
			return nil
		}})
	}
	time.Sleep(30 * time.Millisecond)
	close(release)
	pool.Wait()

	time.Sleep(300 * time.Millisecond)
	if count := pool.WorkerCount(); count != 1 {
		t.Errorf("Expected idle workers to retire down to the minimum, got %d", count)
	}
}
