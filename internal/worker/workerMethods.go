package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/metrics"
	"github.com/google/uuid"
)

func (p *Pool) execute(task Task) {
	defer p.pending.Done()
	start := time.Now()

	traceId := uuid.NewString()
	ctx := context.WithValue(p.ctx, config.TRACE_ID_KEY, traceId)
	log := p.logger.FromContext(ctx).With("task", task.Name)
	log.Debug("Processing task")

	err := p.run(ctx, task)
	outcome := Outcome{Name: task.Name, Err: err, Duration: time.Since(start)}
	if err != nil {
		log.Warn("Task failed", "error", err, "duration", outcome.Duration)
	} else {
		log.Debug("Task done", "duration", outcome.Duration)
	}

	select {
	case p.results <- outcome:
	case <-p.stop:
	case <-p.ctx.Done():
	}
}

// run keeps a panicking task from taking its worker down.
func (p *Pool) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.Name, r)
		}
	}()
	return task.Run(ctx)
}

// tryRetire decrements the worker count unless that would drop it below
// the minimum.
func (p *Pool) tryRetire() bool {
	for {
		n := atomic.LoadInt64(&p.count)
		if n <= p.minWorkers {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.count, n, n-1) {
			return true
		}
	}
}

func (p *Pool) removeWorker(reason string) {
	p.workers.Done()
	metrics.DecrementActiveWorkerCount()
	p.logger.Debug("Removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&p.count))
}
