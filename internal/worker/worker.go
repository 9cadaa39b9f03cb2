package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/metrics"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
)

// Task is one unit of work, usually a single file to ingest.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Outcome struct {
	Name     string
	Err      error
	Duration time.Duration
}

/*
Pool grows from minWorkers up to maxWorkers as tasks arrive. The dispatcher
creates a worker for every submit signal while under the cap, and workers
above the minimum retire after idleTimeout without work.
*/
type Pool struct {
	ctx         context.Context
	tasks       chan Task
	dispatch    chan struct{}
	stop        chan struct{}
	results     chan Outcome
	workers     sync.WaitGroup
	pending     sync.WaitGroup
	count       int64
	minWorkers  int64
	maxWorkers  int64
	idleTimeout time.Duration
	mu          sync.Mutex
	closed      bool
	logger      *logger_i.Logger
}

type Option func(*Pool)

func WithWorkers(min, max int64) Option {
	return func(p *Pool) {
		if min < 1 {
			min = 1
		}
		if max < min {
			max = min
		}
		p.minWorkers, p.maxWorkers = min, max
	}
}

func WithIdleTimeout(d time.Duration) Option {
	return func(p *Pool) { p.idleTimeout = d }
}

// NewPool starts the dispatcher and the minimum number of workers. Task
// outcomes are delivered on Results, which is closed by Close.
func NewPool(ctx context.Context, opts ...Option) *Pool {
	p := &Pool{
		ctx:         ctx,
		tasks:       make(chan Task, config.BufferLimit),
		dispatch:    make(chan struct{}, config.BufferLimit),
		stop:        make(chan struct{}),
		results:     make(chan Outcome, config.BufferLimit),
		minWorkers:  config.MinWorkerCount,
		maxWorkers:  config.MaxWorkerCount,
		idleTimeout: config.IdleWorkerTimeout,
		logger:      logger_i.NewLogger("WorkerPool"),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.logger.Info("Initializing worker pool", "min", p.minWorkers, "max", p.maxWorkers)
	for range p.minWorkers {
		p.createWorker()
	}
	go p.dispatcher()
	return p
}

// Submit queues a task. It blocks while the queue is full and returns false
// once the pool has been closed or its context is done.
func (p *Pool) Submit(task Task) bool {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return false
	}

	p.pending.Add(1)
	select {
	case p.tasks <- task:
	case <-p.stop:
		p.pending.Done()
		return false
	case <-p.ctx.Done():
		p.pending.Done()
		return false
	}
	metrics.IncrementTasksInQueue()

	select {
	case p.dispatch <- struct{}{}:
		metrics.StartDispatcherSignalCount()
	default:
	}
	return true
}

func (p *Pool) Results() <-chan Outcome {
	return p.results
}

// Wait blocks until every submitted task has finished.
func (p *Pool) Wait() {
	p.pending.Wait()
}

// Close stops all workers and closes Results. Tasks still queued are dropped.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.stop)
	p.mu.Unlock()

	p.workers.Wait()
	close(p.results)
	p.logger.Info("Worker pool stopped")
}

func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.count)
}

func (p *Pool) dispatcher() {
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.dispatch:
			if atomic.LoadInt64(&p.count) < p.maxWorkers {
				p.logger.Debug("Creating new worker", "workerCount", atomic.LoadInt64(&p.count))
				p.createWorker()
			}
		case <-p.stop:
			return
		}
	}
}

func (p *Pool) createWorker() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.workers.Add(1)
	atomic.AddInt64(&p.count, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
}

func (p *Pool) worker() {
	idle := time.NewTimer(p.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case task := <-p.tasks:
			metrics.DecrementTasksInQueue()
			p.execute(task)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(p.idleTimeout)

		case <-p.stop:
			atomic.AddInt64(&p.count, -1)
			p.removeWorker("Stop worker signal received")
			return

		case <-idle.C:
			if p.tryRetire() {
				p.removeWorker("Idle worker timeout")
				return
			}
			idle.Reset(p.idleTimeout)
		}
	}
}
