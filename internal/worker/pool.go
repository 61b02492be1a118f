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

// Pool manages a pool of workers that execute jobs concurrently.
// A pool is used for one batch of jobs: Start, Submit, Wait, then Shutdown.
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	collected  []Result
	collectWG  sync.WaitGroup
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	queueMu    sync.RWMutex
	queueShut  bool
	closeOnce  sync.Once
}

// NewPoolContext creates a worker pool whose jobs stop when parent is done
func NewPoolContext(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2), // Buffered to prevent blocking
		results:    make(chan Result, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Workers returns the number of worker goroutines
func (p *Pool) Workers() int {
	return p.workers
}

// Start starts the worker pool and the result collector
func (p *Pool) Start() {
	p.collectWG.Add(1)
	go p.collect()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// worker is the worker goroutine that processes jobs
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.results <- job.Execute(p.ctx)
		}
	}
}

// collect drains results while jobs are still being submitted
func (p *Pool) collect() {
	defer p.collectWG.Done()
	for result := range p.results {
		p.collected = append(p.collected, result)
	}
}

// Submit submits a job to the pool for execution.
// It returns false when the pool was shut down or already waited on.
func (p *Pool) Submit(job Job) bool {
	p.queueMu.RLock()
	defer p.queueMu.RUnlock()

	if p.queueShut || p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job:
		return true
	}
}

// Wait waits for all submitted jobs to complete and returns their results in completion order
func (p *Pool) Wait() []Result {
	// Close job queue to signal workers to exit when done
	p.closeQueue()
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()

	return p.collected
}

// Shutdown stops the pool and releases its workers.
// It is safe to call after Wait and more than once.
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
}

func (p *Pool) closeQueue() {
	p.queueMu.Lock()
	defer p.queueMu.Unlock()
	if !p.queueShut {
		p.queueShut = true
		close(p.jobQueue)
	}
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
