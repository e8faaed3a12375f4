package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/google/uuid"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/record"
)

// ErrNoValidator is returned when the pool has no validator configured.
var ErrNoValidator = errors.New("no validator configured")

// Validator is the interface that the pool uses to validate records.
// *engine.Engine satisfies it.
type Validator interface {
	Validate(ctx context.Context, rec record.Record) (*ac.Result, error)
}

// Pool manages a pool of worker goroutines fed one job at a time.
type Pool struct {
	workers    int
	jobsChan   chan Job
	resultChan chan *JobResult
	validator  Validator
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	// mu guards jobsChan against a send after close
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new worker pool with the specified number of workers.
// If workers <= 0, it defaults to runtime.NumCPU(). Cancelling ctx stops
// the pool: queued jobs are dropped.
func NewPool(ctx context.Context, validator Validator, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)

	p := &Pool{
		workers:    workers,
		jobsChan:   make(chan Job, workers*2),
		resultChan: make(chan *JobResult, workers*2),
		validator:  validator,
		ctx:        ctx,
		cancel:     cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

// Submit submits a job to the pool for processing.
// It blocks while the job queue is full and returns false once the pool is
// closed or stopped.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		return true
	}
}

// Results returns the channel for receiving job results. It is closed after
// Close once every queued job has been delivered.
func (p *Pool) Results() <-chan *JobResult {
	return p.resultChan
}

// Close stops accepting jobs. Queued jobs still run, so the caller must keep
// draining Results until it is closed.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.jobsChan)

	go func() {
		p.wg.Wait()
		close(p.resultChan)
		p.cancel()
	}()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for job := range p.jobsChan {
		if p.ctx.Err() != nil {
			continue
		}

		result := run(p.ctx, p.validator, job)

		select {
		case <-p.ctx.Done():
			if result.Result != nil {
				result.Result.Release()
			}
		case p.resultChan <- result:
		}
	}
}
