package worker

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/record"
)

// ValidateFunc validates a single record.
type ValidateFunc func(ctx context.Context, rec record.Record) (*ac.Result, error)

// Validate calls f(ctx, rec).
func (f ValidateFunc) Validate(ctx context.Context, rec record.Record) (*ac.Result, error) {
	return f(ctx, rec)
}

// BatchValidator validates slices of records with bounded concurrency.
type BatchValidator struct {
	validate ValidateFunc
	workers  int
}

// NewBatchValidator creates a new batch validator. If workers <= 0 it
// defaults to runtime.NumCPU().
func NewBatchValidator(validateFunc ValidateFunc, workers int) *BatchValidator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchValidator{
		validate: validateFunc,
		workers:  workers,
	}
}

// Workers returns the concurrency limit.
func (bv *BatchValidator) Workers() int {
	return bv.workers
}

// ValidateBatch validates records in parallel. Results[i] always belongs to
// records[i]. Records not yet started when ctx is cancelled get a JobResult
// carrying ctx.Err().
func (bv *BatchValidator) ValidateBatch(ctx context.Context, records []record.Record) *BatchResult {
	start := time.Now()
	results := make([]*JobResult, len(records))

	var g errgroup.Group
	g.SetLimit(bv.workers)

	for i, rec := range records {
		job := Job{ID: uuid.NewString(), Index: i, Record: rec}
		if err := ctx.Err(); err != nil {
			results[i] = &JobResult{ID: job.ID, Index: i, Error: err}
			continue
		}
		g.Go(func() error {
			results[i] = run(ctx, bv.validator(), job)
			return nil
		})
	}
	_ = g.Wait()

	br := &BatchResult{
		Results:       results,
		TotalJobs:     len(records),
		TotalDuration: time.Since(start),
	}
	for _, r := range results {
		if r.Error != nil {
			br.FailedJobs++
		} else {
			br.CompletedJobs++
		}
	}
	return br
}

func (bv *BatchValidator) validator() Validator {
	if bv.validate == nil {
		return nil
	}
	return bv.validate
}

// run validates one job and stamps the result with the job id.
func run(ctx context.Context, v Validator, job Job) *JobResult {
	start := time.Now()
	jr := &JobResult{ID: job.ID, Index: job.Index}

	if v == nil {
		jr.Error = ErrNoValidator
		return jr
	}

	result, err := v.Validate(ctx, job.Record)
	switch {
	case err != nil:
		jr.Error = err
		if result != nil {
			result.Release()
		}
	case result != nil:
		result.JobID = job.ID
		jr.Result = result
	}

	jr.Duration = time.Since(start)
	return jr
}
