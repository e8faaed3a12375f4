package worker

import (
	"time"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/record"
)

// Job is one record submitted for validation.
type Job struct {
	// ID is a unique identifier for this job. A random UUID is assigned
	// when empty.
	ID string

	// Index is the position of the record in its batch or stream.
	Index int

	// Record is the record to validate.
	Record record.Record
}

// JobResult represents the result of a validation job.
type JobResult struct {
	// ID matches the Job.ID that produced this result.
	ID string

	// Index matches the Job.Index that produced this result.
	Index int

	// Result contains the validation result. It is nil when Error is set.
	Result *ac.Result

	// Error is set when the job could not be evaluated, for example
	// because the context was cancelled.
	Error error

	// Duration is the time taken to validate.
	Duration time.Duration
}

// BatchResult aggregates results from multiple jobs.
type BatchResult struct {
	// Results contains one entry per submitted record, in input order.
	Results []*JobResult

	// TotalJobs is the number of jobs submitted.
	TotalJobs int

	// CompletedJobs is the number of jobs that produced a result.
	CompletedJobs int

	// FailedJobs is the number of jobs that ended with an error.
	FailedJobs int

	// TotalDuration is the wall time of the whole batch.
	TotalDuration time.Duration
}

// ValidCount returns the number of records accepted.
func (br *BatchResult) ValidCount() int {
	count := 0
	for _, r := range br.Results {
		if r.Result != nil && r.Result.Valid {
			count++
		}
	}
	return count
}

// InvalidCount returns the number of records rejected.
func (br *BatchResult) InvalidCount() int {
	count := 0
	for _, r := range br.Results {
		if r.Result != nil && !r.Result.Valid {
			count++
		}
	}
	return count
}

// ErrorCount returns the total number of error findings across all results.
func (br *BatchResult) ErrorCount() int {
	count := 0
	for _, r := range br.Results {
		if r.Result != nil {
			count += r.Result.ErrorCount()
		}
	}
	return count
}

// WarningCount returns the total number of warning findings across all results.
func (br *BatchResult) WarningCount() int {
	count := 0
	for _, r := range br.Results {
		if r.Result != nil {
			count += r.Result.WarningCount()
		}
	}
	return count
}

// Release returns every result to the pool. The batch must not be used
// afterwards.
func (br *BatchResult) Release() {
	for _, r := range br.Results {
		if r.Result != nil {
			r.Result.Release()
			r.Result = nil
		}
	}
}
