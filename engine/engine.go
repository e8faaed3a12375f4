// Package engine provides the anthropometric record validation engine.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/phase"
	"github.com/gofhir/anthrocheck/pipeline"
	"github.com/gofhir/anthrocheck/record"
	"github.com/gofhir/anthrocheck/reference"
	"github.com/gofhir/anthrocheck/stream"
	"github.com/gofhir/anthrocheck/worker"
)

// Engine validates anthropometric records.
// It is safe for concurrent use; it holds no per-record state.
type Engine struct {
	options *ac.Options
	pipe    *pipeline.Pipeline
	metrics *ac.Metrics
	logger  *slog.Logger
	batch   *worker.BatchValidator
}

// New creates an Engine. The reference table is validated once here so that
// a malformed table is reported before any record is evaluated.
func New(opts ...ac.Option) (*Engine, error) {
	options := ac.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	if err := options.Table.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	metrics := options.Metrics
	if metrics == nil {
		metrics = ac.NewMetrics()
	}

	e := &Engine{
		options: options,
		metrics: metrics,
		logger:  options.Logger.With(slog.String("component", "engine")),
	}
	e.batch = worker.NewBatchValidator(e.Validate, options.WorkerCount)
	e.buildPipeline()

	return e, nil
}

// buildPipeline registers the standard phases and drops disabled rules.
func (e *Engine) buildPipeline() {
	e.pipe = pipeline.NewPipeline(pipeline.DefaultPipelineOptions())
	e.pipe.SetMetrics(e.metrics)

	phase.Register(e.pipe, phase.Default)

	for _, rule := range e.options.DisabledRules {
		if e.options.RuleEnabled(rule) {
			continue
		}
		e.pipe.DisableRule(rule)
	}

	e.logger.Debug("pipeline built",
		slog.Any("phases", e.pipe.Plan().PhaseNames()),
		slog.Int("stages", e.pipe.GroupCount()),
		slog.Int("workers", e.batch.Workers()),
	)
}

// Validate evaluates one record. The error is non-nil only when ctx is
// cancelled before evaluation completes; findings never surface as errors.
//
// With pooling enabled (the default) the caller should Release the result.
func (e *Engine) Validate(ctx context.Context, rec record.Record) (*ac.Result, error) {
	start := time.Now()

	pctx := pipeline.AcquireContext()
	defer pctx.Release()

	pctx.Record = rec
	pctx.Table = e.options.Table
	if raw, ok := rec.Sex.Get(); ok {
		if sex, ok := e.options.Vocabulary.Normalize(raw); ok {
			pctx.Sex = sex
		}
	}

	result := ac.AcquireResult()
	result.RecordID = rec.ID
	result.Strict = e.options.StrictMode
	pctx.Result = result

	result, err := e.pipe.Execute(ctx, pctx)
	pctx.Result = nil
	if err != nil {
		result.Release()
		return nil, err
	}

	duration := time.Since(start)
	e.metrics.RecordResult(result, duration)

	e.logger.LogAttrs(ctx, slog.LevelDebug, "record validated",
		slog.String("record_id", rec.ID),
		slog.Bool("valid", result.Valid),
		slog.Int("errors", result.ErrorCount()),
		slog.Int("warnings", result.WarningCount()),
		slog.Float64("score", result.Score),
		slog.Duration("duration", duration),
	)

	if !e.options.EnablePooling {
		clone := result.Clone()
		result.Release()
		return clone, nil
	}
	return result, nil
}

// ValidateJSON decodes a single JSON record and validates it. Undecodable
// input is returned as an error wrapping record.ErrMalformed.
func (e *Engine) ValidateJSON(ctx context.Context, data []byte) (*ac.Result, error) {
	rec, err := record.Decode(data)
	if err != nil {
		return nil, err
	}
	return e.Validate(ctx, rec)
}

// ValidateBatch validates records in parallel, bounded by the configured
// worker count. Results keep input order.
func (e *Engine) ValidateBatch(ctx context.Context, records []record.Record) *worker.BatchResult {
	return e.batch.ValidateBatch(ctx, records)
}

// ValidateStream validates a JSON array or JSON lines document from r,
// emitting results in input order.
func (e *Engine) ValidateStream(ctx context.Context, r io.Reader) <-chan *stream.EntryResult {
	sv := stream.NewRecordValidator(e.Validate).
		WithWorkerCount(e.options.WorkerCount).
		WithBufferSize(100)

	if e.options.WorkerCount > 1 {
		return sv.ValidateStreamParallel(ctx, r)
	}
	return sv.ValidateStream(ctx, r)
}

// Plan returns the phases that run, grouped by stage.
func (e *Engine) Plan() *pipeline.ExecutionPlan {
	return e.pipe.Plan()
}

// Metrics returns the engine's metrics.
func (e *Engine) Metrics() *ac.Metrics {
	return e.metrics
}

// Options returns the engine's options.
func (e *Engine) Options() *ac.Options {
	return e.options
}

// Table returns the active reference table.
func (e *Engine) Table() *reference.Table {
	return e.options.Table
}
