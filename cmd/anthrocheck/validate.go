package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/engine"
	"github.com/gofhir/anthrocheck/fhirimport"
	"github.com/gofhir/anthrocheck/pkg/logger"
	"github.com/gofhir/anthrocheck/sink"
)

// Input formats.
const (
	inputRecord = "record"
	inputFHIR   = "fhir"
)

// Output formats.
const (
	outputText  = "text"
	outputJSON  = "json"
	outputJSONL = "jsonl"
)

type validateFlags struct {
	input   string
	output  string
	quiet   bool
	publish bool
}

// tally counts the reports written during one run.
type tally struct {
	total      int
	valid      int
	invalid    int
	unreadable int
}

func (t *tally) add(r sink.Report) {
	t.total++
	switch {
	case r.Error != "":
		t.unreadable++
	case r.Valid:
		t.valid++
	default:
		t.invalid++
	}
}

func newValidateCmd(a *app) *cobra.Command {
	f := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate [file...|-]",
		Short: "Validate records and report findings",
		Long: `Validate reads records from the given files, or from standard input
when no file or "-" is given.

Exit status is 0 when every record is valid, 1 when at least one record is
invalid and 2 when input or configuration could not be processed.`,
		Example: `  anthrocheck validate records.json
  anthrocheck validate --output jsonl --strict < records.jsonl
  anthrocheck validate --format fhir bundle.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validate(cmd.Context(), args, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.input, "format", inputRecord, "input format: record, fhir")
	flags.StringVar(&f.output, "output", outputText, "output format: text, json, jsonl")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "omit valid records without findings from text output")
	flags.BoolVar(&f.publish, "publish", false, "also publish reports to ANTHRO_AMQP_URL")
	return cmd
}

func (a *app) validate(ctx context.Context, args []string, f *validateFlags) error {
	if f.input != inputRecord && f.input != inputFHIR {
		return &exitError{code: exitContract, err: fmt.Errorf("unknown input format %q", f.input)}
	}

	out, err := a.newSink(f)
	if err != nil {
		return &exitError{code: exitContract, err: err}
	}

	eng, err := a.newEngine()
	if err != nil {
		_ = out.Close()
		return &exitError{code: exitContract, err: err}
	}

	if len(args) == 0 {
		args = []string{"-"}
	}

	start := time.Now()
	var (
		counts   tally
		failures []error
	)
	for _, name := range args {
		if err := a.validateInput(ctx, eng, name, f.input, out, &counts); err != nil {
			a.log.Error("input failed", slog.String("input", name), logger.Error(err))
			failures = append(failures, fmt.Errorf("%s: %w", name, err))
		}
	}
	if err := out.Close(); err != nil {
		failures = append(failures, err)
	}

	a.log.Info("validation finished",
		slog.Int("inputs", len(args)),
		slog.Int("records", counts.total),
		slog.Int("valid", counts.valid),
		slog.Int("invalid", counts.invalid),
		slog.Int("unreadable", counts.unreadable),
		slog.Duration("duration", time.Since(start)),
	)
	a.log.Debug("engine metrics", slog.Any("metrics", eng.Metrics().Snapshot()))

	switch {
	case len(failures) > 0:
		return &exitError{code: exitContract, err: errors.Join(failures...)}
	case counts.unreadable > 0:
		return &exitError{code: exitContract}
	case counts.invalid > 0:
		return &exitError{code: exitInvalid}
	}
	return nil
}

func (a *app) newEngine() (*engine.Engine, error) {
	opts, err := a.cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, ac.WithLogger(a.log), ac.WithPooling(true))
	return engine.New(opts...)
}

func (a *app) newSink(f *validateFlags) (sink.Sink, error) {
	var sinks sink.Multi
	switch f.output {
	case outputText:
		w := sink.NewTextWriter(a.stdout)
		w.Quiet = f.quiet
		sinks = append(sinks, w)
	case outputJSONL:
		sinks = append(sinks, sink.NewJSONLWriter(a.stdout))
	case outputJSON:
		sinks = append(sinks, &documentWriter{w: a.stdout})
	default:
		return nil, fmt.Errorf("unknown output format %q", f.output)
	}

	if f.publish {
		if a.cfg.AMQPURL == "" {
			return nil, errors.New("publish: ANTHRO_AMQP_URL is not set")
		}
		p, err := sink.DialAMQP(a.cfg.AMQPURL, a.cfg.AMQPQueue)
		if err != nil {
			return nil, fmt.Errorf("publish: %w", err)
		}
		a.log.Info("publishing reports", slog.String("queue", p.Queue()))
		sinks = append(sinks, p)
	}
	return sinks, nil
}

func (a *app) open(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(a.stdin), nil
	}
	return os.Open(name)
}

func (a *app) validateInput(ctx context.Context, eng *engine.Engine, name, format string, out sink.Sink, counts *tally) error {
	r, err := a.open(name)
	if err != nil {
		return err
	}
	defer r.Close()

	if format == inputFHIR {
		return a.validateBundle(ctx, eng, r, out, counts)
	}

	// A stream-level error is always the last entry.
	var streamErr, writeErr error
	for entry := range eng.ValidateStream(ctx, r) {
		if entry.Index < 0 {
			streamErr = entry.Error
			continue
		}
		report := entryReport(entry.Index, entry.RecordID, entry.Result, entry.Error)
		if entry.Result != nil {
			entry.Result.Release()
		}
		if writeErr != nil {
			continue
		}
		writeErr = write(ctx, out, report, counts)
	}
	return errors.Join(streamErr, writeErr)
}

func (a *app) validateBundle(ctx context.Context, eng *engine.Engine, r io.Reader, out sink.Sink, counts *tally) error {
	records, err := fhirimport.New(
		fhirimport.WithVocabulary(eng.Options().Vocabulary),
		fhirimport.WithMetrics(eng.Metrics()),
	).ImportReader(r)
	if err != nil {
		return err
	}

	batch := eng.ValidateBatch(ctx, records)
	defer batch.Release()

	a.log.Debug("bundle validated",
		slog.Int("records", batch.TotalJobs),
		slog.Int("valid", batch.ValidCount()),
		slog.Int("invalid", batch.InvalidCount()),
		slog.Int("completed", batch.CompletedJobs),
		slog.Int("failed", batch.FailedJobs),
		slog.Int("errors", batch.ErrorCount()),
		slog.Int("warnings", batch.WarningCount()),
		slog.Duration("duration", batch.TotalDuration),
	)

	for _, jr := range batch.Results {
		report := entryReport(jr.Index, records[jr.Index].ID, jr.Result, jr.Error)
		if err := write(ctx, out, report, counts); err != nil {
			return err
		}
	}
	return nil
}

func entryReport(index int, recordID string, res *ac.Result, err error) sink.Report {
	if err != nil || res == nil {
		if err == nil {
			err = errors.New("no result")
		}
		return sink.NewErrorReport(index, recordID, err, time.Now())
	}
	return sink.NewReport(index, res, time.Now())
}

func write(ctx context.Context, out sink.Sink, r sink.Report, counts *tally) error {
	counts.add(r)
	return out.Write(ctx, r)
}

// documentWriter buffers reports and writes them as one JSON document on
// Close.
type documentWriter struct {
	w       io.Writer
	reports []sink.Report
	counts  tally
}

type document struct {
	Total      int           `json:"total"`
	Valid      int           `json:"valid"`
	Invalid    int           `json:"invalid"`
	Unreadable int           `json:"unreadable"`
	Reports    []sink.Report `json:"reports"`
}

func (d *documentWriter) Write(_ context.Context, r sink.Report) error {
	d.reports = append(d.reports, r)
	d.counts.add(r)
	return nil
}

func (d *documentWriter) Close() error {
	doc := document{
		Total:      d.counts.total,
		Valid:      d.counts.valid,
		Invalid:    d.counts.invalid,
		Unreadable: d.counts.unreadable,
		Reports:    d.reports,
	}
	if doc.Reports == nil {
		doc.Reports = []sink.Report{}
	}
	enc := json.NewEncoder(d.w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
