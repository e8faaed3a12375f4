package anthrocheck

import (
	"log/slog"
	"runtime"
	"slices"

	"github.com/gofhir/anthrocheck/reference"
	"github.com/gofhir/anthrocheck/terminology"
)

// Option configures the Engine.
type Option func(*Options)

// Options holds all configuration for the Engine.
type Options struct {
	// Table holds the reference values every rule reads
	Table *reference.Table

	// Vocabulary resolves raw sex values to record.Sex
	Vocabulary *terminology.Vocabulary

	// StrictMode makes warnings invalidate a record
	StrictMode bool

	// DisabledRules are skipped; required-field cannot be disabled
	DisabledRules []RuleID

	// WorkerCount bounds concurrent validations in batch mode
	WorkerCount int

	// EnablePooling makes Validate return pooled results
	EnablePooling bool

	// Logger receives debug traces of each validation
	Logger *slog.Logger

	// Metrics collects counters when non-nil
	Metrics *Metrics
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		Table:         reference.Default(),
		Vocabulary:    terminology.Default(),
		WorkerCount:   runtime.NumCPU(),
		EnablePooling: true,
		Logger:        slog.New(slog.DiscardHandler),
	}
}

// RuleEnabled reports whether a rule category should run.
func (o *Options) RuleEnabled(rule RuleID) bool {
	if rule == RuleRequiredField {
		return true
	}
	return !slices.Contains(o.DisabledRules, rule)
}

// WithTable sets the reference table. A nil table keeps the built-in one.
func WithTable(t *reference.Table) Option {
	return func(o *Options) {
		if t != nil {
			o.Table = t
		}
	}
}

// WithVocabulary sets the sex vocabulary.
func WithVocabulary(v *terminology.Vocabulary) Option {
	return func(o *Options) {
		if v != nil {
			o.Vocabulary = v
		}
	}
}

// WithStrictMode treats warnings as errors.
func WithStrictMode(enable bool) Option {
	return func(o *Options) {
		o.StrictMode = enable
	}
}

// WithDisabledRules skips the given rule categories.
func WithDisabledRules(rules ...RuleID) Option {
	return func(o *Options) {
		o.DisabledRules = append(o.DisabledRules, rules...)
	}
}

// WithWorkerCount sets the number of workers for batch validation.
// Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithPooling enables or disables result pooling.
// Pooled results must be returned with Release().
func WithPooling(enable bool) Option {
	return func(o *Options) {
		o.EnablePooling = enable
	}
}

// WithLogger sets the logger. A nil logger keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetrics enables metric collection into m.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// StrictOptions returns options for screening pipelines that reject any
// record needing review.
func StrictOptions() []Option {
	return []Option{
		WithStrictMode(true),
	}
}
