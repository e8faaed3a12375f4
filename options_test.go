package anthrocheck

import (
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gofhir/anthrocheck/reference"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Same(t, reference.Default(), opts.Table)
	assert.NotNil(t, opts.Vocabulary)
	assert.False(t, opts.StrictMode)
	assert.Equal(t, runtime.NumCPU(), opts.WorkerCount)
	assert.True(t, opts.EnablePooling)
	assert.NotNil(t, opts.Logger)
	assert.Nil(t, opts.Metrics)
}

func TestOptions_Apply(t *testing.T) {
	table := reference.Default().Clone()
	table.Name = "custom"
	m := NewMetrics()
	l := slog.New(slog.DiscardHandler)

	opts := DefaultOptions()
	for _, opt := range []Option{
		WithTable(table),
		WithStrictMode(true),
		WithWorkerCount(3),
		WithPooling(false),
		WithLogger(l),
		WithMetrics(m),
		WithDisabledRules(RuleChildWeight),
	} {
		opt(opts)
	}

	assert.Equal(t, "custom", opts.Table.Name)
	assert.True(t, opts.StrictMode)
	assert.Equal(t, 3, opts.WorkerCount)
	assert.False(t, opts.EnablePooling)
	assert.Same(t, l, opts.Logger)
	assert.Same(t, m, opts.Metrics)
	assert.Equal(t, []RuleID{RuleChildWeight}, opts.DisabledRules)
}

func TestOptions_IgnoreInvalid(t *testing.T) {
	opts := DefaultOptions()
	WithWorkerCount(0)(opts)
	WithWorkerCount(-1)(opts)
	WithTable(nil)(opts)
	WithLogger(nil)(opts)

	assert.Equal(t, runtime.NumCPU(), opts.WorkerCount)
	assert.NotNil(t, opts.Table)
	assert.NotNil(t, opts.Logger)
}

func TestOptions_RuleEnabled(t *testing.T) {
	opts := DefaultOptions()
	WithDisabledRules(RuleChildWeight, RuleRequiredField)(opts)

	assert.False(t, opts.RuleEnabled(RuleChildWeight))
	assert.True(t, opts.RuleEnabled(RuleRequiredField), "required-field cannot be disabled")
	assert.True(t, opts.RuleEnabled(RuleBMI))
}

func TestStrictOptions(t *testing.T) {
	opts := DefaultOptions()
	for _, opt := range StrictOptions() {
		opt(opts)
	}
	assert.True(t, opts.StrictMode)
}
