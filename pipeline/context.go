// Package pipeline provides the rule evaluation pipeline infrastructure.
package pipeline

import (
	"math"
	"sync"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/record"
	"github.com/gofhir/anthrocheck/reference"
)

// Context holds all state needed while evaluating a single record.
// It is passed through all phases.
//
// Context instances are pooled. Use AcquireContext() and Release() to
// manage them properly.
type Context struct {
	// Record is the record being evaluated
	Record record.Record

	// Sex is the normalized sex, empty when the raw value is unknown
	Sex record.Sex

	// Table holds the reference values
	Table *reference.Table

	// Result accumulates findings
	Result *ac.Result
}

var contextPool = sync.Pool{
	New: func() any {
		return &Context{}
	},
}

// AcquireContext gets a Context from the pool.
// Call Release() when done to return it to the pool.
func AcquireContext() *Context {
	ctx := contextPool.Get().(*Context)
	ctx.Reset()
	return ctx
}

// Release returns the Context to the pool.
// After calling Release, the Context should not be used.
func (c *Context) Release() {
	if c == nil {
		return
	}
	contextPool.Put(c)
}

// Reset clears the context for reuse.
func (c *Context) Reset() {
	c.Record = record.Record{}
	c.Sex = ""
	c.Table = nil
	c.Result = nil
}

// Age returns the record age when present.
func (c *Context) Age() (int, bool) {
	return c.Record.Age.Get()
}

// KnownSex returns the normalized sex when the raw value was recognized.
func (c *Context) KnownSex() (record.Sex, bool) {
	return c.Sex, c.Sex.Valid()
}

// Height returns the height in centimetres for checks that divide by it.
// Out-of-range heights are returned as is; only a missing, zero or
// non-finite height reports false.
func (c *Context) Height() (float64, bool) {
	h, ok := c.Record.Height.Get()
	if !ok || h == 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, false
	}
	return h, true
}

// HeightMeters returns the height in metres under the same conditions as
// Height.
func (c *Context) HeightMeters() (float64, bool) {
	h, ok := c.Height()
	return h / 100, ok
}

// BMI returns weight / height(m)² when both are available.
func (c *Context) BMI() (float64, bool) {
	m, ok := c.HeightMeters()
	if !ok {
		return 0, false
	}
	w, ok := c.Record.Weight.Get()
	if !ok {
		return 0, false
	}
	return w / (m * m), true
}

// Ratio returns measurement / height when both are available.
func (c *Context) Ratio(measurement record.Optional[float64]) (float64, bool) {
	h, ok := c.Height()
	if !ok {
		return 0, false
	}
	v, ok := measurement.Get()
	if !ok {
		return 0, false
	}
	return v / h, true
}
