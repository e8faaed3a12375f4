package anthrocheck

import (
	"sync"
)

// Result contains the outcome of validating one anthropometric record.
// Use Release() to return it to the pool when done.
type Result struct {
	// RecordID echoes the identifier of the validated record, if any
	RecordID string `json:"record_id,omitempty"`

	// Valid is true if no errors were found (warnings are allowed unless
	// Strict is set)
	Valid bool `json:"valid"`

	// Strict is true when warnings also invalidate the record
	Strict bool `json:"strict,omitempty"`

	// Score is the coherence score in [0, 100]
	Score float64 `json:"score"`

	// Findings contains all findings in evaluation order
	Findings []Finding `json:"findings"`

	// JobID is set when using batch validation to correlate results
	JobID string `json:"job_id,omitempty"`

	// mu protects concurrent access to Findings
	mu sync.Mutex
}

var resultPool = sync.Pool{
	New: func() any {
		return &Result{
			Findings: make([]Finding, 0, 8),
		}
	},
}

// AcquireResult gets a Result from the pool.
// The result starts as valid with a full score and no findings.
func AcquireResult() *Result {
	r := resultPool.Get().(*Result)
	r.Reset()
	return r
}

// Release returns the Result to the pool.
// After calling Release, the Result should not be used.
func (r *Result) Release() {
	if r == nil {
		return
	}
	if cap(r.Findings) <= 256 {
		resultPool.Put(r)
	}
}

// Reset clears the result for reuse.
func (r *Result) Reset() {
	r.RecordID = ""
	r.Valid = true
	r.Strict = false
	r.Score = MaxScore
	r.Findings = r.Findings[:0]
	r.JobID = ""
}

// AddFinding appends a finding and updates validity and score.
// This method is thread-safe.
func (r *Result) AddFinding(f Finding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.add(f)
}

// AddFindings appends multiple findings in order.
// This method is thread-safe.
func (r *Result) AddFindings(findings []Finding) {
	if len(findings) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range findings {
		r.add(f)
	}
}

func (r *Result) add(f Finding) {
	r.Findings = append(r.Findings, f)
	if f.IsError() || (r.Strict && f.IsWarning()) {
		r.Valid = false
	}
	r.Score -= f.Penalty
	if r.Score < 0 {
		r.Score = 0
	}
}

// HasErrors returns true if there are any error findings.
func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

// HasWarnings returns true if there are any warning findings.
func (r *Result) HasWarnings() bool {
	return r.WarningCount() > 0
}

// ErrorCount returns the number of error findings.
func (r *Result) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of warning findings.
func (r *Result) WarningCount() int {
	return r.count(SeverityWarning)
}

func (r *Result) count(severity Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, f := range r.Findings {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

// Errors returns all error findings.
func (r *Result) Errors() []Finding {
	return r.filter(func(f Finding) bool { return f.IsError() })
}

// Warnings returns all warning findings.
func (r *Result) Warnings() []Finding {
	return r.filter(func(f Finding) bool { return f.IsWarning() })
}

// ByRule returns the findings produced by the given rule category.
func (r *Result) ByRule(rule RuleID) []Finding {
	return r.filter(func(f Finding) bool { return f.Rule == rule })
}

func (r *Result) filter(keep func(Finding) bool) []Finding {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Finding
	for _, f := range r.Findings {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// Clone creates a copy of the result (not pooled).
func (r *Result) Clone() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := &Result{
		RecordID: r.RecordID,
		Valid:    r.Valid,
		Strict:   r.Strict,
		Score:    r.Score,
		Findings: make([]Finding, len(r.Findings)),
		JobID:    r.JobID,
	}
	copy(clone.Findings, r.Findings)
	return clone
}

// NewResult creates a new (non-pooled) result.
// Prefer AcquireResult() for better performance.
func NewResult() *Result {
	return &Result{
		Valid:    true,
		Score:    MaxScore,
		Findings: make([]Finding, 0, 8),
	}
}
