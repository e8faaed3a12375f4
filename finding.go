package anthrocheck

import "fmt"

// Severity represents the severity of a finding.
type Severity string

const (
	// SeverityError means the record must be rejected.
	SeverityError Severity = "error"
	// SeverityWarning means the record is accepted but flagged for review.
	SeverityWarning Severity = "warning"
)

// RuleID identifies the rule category that produced a finding.
type RuleID string

const (
	// RuleRequiredField reports a missing age, sex, height or weight.
	RuleRequiredField RuleID = "required-field"
	// RuleBasicValue reports an out-of-range age, height or weight, or an
	// unknown sex.
	RuleBasicValue RuleID = "basic-value"
	// RuleHeightNorm reports a height outside the age band norm for the sex.
	RuleHeightNorm RuleID = "height-norm"
	// RuleBMI reports an extreme or unusual BMI.
	RuleBMI RuleID = "bmi"
	// RuleBodyRatio reports an implausible waist, arm span or leg length to
	// height ratio.
	RuleBodyRatio RuleID = "body-ratio"
	// RuleAdultWeight reports an adult weight far outside the healthy range
	// for the height.
	RuleAdultWeight RuleID = "adult-weight"
	// RuleChildWeight reports a child weight far from the estimate for the
	// age and height.
	RuleChildWeight RuleID = "child-weight"
	// RuleWaistSpan reports a waist circumference above the arm span.
	RuleWaistSpan RuleID = "waist-span"
	// RuleLegSpan reports a leg length above the arm span.
	RuleLegSpan RuleID = "leg-span"
)

// Rules lists all rule categories in evaluation order.
var Rules = []RuleID{
	RuleRequiredField,
	RuleBasicValue,
	RuleHeightNorm,
	RuleBMI,
	RuleBodyRatio,
	RuleAdultWeight,
	RuleChildWeight,
	RuleWaistSpan,
	RuleLegSpan,
}

// Valid reports whether r is a known rule category.
func (r RuleID) Valid() bool {
	for _, id := range Rules {
		if id == r {
			return true
		}
	}
	return false
}

// Range is an accepted interval attached to a finding.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Finding is one reported outcome of a rule evaluation.
type Finding struct {
	// Severity of the finding (error or warning)
	Severity Severity `json:"severity"`

	// Rule is the category of the check that produced the finding
	Rule RuleID `json:"rule"`

	// Fields lists the record fields involved, e.g. ["waist", "height"]
	Fields []string `json:"fields,omitempty"`

	// Message is a human-readable description
	Message string `json:"message"`

	// Observed is the offending value, if any
	Observed *float64 `json:"observed,omitempty"`

	// Expected is the accepted range, if any
	Expected *Range `json:"expected,omitempty"`

	// Penalty is deducted from the coherence score
	Penalty float64 `json:"penalty"`
}

// IsError returns true if this is an error finding.
func (f Finding) IsError() bool {
	return f.Severity == SeverityError
}

// IsWarning returns true if this is a warning finding.
func (f Finding) IsWarning() bool {
	return f.Severity == SeverityWarning
}

// String returns a human-readable representation of the finding.
func (f Finding) String() string {
	return fmt.Sprintf("%s [%s]: %s", f.Severity, f.Rule, f.Message)
}

// FindingBuilder provides a fluent API for building findings.
type FindingBuilder struct {
	finding Finding
}

// NewFinding creates a new FindingBuilder.
func NewFinding(severity Severity, rule RuleID) *FindingBuilder {
	return &FindingBuilder{
		finding: Finding{
			Severity: severity,
			Rule:     rule,
			Penalty:  PenaltyFor(rule, severity),
		},
	}
}

// Error creates an error finding.
func Error(rule RuleID) *FindingBuilder {
	return NewFinding(SeverityError, rule)
}

// Warning creates a warning finding.
func Warning(rule RuleID) *FindingBuilder {
	return NewFinding(SeverityWarning, rule)
}

// Message sets the message.
func (b *FindingBuilder) Message(msg string) *FindingBuilder {
	b.finding.Message = msg
	return b
}

// Messagef sets a formatted message.
func (b *FindingBuilder) Messagef(format string, args ...any) *FindingBuilder {
	b.finding.Message = fmt.Sprintf(format, args...)
	return b
}

// On sets the record fields involved.
func (b *FindingBuilder) On(fields ...string) *FindingBuilder {
	b.finding.Fields = fields
	return b
}

// Observed sets the offending value.
func (b *FindingBuilder) Observed(v float64) *FindingBuilder {
	b.finding.Observed = &v
	return b
}

// Expected sets the accepted range.
func (b *FindingBuilder) Expected(min, max float64) *FindingBuilder {
	b.finding.Expected = &Range{Min: min, Max: max}
	return b
}

// Penalty overrides the default score penalty.
func (b *FindingBuilder) Penalty(p float64) *FindingBuilder {
	b.finding.Penalty = p
	return b
}

// Build returns the constructed finding.
func (b *FindingBuilder) Build() Finding {
	return b.finding
}
