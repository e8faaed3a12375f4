package phase

import (
	"context"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/pipeline"
)

// RequiredFieldsPhase reports each missing required field. Any finding
// halts the pipeline.
type RequiredFieldsPhase struct{}

// NewRequiredFieldsPhase creates a new required fields phase.
func NewRequiredFieldsPhase() *RequiredFieldsPhase {
	return &RequiredFieldsPhase{}
}

// Name returns the phase name.
func (p *RequiredFieldsPhase) Name() string {
	return string(pipeline.PhaseIDRequired)
}

// Validate reports age, sex, height and weight, in that order, when absent.
func (p *RequiredFieldsPhase) Validate(_ context.Context, pctx *pipeline.Context) []ac.Finding {
	missing := pctx.Record.Missing()
	if len(missing) == 0 {
		return nil
	}

	findings := make([]ac.Finding, 0, len(missing))
	for _, field := range missing {
		findings = append(findings, ac.Error(ac.RuleRequiredField).
			Messagef("missing field: %s", field).
			On(field).
			Build())
	}
	return findings
}

// RequiredFieldsPhaseConfig returns the standard configuration.
func RequiredFieldsPhaseConfig() *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    NewRequiredFieldsPhase(),
		Rule:     ac.RuleRequiredField,
		Priority: pipeline.PriorityGate,
		Required: true,
		Halt:     true,
		Enabled:  true,
	}
}
