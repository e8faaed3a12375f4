package phase

import (
	"context"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/pipeline"
	"github.com/gofhir/anthrocheck/record"
)

// SpanBoundPhase reports a measurement larger than the arm span. It needs
// both measurements and ignores the validity of every other field.
type SpanBoundPhase struct {
	id      pipeline.PhaseID
	rule    ac.RuleID
	field   string
	measure func(record.Record) record.Optional[float64]
}

// NewWaistSpanPhase checks waist <= arm span.
func NewWaistSpanPhase() *SpanBoundPhase {
	return &SpanBoundPhase{
		id:      pipeline.PhaseIDWaistSpan,
		rule:    ac.RuleWaistSpan,
		field:   record.FieldWaist,
		measure: func(r record.Record) record.Optional[float64] { return r.Waist },
	}
}

// NewLegSpanPhase checks leg length <= arm span.
func NewLegSpanPhase() *SpanBoundPhase {
	return &SpanBoundPhase{
		id:      pipeline.PhaseIDLegSpan,
		rule:    ac.RuleLegSpan,
		field:   record.FieldLegLength,
		measure: func(r record.Record) record.Optional[float64] { return r.LegLength },
	}
}

// Name returns the phase name.
func (p *SpanBoundPhase) Name() string {
	return string(p.id)
}

// Validate reports measurement > arm span.
func (p *SpanBoundPhase) Validate(_ context.Context, pctx *pipeline.Context) []ac.Finding {
	v, ok := p.measure(pctx.Record).Get()
	if !ok {
		return nil
	}
	span, ok := pctx.Record.ArmSpan.Get()
	if !ok || v <= span {
		return nil
	}

	return one(ac.Error(p.rule).
		Messagef("%s %s cm exceeds arm span %s cm", p.field, cm(v), cm(span)).
		On(p.field, record.FieldArmSpan).
		Observed(v).
		Expected(0, span))
}

func crossConfig(p *SpanBoundPhase) *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    p,
		Rule:     p.rule,
		Priority: pipeline.PriorityCross,
		Enabled:  true,
	}
}

// WaistSpanPhaseConfig returns the standard configuration.
func WaistSpanPhaseConfig() *pipeline.PhaseConfig { return crossConfig(NewWaistSpanPhase()) }

// LegSpanPhaseConfig returns the standard configuration.
func LegSpanPhaseConfig() *pipeline.PhaseConfig { return crossConfig(NewLegSpanPhase()) }
