package phase

import (
	"context"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/pipeline"
	"github.com/gofhir/anthrocheck/record"
	"github.com/gofhir/anthrocheck/reference"
)

// RatioPhase checks an optional measurement divided by height against a
// tiered band. An absent measurement emits nothing.
type RatioPhase struct {
	id      pipeline.PhaseID
	field   string
	label   string
	measure func(record.Record) record.Optional[float64]
	tier    func(*reference.Table) reference.Tiered
}

// NewWaistRatioPhase checks waist / height.
func NewWaistRatioPhase() *RatioPhase {
	return &RatioPhase{
		id:      pipeline.PhaseIDWaistRatio,
		field:   record.FieldWaist,
		label:   "waist/height",
		measure: func(r record.Record) record.Optional[float64] { return r.Waist },
		tier:    func(t *reference.Table) reference.Tiered { return t.Ratios.WaistHeight },
	}
}

// NewSpanRatioPhase checks arm span / height.
func NewSpanRatioPhase() *RatioPhase {
	return &RatioPhase{
		id:      pipeline.PhaseIDSpanRatio,
		field:   record.FieldArmSpan,
		label:   "arm span/height",
		measure: func(r record.Record) record.Optional[float64] { return r.ArmSpan },
		tier:    func(t *reference.Table) reference.Tiered { return t.Ratios.SpanHeight },
	}
}

// NewLegRatioPhase checks leg length / height.
func NewLegRatioPhase() *RatioPhase {
	return &RatioPhase{
		id:      pipeline.PhaseIDLegRatio,
		field:   record.FieldLegLength,
		label:   "leg length/height",
		measure: func(r record.Record) record.Optional[float64] { return r.LegLength },
		tier:    func(t *reference.Table) reference.Tiered { return t.Ratios.LegHeight },
	}
}

// Name returns the phase name.
func (p *RatioPhase) Name() string {
	return string(p.id)
}

// Validate reports a ratio outside the error band, or else outside the
// warning band when one is defined.
func (p *RatioPhase) Validate(_ context.Context, pctx *pipeline.Context) []ac.Finding {
	ratio, ok := pctx.Ratio(p.measure(pctx.Record))
	if !ok {
		return nil
	}

	tier := p.tier(pctx.Table)
	b := tiered(ac.RuleBodyRatio, tier, ratio)
	if b == nil {
		return nil
	}

	verb, band := "outside", tier.Error
	if tier.Level(ratio) == reference.LevelWarning {
		verb, band = "unusual, expected", *tier.Warning
	}
	return one(b.
		Messagef("%s ratio %s %s %s", p.label, ac.FormatValue(ratio, 3), verb, band).
		On(p.field, record.FieldHeight))
}

func ratioConfig(phase pipeline.Phase) *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    phase,
		Rule:     ac.RuleBodyRatio,
		Priority: pipeline.PriorityDerived,
		Enabled:  true,
	}
}

// WaistRatioPhaseConfig returns the standard configuration.
func WaistRatioPhaseConfig() *pipeline.PhaseConfig { return ratioConfig(NewWaistRatioPhase()) }

// SpanRatioPhaseConfig returns the standard configuration.
func SpanRatioPhaseConfig() *pipeline.PhaseConfig { return ratioConfig(NewSpanRatioPhase()) }

// LegRatioPhaseConfig returns the standard configuration.
func LegRatioPhaseConfig() *pipeline.PhaseConfig { return ratioConfig(NewLegRatioPhase()) }
