package phase

import (
	"context"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/pipeline"
	"github.com/gofhir/anthrocheck/record"
	"github.com/gofhir/anthrocheck/reference"
)

// AgePhase checks the age against the table limits.
type AgePhase struct{}

// Name returns the phase name.
func (p *AgePhase) Name() string {
	return string(pipeline.PhaseIDAge)
}

// Validate reports an age outside the accepted range.
func (p *AgePhase) Validate(_ context.Context, pctx *pipeline.Context) []ac.Finding {
	age, ok := pctx.Age()
	if !ok {
		return nil
	}
	lim := pctx.Table.Limits.Age
	if lim.Contains(age) {
		return nil
	}
	return one(ac.Error(ac.RuleBasicValue).
		Messagef("age out of range: %d (expected %s)", age, lim).
		On(record.FieldAge).
		Observed(float64(age)).
		Expected(float64(lim.Min), float64(lim.Max)))
}

// SexPhase checks that the raw sex value was recognized. Normalization is
// done before the pipeline runs and stored in the Context.
type SexPhase struct{}

// Name returns the phase name.
func (p *SexPhase) Name() string {
	return string(pipeline.PhaseIDSex)
}

// Validate reports an unrecognized sex.
func (p *SexPhase) Validate(_ context.Context, pctx *pipeline.Context) []ac.Finding {
	raw, ok := pctx.Record.Sex.Get()
	if !ok {
		return nil
	}
	if _, known := pctx.KnownSex(); known {
		return nil
	}
	return one(ac.Error(ac.RuleBasicValue).
		Messagef("unknown sex: %q (expected %s or %s)", raw, record.Male, record.Female).
		On(record.FieldSex))
}

// MeasurePhase checks a required measurement against a table limit.
type MeasurePhase struct {
	id    pipeline.PhaseID
	field string
	unit  string
	value func(record.Record) record.Optional[float64]
	limit func(*reference.Table) reference.Interval[float64]
}

// NewHeightPhase checks height against Limits.Height.
func NewHeightPhase() *MeasurePhase {
	return &MeasurePhase{
		id:    pipeline.PhaseIDHeight,
		field: record.FieldHeight,
		unit:  "cm",
		value: func(r record.Record) record.Optional[float64] { return r.Height },
		limit: func(t *reference.Table) reference.Interval[float64] { return t.Limits.Height },
	}
}

// NewWeightPhase checks weight against Limits.Weight.
func NewWeightPhase() *MeasurePhase {
	return &MeasurePhase{
		id:    pipeline.PhaseIDWeight,
		field: record.FieldWeight,
		unit:  "kg",
		value: func(r record.Record) record.Optional[float64] { return r.Weight },
		limit: func(t *reference.Table) reference.Interval[float64] { return t.Limits.Weight },
	}
}

// Name returns the phase name.
func (p *MeasurePhase) Name() string {
	return string(p.id)
}

// Validate reports a measurement outside the accepted range.
func (p *MeasurePhase) Validate(_ context.Context, pctx *pipeline.Context) []ac.Finding {
	v, ok := p.value(pctx.Record).Get()
	if !ok {
		return nil
	}
	lim := p.limit(pctx.Table)
	if lim.Contains(v) {
		return nil
	}
	return one(ac.Error(ac.RuleBasicValue).
		Messagef("%s out of range: %s %s (expected %s %s)", p.field, ac.FormatValue(v, 2), p.unit, lim, p.unit).
		On(p.field).
		Observed(v).
		Expected(lim.Min, lim.Max))
}

func basicConfig(phase pipeline.Phase) *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    phase,
		Rule:     ac.RuleBasicValue,
		Priority: pipeline.PriorityBasic,
		Enabled:  true,
	}
}

// AgePhaseConfig returns the standard configuration.
func AgePhaseConfig() *pipeline.PhaseConfig { return basicConfig(&AgePhase{}) }

// SexPhaseConfig returns the standard configuration.
func SexPhaseConfig() *pipeline.PhaseConfig { return basicConfig(&SexPhase{}) }

// HeightPhaseConfig returns the standard configuration.
func HeightPhaseConfig() *pipeline.PhaseConfig { return basicConfig(NewHeightPhase()) }

// WeightPhaseConfig returns the standard configuration.
func WeightPhaseConfig() *pipeline.PhaseConfig { return basicConfig(NewWeightPhase()) }
