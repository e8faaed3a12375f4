package phase

import (
	"context"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/pipeline"
	"github.com/gofhir/anthrocheck/record"
	"github.com/gofhir/anthrocheck/reference"
)

// AdultWeightPhase checks weight against the healthy BMI range widened by
// the table tolerance factors. The standard configuration runs it for adults
// only.
type AdultWeightPhase struct{}

// NewAdultWeightPhase creates a new adult weight phase.
func NewAdultWeightPhase() *AdultWeightPhase {
	return &AdultWeightPhase{}
}

// Name returns the phase name.
func (p *AdultWeightPhase) Name() string {
	return string(pipeline.PhaseIDAdultWeight)
}

// AdultWeightRange returns the accepted weight in kg for a height in
// metres: [BMImin·h²·low, BMImax·h²·high].
func AdultWeightRange(a reference.AdultWeight, m float64) (lo, hi float64) {
	h2 := m * m
	return a.HealthyBMI.Min * h2 * a.LowFactor, a.HealthyBMI.Max * h2 * a.HighFactor
}

// Validate reports an adult weight outside the accepted range.
func (p *AdultWeightPhase) Validate(_ context.Context, pctx *pipeline.Context) []ac.Finding {
	m, ok := pctx.HeightMeters()
	if !ok {
		return nil
	}
	w, ok := pctx.Record.Weight.Get()
	if !ok {
		return nil
	}

	lo, hi := AdultWeightRange(pctx.Table.Adult, m)
	if w >= lo && w <= hi {
		return nil
	}

	return one(ac.Error(ac.RuleAdultWeight).
		Messagef("weight %s kg outside adult range %s-%s kg for height %s cm",
			kg(w), kg(lo), kg(hi), cm(m*100)).
		On(record.FieldWeight, record.FieldHeight).
		Observed(w).
		Expected(lo, hi))
}

// IsAdult reports whether the record age is at or above the adult age of
// the table.
func IsAdult(pctx *pipeline.Context) bool {
	age, ok := pctx.Age()
	return ok && age >= pctx.Table.Adult.FromAge
}

// IsChild reports whether the record age is below the adult age of the
// table.
func IsChild(pctx *pipeline.Context) bool {
	age, ok := pctx.Age()
	return ok && age < pctx.Table.Adult.FromAge
}

// AdultWeightPhaseConfig returns the standard configuration.
func AdultWeightPhaseConfig() *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    pipeline.NewConditionalPhase(NewAdultWeightPhase(), IsAdult),
		Rule:     ac.RuleAdultWeight,
		Priority: pipeline.PriorityDerived,
		Enabled:  true,
	}
}
