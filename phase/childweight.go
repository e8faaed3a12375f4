package phase

import (
	"context"
	"math"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/pipeline"
	"github.com/gofhir/anthrocheck/record"
	"github.com/gofhir/anthrocheck/reference"
)

// ChildWeightPhase compares weight with a piecewise estimate by age. It only
// ever warns. The standard configuration runs it for children only.
type ChildWeightPhase struct{}

// NewChildWeightPhase creates a new child weight phase.
func NewChildWeightPhase() *ChildWeightPhase {
	return &ChildWeightPhase{}
}

// Name returns the phase name.
func (p *ChildWeightPhase) Name() string {
	return string(pipeline.PhaseIDChildWeight)
}

// ExpectedChildWeight returns the estimated weight in kg, or false when no
// piece covers age or the piece needs a height that is not available.
func ExpectedChildWeight(t *reference.Table, age int, heightM float64, heightOK bool) (float64, bool) {
	piece, ok := t.ChildPiece(age)
	if !ok {
		return 0, false
	}
	if piece.BMI > 0 {
		if !heightOK {
			return 0, false
		}
		return piece.BMI * heightM * heightM, true
	}
	return piece.PerYear*float64(age) + piece.Base, true
}

// Validate warns when |weight - expected| / expected exceeds the table
// deviation. A non-positive estimate skips the check.
func (p *ChildWeightPhase) Validate(_ context.Context, pctx *pipeline.Context) []ac.Finding {
	age, ok := pctx.Age()
	if !ok {
		return nil
	}
	w, ok := pctx.Record.Weight.Get()
	if !ok {
		return nil
	}

	m, hok := pctx.HeightMeters()
	expected, ok := ExpectedChildWeight(pctx.Table, age, m, hok)
	if !ok || expected <= 0 {
		return nil
	}

	maxDev := pctx.Table.Child.MaxDeviation
	deviation := math.Abs(w-expected) / expected
	if deviation <= maxDev {
		return nil
	}

	return one(ac.Warning(ac.RuleChildWeight).
		Messagef("weight %s kg deviates %s%% from expected %s kg for age %d",
			kg(w), ac.FormatValue(deviation*100, 0), kg(expected), age).
		On(record.FieldWeight, record.FieldAge).
		Observed(w).
		Expected(expected*(1-maxDev), expected*(1+maxDev)))
}

// ChildWeightPhaseConfig returns the standard configuration.
func ChildWeightPhaseConfig() *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    pipeline.NewConditionalPhase(NewChildWeightPhase(), IsChild),
		Rule:     ac.RuleChildWeight,
		Priority: pipeline.PriorityDerived,
		Enabled:  true,
	}
}
