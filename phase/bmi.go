package phase

import (
	"context"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/pipeline"
	"github.com/gofhir/anthrocheck/record"
	"github.com/gofhir/anthrocheck/reference"
)

// BMIPhase checks weight / height(m)² against the BMI tiers.
type BMIPhase struct{}

// NewBMIPhase creates a new BMI phase.
func NewBMIPhase() *BMIPhase {
	return &BMIPhase{}
}

// Name returns the phase name.
func (p *BMIPhase) Name() string {
	return string(pipeline.PhaseIDBMI)
}

// Validate reports an extreme BMI as an error, or else an unusual one as a
// warning.
func (p *BMIPhase) Validate(_ context.Context, pctx *pipeline.Context) []ac.Finding {
	bmi, ok := pctx.BMI()
	if !ok {
		return nil
	}

	tier := pctx.Table.BMI
	b := tiered(ac.RuleBMI, tier, bmi)
	if b == nil {
		return nil
	}

	label, band := "extreme", tier.Error
	if tier.Level(bmi) == reference.LevelWarning {
		label, band = "unusual", *tier.Warning
	}
	w, _ := pctx.Record.Weight.Get()
	h, _ := pctx.Height()
	return one(b.
		Messagef("BMI %s: %s (weight %s kg, height %s cm; expected %s-%s)",
			label, ac.FormatValue(bmi, 1), kg(w), cm(h), ac.FormatValue(band.Min, 1), ac.FormatValue(band.Max, 1)).
		On(record.FieldWeight, record.FieldHeight))
}

// BMIPhaseConfig returns the standard configuration.
func BMIPhaseConfig() *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    NewBMIPhase(),
		Rule:     ac.RuleBMI,
		Priority: pipeline.PriorityDerived,
		Enabled:  true,
	}
}
