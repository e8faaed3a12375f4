package phase

import (
	"context"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/pipeline"
	"github.com/gofhir/anthrocheck/record"
)

// HeightNormPhase checks height against the age band norm for the sex.
// It is skipped when the sex is unknown or no band contains the age.
type HeightNormPhase struct{}

// NewHeightNormPhase creates a new height norm phase.
func NewHeightNormPhase() *HeightNormPhase {
	return &HeightNormPhase{}
}

// Name returns the phase name.
func (p *HeightNormPhase) Name() string {
	return string(pipeline.PhaseIDHeightNorm)
}

// Validate reports a height outside the band [min, max].
func (p *HeightNormPhase) Validate(_ context.Context, pctx *pipeline.Context) []ac.Finding {
	age, ok := pctx.Age()
	if !ok {
		return nil
	}
	sex, ok := pctx.KnownSex()
	if !ok {
		return nil
	}
	h, ok := pctx.Record.Height.Get()
	if !ok {
		return nil
	}

	band, ok := pctx.Table.HeightRange(sex, age)
	if !ok || band.Contains(h) {
		return nil
	}

	return one(ac.Error(ac.RuleHeightNorm).
		Messagef("height %s cm outside norm for %s aged %d (band %s: %s-%s cm)",
			cm(h), sex, age, pctx.Table.BandLabel(sex, age), cm(band.Min), cm(band.Max)).
		On(record.FieldHeight, record.FieldAge, record.FieldSex).
		Observed(h).
		Expected(band.Min, band.Max))
}

// HeightNormPhaseConfig returns the standard configuration.
func HeightNormPhaseConfig() *pipeline.PhaseConfig {
	return &pipeline.PhaseConfig{
		Phase:    NewHeightNormPhase(),
		Rule:     ac.RuleHeightNorm,
		Priority: pipeline.PriorityNorm,
		Enabled:  true,
	}
}
