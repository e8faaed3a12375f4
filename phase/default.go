package phase

import (
	"github.com/gofhir/anthrocheck/pipeline"
)

// Registration binds a phase configuration to its pipeline ID.
type Registration struct {
	ID     pipeline.PhaseID
	Config func() *pipeline.PhaseConfig
}

// Default lists the standard phases in evaluation order.
var Default = []Registration{
	{pipeline.PhaseIDRequired, RequiredFieldsPhaseConfig},
	{pipeline.PhaseIDAge, AgePhaseConfig},
	{pipeline.PhaseIDSex, SexPhaseConfig},
	{pipeline.PhaseIDHeight, HeightPhaseConfig},
	{pipeline.PhaseIDWeight, WeightPhaseConfig},
	{pipeline.PhaseIDHeightNorm, HeightNormPhaseConfig},
	{pipeline.PhaseIDBMI, BMIPhaseConfig},
	{pipeline.PhaseIDWaistRatio, WaistRatioPhaseConfig},
	{pipeline.PhaseIDSpanRatio, SpanRatioPhaseConfig},
	{pipeline.PhaseIDLegRatio, LegRatioPhaseConfig},
	{pipeline.PhaseIDAdultWeight, AdultWeightPhaseConfig},
	{pipeline.PhaseIDChildWeight, ChildWeightPhaseConfig},
	{pipeline.PhaseIDWaistSpan, WaistSpanPhaseConfig},
	{pipeline.PhaseIDLegSpan, LegSpanPhaseConfig},
}

// Register installs regs into p in order.
func Register(p *pipeline.Pipeline, regs []Registration) {
	for _, r := range regs {
		p.RegisterConfig(r.ID, r.Config())
	}
}
