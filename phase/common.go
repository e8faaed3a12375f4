package phase

import (
	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/reference"
)

// tiered starts a finding for v classified against tier, or returns nil
// when v is acceptable. The error band is tested first so a value never
// yields both severities.
func tiered(rule ac.RuleID, tier reference.Tiered, v float64) *ac.FindingBuilder {
	switch tier.Level(v) {
	case reference.LevelError:
		return ac.Error(rule).Observed(v).Expected(tier.Error.Min, tier.Error.Max)
	case reference.LevelWarning:
		return ac.Warning(rule).Observed(v).Expected(tier.Warning.Min, tier.Warning.Max)
	default:
		return nil
	}
}

// one wraps a single finding, or none when b is nil.
func one(b *ac.FindingBuilder) []ac.Finding {
	if b == nil {
		return nil
	}
	return []ac.Finding{b.Build()}
}

func cm(v float64) string {
	return ac.FormatValue(v, 1)
}

func kg(v float64) string {
	return ac.FormatValue(v, 1)
}
