package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/record"
)

func withWaist(r record.Record, v float64) record.Record {
	r.Waist = record.Some(v)
	return r
}

func withSpan(r record.Record, v float64) record.Record {
	r.ArmSpan = record.Some(v)
	return r
}

func withLeg(r record.Record, v float64) record.Record {
	r.LegLength = record.Some(v)
	return r
}

func TestWaistRatioPhase(t *testing.T) {
	p := NewWaistRatioPhase()

	// waist/height = 100/180 = 0.556
	f := expectOne(t, run(p, withWaist(adult(180, 75), 100)), ac.SeverityError, ac.RuleBodyRatio)
	assert.Equal(t, "waist/height ratio 0.556 outside [0.35, 0.55]", f.Message)
	assert.Equal(t, []string{record.FieldWaist, record.FieldHeight}, f.Fields)

	expectNone(t, run(p, withWaist(adult(100, 20), 55)))
	expectNone(t, run(p, withWaist(adult(100, 20), 35)))
	expectOne(t, run(p, withWaist(adult(100, 20), 34)), ac.SeverityError, ac.RuleBodyRatio)
}

func TestSpanRatioPhase(t *testing.T) {
	p := NewSpanRatioPhase()

	tests := []struct {
		span     float64
		severity ac.Severity
	}{
		{87, ac.SeverityError},
		{88, ac.SeverityWarning},
		{97, ac.SeverityWarning},
		{98, ""},
		{100, ""},
		{106, ""},
		{107, ac.SeverityWarning},
		{116, ac.SeverityWarning},
		{117, ac.SeverityError},
	}
	for _, tt := range tests {
		got := run(p, withSpan(adult(100, 20), tt.span))
		if tt.severity == "" {
			expectNone(t, got)
			continue
		}
		f := expectOne(t, got, tt.severity, ac.RuleBodyRatio)
		if tt.severity == ac.SeverityWarning {
			assert.Equal(t, 3.0, f.Penalty, "span %v", tt.span)
		}
	}
}

func TestLegRatioPhase(t *testing.T) {
	p := NewLegRatioPhase()

	expectOne(t, run(p, withLeg(adult(100, 20), 44)), ac.SeverityError, ac.RuleBodyRatio)
	expectNone(t, run(p, withLeg(adult(100, 20), 45)))
	expectNone(t, run(p, withLeg(adult(100, 20), 53)))
	expectOne(t, run(p, withLeg(adult(100, 20), 54)), ac.SeverityError, ac.RuleBodyRatio)
}

func TestRatioPhases_Absent(t *testing.T) {
	for _, p := range []*RatioPhase{NewWaistRatioPhase(), NewSpanRatioPhase(), NewLegRatioPhase()} {
		expectNone(t, run(p, adult(178, 70)))
	}
}

func TestRatioPhases_ZeroHeight(t *testing.T) {
	rec := withLeg(withSpan(withWaist(adult(0, 70), 80), 170), 80)
	for _, p := range []*RatioPhase{NewWaistRatioPhase(), NewSpanRatioPhase(), NewLegRatioPhase()} {
		expectNone(t, run(p, rec))
	}
}

func TestRatioPhases_NegativeHeight(t *testing.T) {
	f := expectOne(t, run(NewWaistRatioPhase(), withWaist(adult(-180, 70), 90)), ac.SeverityError, ac.RuleBodyRatio)
	assert.Equal(t, "waist/height ratio -0.5 outside [0.35, 0.55]", f.Message)
	require.NotNil(t, f.Observed)
	assert.Equal(t, -0.5, *f.Observed)

	expectOne(t, run(NewSpanRatioPhase(), withSpan(adult(-100, 20), 100)), ac.SeverityError, ac.RuleBodyRatio)
	expectOne(t, run(NewLegRatioPhase(), withLeg(adult(-100, 20), 50)), ac.SeverityError, ac.RuleBodyRatio)
}
