package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/record"
)

func TestBMIPhase(t *testing.T) {
	// Height 100 cm gives BMI == weight.
	tests := []struct {
		weight   float64
		severity ac.Severity
	}{
		{9, ac.SeverityError},
		{10, ac.SeverityWarning},
		{12, ac.SeverityWarning},
		{13, ""},
		{25, ""},
		{40, ""},
		{45, ac.SeverityWarning},
		{50, ac.SeverityWarning},
		{51, ac.SeverityError},
	}
	for _, tt := range tests {
		got := run(NewBMIPhase(), adult(100, tt.weight))
		if tt.severity == "" {
			expectNone(t, got)
			continue
		}
		f := expectOne(t, got, tt.severity, ac.RuleBMI)
		require.NotNil(t, f.Observed)
		assert.Equal(t, tt.weight, *f.Observed)
	}
}

func TestBMIPhase_ErrorSubsumesWarning(t *testing.T) {
	got := run(NewBMIPhase(), child(8, "femme", 180, 30))
	f := expectOne(t, got, ac.SeverityError, ac.RuleBMI)

	assert.Equal(t, "BMI extreme: 9.3 (weight 30 kg, height 180 cm; expected 10-50)", f.Message)
	require.NotNil(t, f.Expected)
	assert.Equal(t, ac.Range{Min: 10, Max: 50}, *f.Expected)
}

func TestBMIPhase_Warning(t *testing.T) {
	f := expectOne(t, run(NewBMIPhase(), adult(100, 45)), ac.SeverityWarning, ac.RuleBMI)
	require.NotNil(t, f.Expected)
	assert.Equal(t, ac.Range{Min: 13, Max: 40}, *f.Expected)
	assert.Equal(t, 5.0, f.Penalty)
}

func TestBMIPhase_Skipped(t *testing.T) {
	expectNone(t, run(NewBMIPhase(), adult(0, 70)))
	expectNone(t, run(NewBMIPhase(), record.Record{Height: record.Some(170.0)}))
}

func TestBMIPhase_NegativeHeight(t *testing.T) {
	// BMI squares the height, so -100 cm behaves like 100 cm.
	expectNone(t, run(NewBMIPhase(), adult(-170, 70)))
	f := expectOne(t, run(NewBMIPhase(), adult(-100, 60)), ac.SeverityError, ac.RuleBMI)
	require.NotNil(t, f.Observed)
	assert.Equal(t, 60.0, *f.Observed)
}

func TestBMIPhase_RawValues(t *testing.T) {
	// Out-of-range weight is still evaluated.
	expectOne(t, run(NewBMIPhase(), adult(170, 600)), ac.SeverityError, ac.RuleBMI)
}
