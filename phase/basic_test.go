package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/record"
)

func TestAgePhase(t *testing.T) {
	tests := []struct {
		age   int
		valid bool
	}{
		{-1, false},
		{0, true},
		{42, true},
		{120, true},
		{121, false},
	}
	for _, tt := range tests {
		rec := adult(178, 70)
		rec.Age = record.Some(tt.age)
		got := run(&AgePhase{}, rec)
		if tt.valid {
			expectNone(t, got)
			continue
		}
		f := expectOne(t, got, ac.SeverityError, ac.RuleBasicValue)
		require.NotNil(t, f.Observed)
		assert.Equal(t, float64(tt.age), *f.Observed)
		require.NotNil(t, f.Expected)
		assert.Equal(t, 120.0, f.Expected.Max)
	}
}

func TestSexPhase(t *testing.T) {
	for _, raw := range []string{"homme", "Femme", "HOMME"} {
		rec := adult(178, 70)
		rec.Sex = record.Some(raw)
		expectNone(t, run(&SexPhase{}, rec))
	}
	for _, raw := range []string{"", "male", "x", " HOMME ", "femme\n"} {
		rec := adult(178, 70)
		rec.Sex = record.Some(raw)
		f := expectOne(t, run(&SexPhase{}, rec), ac.SeverityError, ac.RuleBasicValue)
		assert.Equal(t, []string{record.FieldSex}, f.Fields, "%q", raw)
	}
}

func TestHeightPhase(t *testing.T) {
	tests := []struct {
		height float64
		valid  bool
	}{
		{-5, false},
		{0, false},
		{0.1, true},
		{300, true},
		{300.1, false},
	}
	for _, tt := range tests {
		got := run(NewHeightPhase(), adult(tt.height, 70))
		if tt.valid {
			expectNone(t, got)
		} else {
			expectOne(t, got, ac.SeverityError, ac.RuleBasicValue)
		}
	}
}

func TestWeightPhase(t *testing.T) {
	tests := []struct {
		weight float64
		valid  bool
	}{
		{-1, false},
		{0, true},
		{500, true},
		{500.5, false},
	}
	for _, tt := range tests {
		got := run(NewWeightPhase(), adult(178, tt.weight))
		if tt.valid {
			expectNone(t, got)
		} else {
			f := expectOne(t, got, ac.SeverityError, ac.RuleBasicValue)
			assert.Equal(t, record.FieldWeight, f.Fields[0])
		}
	}
}
