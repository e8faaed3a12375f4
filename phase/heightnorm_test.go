package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/record"
)

func child(age int, sex string, height, weight float64) record.Record {
	return record.Record{
		Age:    record.Some(age),
		Sex:    record.Some(sex),
		Height: record.Some(height),
		Weight: record.Some(weight),
	}
}

func TestHeightNormPhase(t *testing.T) {
	tests := []struct {
		name   string
		rec    record.Record
		valid  bool
		minCm  float64
		maxCm  float64
		band   string
	}{
		{"adult in band", adult(178, 70), true, 0, 0, ""},
		{"girl too tall", child(8, "femme", 180, 30), false, 103, 142, "5-10"},
		{"band lower bound inclusive", child(2, "homme", 85, 12), true, 0, 0, ""},
		{"band lower bound below", child(2, "homme", 84, 12), false, 85, 115, "2-5"},
		{"band upper bound inclusive", child(4, "femme", 112, 16), true, 0, 0, ""},
		{"last band unbounded", child(120, "femme", 140, 50), false, 145, 195, "20+"},
		{"infant", child(0, "homme", 50, 3.5), true, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run(NewHeightNormPhase(), tt.rec)
			if tt.valid {
				expectNone(t, got)
				return
			}
			f := expectOne(t, got, ac.SeverityError, ac.RuleHeightNorm)
			require.NotNil(t, f.Expected)
			assert.Equal(t, ac.Range{Min: tt.minCm, Max: tt.maxCm}, *f.Expected)
			assert.Contains(t, f.Message, "band "+tt.band+":")
		})
	}
}

func TestHeightNormPhase_Message(t *testing.T) {
	f := expectOne(t, run(NewHeightNormPhase(), child(8, "femme", 180, 30)), ac.SeverityError, ac.RuleHeightNorm)
	assert.Equal(t, "height 180 cm outside norm for femme aged 8 (band 5-10: 103-142 cm)", f.Message)
}

func TestHeightNormPhase_Skipped(t *testing.T) {
	expectNone(t, run(NewHeightNormPhase(), child(25, "autre", 300, 70)))
	expectNone(t, run(NewHeightNormPhase(), child(-3, "homme", 300, 70)))
	expectNone(t, run(NewHeightNormPhase(), record.Record{Sex: record.Some("homme"), Height: record.Some(300.0)}))
}

func TestHeightNormPhase_RawValues(t *testing.T) {
	// Out-of-range age and height are still compared to the last band.
	expectOne(t, run(NewHeightNormPhase(), child(130, "homme", 0, 70)), ac.SeverityError, ac.RuleHeightNorm)
	expectOne(t, run(NewHeightNormPhase(), adult(-180, 70)), ac.SeverityError, ac.RuleHeightNorm)
}
