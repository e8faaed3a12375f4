package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/pipeline"
	"github.com/gofhir/anthrocheck/record"
	"github.com/gofhir/anthrocheck/reference"
)

func TestAdultWeightRange(t *testing.T) {
	lo, hi := AdultWeightRange(reference.Default().Adult, 1.78)
	assert.InDelta(t, 40.55552, lo, 1e-9)
	assert.InDelta(t, 133.0728, hi, 1e-9)
}

func TestAdultWeightPhase(t *testing.T) {
	p := NewAdultWeightPhase()

	// Height 100 cm accepts [12.8, 42] kg.
	tests := []struct {
		weight float64
		valid  bool
	}{
		{12, false},
		{13, true},
		{41, true},
		{43, false},
	}
	for _, tt := range tests {
		got := run(p, adult(100, tt.weight))
		if tt.valid {
			expectNone(t, got)
			continue
		}
		f := expectOne(t, got, ac.SeverityError, ac.RuleAdultWeight)
		require.NotNil(t, f.Expected)
		assert.InDelta(t, 12.8, f.Expected.Min, 1e-9)
		assert.InDelta(t, 42, f.Expected.Max, 1e-9)
	}

	expectNone(t, run(p, adult(178, 70)))
	expectNone(t, run(p, adult(0, 70)))
	// The range squares the height.
	expectNone(t, run(p, adult(-178, 70)))
}

func TestAdultWeightPhaseConfig_AgeGate(t *testing.T) {
	p := AdultWeightPhaseConfig().Phase
	assert.Equal(t, string(pipeline.PhaseIDAdultWeight), p.Name())

	expectNone(t, run(p, child(17, "homme", 100, 80)))
	expectOne(t, run(p, child(18, "homme", 100, 80)), ac.SeverityError, ac.RuleAdultWeight)
	expectOne(t, run(p, child(90, "homme", 100, 80)), ac.SeverityError, ac.RuleAdultWeight)
	expectNone(t, run(p, record.Record{Height: record.Some(100.0), Weight: record.Some(80.0)}))
}

func TestChildWeightPhaseConfig_AgeGate(t *testing.T) {
	p := ChildWeightPhaseConfig().Phase
	assert.Equal(t, string(pipeline.PhaseIDChildWeight), p.Name())

	expectOne(t, run(p, child(17, "homme", 170, 120)), ac.SeverityWarning, ac.RuleChildWeight)
	expectNone(t, run(p, child(18, "homme", 170, 120)))
}

func TestIsAdult(t *testing.T) {
	tests := []struct {
		rec   record.Record
		adult bool
		child bool
	}{
		{child(0, "homme", 50, 3), false, true},
		{child(17, "homme", 170, 60), false, true},
		{child(18, "homme", 170, 60), true, false},
		{child(-1, "homme", 170, 60), false, true},
		{record.Record{}, false, false},
	}
	for _, tt := range tests {
		pctx := newContext(tt.rec)
		assert.Equal(t, tt.adult, IsAdult(pctx), "%v", tt.rec.Age)
		assert.Equal(t, tt.child, IsChild(pctx), "%v", tt.rec.Age)
	}
}

func TestChildWeightPhase(t *testing.T) {
	p := NewChildWeightPhase()

	tests := []struct {
		name   string
		age    int
		height float64
		weight float64
		warn   bool
	}{
		{"age 5 exact estimate", 5, 110, 18, false},
		{"age 5 at max deviation", 5, 110, 27, false},
		{"age 5 above max deviation", 5, 110, 28, true},
		{"age 5 below estimate", 5, 110, 8, true},
		{"infant", 1, 75, 10, false},
		{"infant heavy", 1, 75, 16, true},
		{"teen uses height", 14, 150, 50, false},
		{"teen heavy", 14, 150, 70, true},
		{"teen negative height", 14, -150, 50, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run(p, child(tt.age, "femme", tt.height, tt.weight))
			if !tt.warn {
				expectNone(t, got)
				return
			}
			f := expectOne(t, got, ac.SeverityWarning, ac.RuleChildWeight)
			assert.Equal(t, 5.0, f.Penalty)
		})
	}
}

func TestChildWeightPhase_Message(t *testing.T) {
	f := expectOne(t, run(NewChildWeightPhase(), child(6, "homme", 115, 40)), ac.SeverityWarning, ac.RuleChildWeight)
	assert.Equal(t, "weight 40 kg deviates 100% from expected 20 kg for age 6", f.Message)
	require.NotNil(t, f.Expected)
	assert.Equal(t, ac.Range{Min: 10, Max: 30}, *f.Expected)
}

func TestChildWeightPhase_Skipped(t *testing.T) {
	p := NewChildWeightPhase()

	// No piece covers adults.
	expectNone(t, run(p, child(18, "homme", 100, 200)))
	// Non-positive estimate: 3*(-5)+7 < 0.
	expectNone(t, run(p, child(-5, "homme", 100, 200)))
	// Teen formula needs a usable height.
	expectNone(t, run(p, child(14, "homme", 0, 200)))
}

func TestExpectedChildWeight(t *testing.T) {
	table := reference.Default()

	tests := []struct {
		age  int
		m    float64
		want float64
	}{
		{0, 0.5, 7},
		{1, 0.75, 10},
		{2, 0.9, 12},
		{11, 1.4, 30},
		{12, 1.5, 42.75},
	}
	for _, tt := range tests {
		got, ok := ExpectedChildWeight(table, tt.age, tt.m, true)
		require.True(t, ok, "age %d", tt.age)
		assert.InDelta(t, tt.want, got, 1e-9, "age %d", tt.age)
	}

	_, ok := ExpectedChildWeight(table, 18, 1.7, true)
	assert.False(t, ok, "no estimate expected at 18")
}
