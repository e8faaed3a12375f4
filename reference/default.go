package reference

import (
	"sync"

	"github.com/gofhir/anthrocheck/record"
)

// DefaultName identifies the built-in table.
const DefaultName = "builtin"

var defaultTable = sync.OnceValue(func() *Table {
	span := Between(0.98, 1.06)
	bmiWarn := Between(13.0, 40.0)
	return &Table{
		Name: DefaultName,
		Limits: Limits{
			Age:    Between(0, 120),
			Height: Interval[float64]{Min: 0, Max: 300, OpenMin: true},
			Weight: Between(0.0, 500.0),
		},
		Heights: map[record.Sex][]HeightBand{
			record.Male: {
				{FromAge: 0, Height: Between(50.0, 90.0)},
				{FromAge: 2, Height: Between(85.0, 115.0)},
				{FromAge: 5, Height: Between(105.0, 145.0)},
				{FromAge: 10, Height: Between(130.0, 180.0)},
				{FromAge: 15, Height: Between(155.0, 200.0)},
				{FromAge: 20, Height: Between(150.0, 210.0)},
			},
			record.Female: {
				{FromAge: 0, Height: Between(48.0, 88.0)},
				{FromAge: 2, Height: Between(83.0, 112.0)},
				{FromAge: 5, Height: Between(103.0, 142.0)},
				{FromAge: 10, Height: Between(130.0, 175.0)},
				{FromAge: 15, Height: Between(150.0, 185.0)},
				{FromAge: 20, Height: Between(145.0, 195.0)},
			},
		},
		BMI: Tiered{Error: Between(10.0, 50.0), Warning: &bmiWarn},
		Ratios: Ratios{
			WaistHeight: Tiered{Error: Between(0.35, 0.55)},
			SpanHeight:  Tiered{Error: Between(0.88, 1.16), Warning: &span},
			LegHeight:   Tiered{Error: Between(0.45, 0.53)},
		},
		Adult: AdultWeight{
			FromAge:    18,
			HealthyBMI: Between(16.0, 35.0),
			LowFactor:  0.8,
			HighFactor: 1.2,
		},
		Child: ChildWeight{
			Pieces: []ChildWeightPiece{
				{BelowAge: 2, PerYear: 3, Base: 7},
				{BelowAge: 12, PerYear: 2, Base: 8},
				{BelowAge: 18, BMI: 19},
			},
			MaxDeviation: 0.5,
		},
	}
})

// Default returns the shared built-in table. Callers must not modify it;
// use Clone to derive a variant.
func Default() *Table {
	return defaultTable()
}
