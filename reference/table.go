package reference

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gofhir/anthrocheck/record"
)

// ErrInvalidTable is returned when a table fails validation.
var ErrInvalidTable = errors.New("invalid reference table")

// HeightBand gives the accepted height range from FromAge (inclusive) up to
// the next band's FromAge (exclusive). The last band is unbounded.
type HeightBand struct {
	FromAge int               `json:"from_age" yaml:"from_age" toml:"from_age" validate:"gte=0"`
	Height  Interval[float64] `json:"height" yaml:"height" toml:"height"`
}

// Limits are the basic range checks of the gating phase.
type Limits struct {
	Age    Interval[int]     `json:"age" yaml:"age" toml:"age"`
	Height Interval[float64] `json:"height" yaml:"height" toml:"height"`
	Weight Interval[float64] `json:"weight" yaml:"weight" toml:"weight"`
}

// Ratios bounds each optional measurement against height.
type Ratios struct {
	WaistHeight Tiered `json:"waist_height" yaml:"waist_height" toml:"waist_height"`
	SpanHeight  Tiered `json:"span_height" yaml:"span_height" toml:"span_height"`
	LegHeight   Tiered `json:"leg_height" yaml:"leg_height" toml:"leg_height"`
}

// AdultWeight derives accepted adult weights from a healthy BMI range
// widened by LowFactor and HighFactor.
type AdultWeight struct {
	FromAge    int               `json:"from_age" yaml:"from_age" toml:"from_age" validate:"gte=0"`
	HealthyBMI Interval[float64] `json:"healthy_bmi" yaml:"healthy_bmi" toml:"healthy_bmi"`
	LowFactor  float64           `json:"low_factor" yaml:"low_factor" toml:"low_factor" validate:"gt=0"`
	HighFactor float64           `json:"high_factor" yaml:"high_factor" toml:"high_factor" validate:"gt=0"`
}

// ChildWeightPiece estimates weight for ages below BelowAge. When BMI is
// non-zero the estimate is BMI·h² (h in metres), otherwise
// PerYear·age + Base.
type ChildWeightPiece struct {
	BelowAge int     `json:"below_age" yaml:"below_age" toml:"below_age" validate:"gt=0"`
	PerYear  float64 `json:"per_year,omitempty" yaml:"per_year,omitempty" toml:"per_year,omitempty"`
	Base     float64 `json:"base,omitempty" yaml:"base,omitempty" toml:"base,omitempty"`
	BMI      float64 `json:"bmi,omitempty" yaml:"bmi,omitempty" toml:"bmi,omitempty" validate:"gte=0"`
}

// ChildWeight is the piecewise child weight estimate.
type ChildWeight struct {
	Pieces       []ChildWeightPiece `json:"pieces" yaml:"pieces" toml:"pieces" validate:"min=1,dive"`
	MaxDeviation float64            `json:"max_deviation" yaml:"max_deviation" toml:"max_deviation" validate:"gt=0"`
}

// Table is a complete set of reference data.
type Table struct {
	Name    string                      `json:"name" yaml:"name" toml:"name"`
	Limits  Limits                      `json:"limits" yaml:"limits" toml:"limits"`
	Heights map[record.Sex][]HeightBand `json:"heights" yaml:"heights" toml:"heights" validate:"len=2,dive,keys,oneof=homme femme,endkeys,min=1,dive"`
	BMI     Tiered                      `json:"bmi" yaml:"bmi" toml:"bmi"`
	Ratios  Ratios                      `json:"ratios" yaml:"ratios" toml:"ratios"`
	Adult   AdultWeight                 `json:"adult_weight" yaml:"adult_weight" toml:"adult_weight"`
	Child   ChildWeight                 `json:"child_weight" yaml:"child_weight" toml:"child_weight"`
}

// HeightRange returns the accepted height interval for a normalized sex and
// age. It reports false for an unknown sex or an age below the first band.
func (t *Table) HeightRange(sex record.Sex, age int) (Interval[float64], bool) {
	bands := t.Heights[sex]
	// First band whose lower boundary is above age; the band before it
	// contains age.
	i := sort.Search(len(bands), func(i int) bool { return bands[i].FromAge > age })
	if i == 0 {
		return Interval[float64]{}, false
	}
	return bands[i-1].Height, true
}

// BandLabel renders the age band containing age, e.g. "5-10" or "20+".
func (t *Table) BandLabel(sex record.Sex, age int) string {
	bands := t.Heights[sex]
	i := sort.Search(len(bands), func(i int) bool { return bands[i].FromAge > age })
	switch {
	case i == 0:
		return ""
	case i == len(bands):
		return fmt.Sprintf("%d+", bands[i-1].FromAge)
	default:
		return fmt.Sprintf("%d-%d", bands[i-1].FromAge, bands[i].FromAge)
	}
}

// ChildPiece returns the estimation piece for age, or false when age is at
// or above the last piece.
func (t *Table) ChildPiece(age int) (ChildWeightPiece, bool) {
	pieces := t.Child.Pieces
	i := sort.Search(len(pieces), func(i int) bool { return age < pieces[i].BelowAge })
	if i == len(pieces) {
		return ChildWeightPiece{}, false
	}
	return pieces[i], true
}

// Clone returns a deep copy that may be modified freely.
func (t *Table) Clone() *Table {
	c := *t
	c.Heights = make(map[record.Sex][]HeightBand, len(t.Heights))
	for sex, bands := range t.Heights {
		c.Heights[sex] = append([]HeightBand(nil), bands...)
	}
	c.BMI = t.BMI.clone()
	c.Ratios = Ratios{
		WaistHeight: t.Ratios.WaistHeight.clone(),
		SpanHeight:  t.Ratios.SpanHeight.clone(),
		LegHeight:   t.Ratios.LegHeight.clone(),
	}
	c.Child.Pieces = append([]ChildWeightPiece(nil), t.Child.Pieces...)
	return &c
}

func (t Tiered) clone() Tiered {
	if t.Warning != nil {
		w := *t.Warning
		t.Warning = &w
	}
	return t
}

// Validate checks the structural tags and the invariants that tags cannot
// express: band ordering, nested tiers and piece ordering.
func (t *Table) Validate() error {
	if err := structValidator().Struct(t); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	var errs []error
	for _, sex := range record.Sexes {
		bands, ok := t.Heights[sex]
		if !ok {
			errs = append(errs, fmt.Errorf("heights: missing sex %q", sex))
			continue
		}
		if bands[0].FromAge != 0 {
			errs = append(errs, fmt.Errorf("heights.%s: first band starts at %d, want 0", sex, bands[0].FromAge))
		}
		for i := 1; i < len(bands); i++ {
			if bands[i].FromAge <= bands[i-1].FromAge {
				errs = append(errs, fmt.Errorf("heights.%s[%d]: from_age %d not above %d", sex, i, bands[i].FromAge, bands[i-1].FromAge))
			}
		}
	}

	tiers := map[string]Tiered{
		"bmi":                 t.BMI,
		"ratios.waist_height": t.Ratios.WaistHeight,
		"ratios.span_height":  t.Ratios.SpanHeight,
		"ratios.leg_height":   t.Ratios.LegHeight,
	}
	for name, tier := range tiers {
		if tier.Warning != nil && !tier.Warning.Within(tier.Error) {
			errs = append(errs, fmt.Errorf("%s: warning band %s not inside error band %s", name, tier.Warning, tier.Error))
		}
	}

	pieces := t.Child.Pieces
	for i := 1; i < len(pieces); i++ {
		if pieces[i].BelowAge <= pieces[i-1].BelowAge {
			errs = append(errs, fmt.Errorf("child_weight.pieces[%d]: below_age %d not above %d", i, pieces[i].BelowAge, pieces[i-1].BelowAge))
		}
	}
	if n := len(pieces); n > 0 && pieces[n-1].BelowAge > t.Adult.FromAge {
		errs = append(errs, fmt.Errorf("child_weight: last piece ends at %d, after adult age %d", pieces[n-1].BelowAge, t.Adult.FromAge))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTable, errors.Join(errs...))
	}
	return nil
}
