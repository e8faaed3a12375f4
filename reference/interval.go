package reference

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Interval is a closed range [Min, Max]. When OpenMin is set the lower
// bound is excluded, giving (Min, Max].
type Interval[T constraints.Ordered] struct {
	Min     T    `json:"min" yaml:"min" toml:"min"`
	Max     T    `json:"max" yaml:"max" toml:"max" validate:"gtefield=Min"`
	OpenMin bool `json:"open_min,omitempty" yaml:"open_min,omitempty" toml:"open_min,omitempty"`
}

// Between returns the closed interval [min, max].
func Between[T constraints.Ordered](min, max T) Interval[T] {
	return Interval[T]{Min: min, Max: max}
}

// Contains reports whether v lies inside the interval.
func (i Interval[T]) Contains(v T) bool {
	if i.OpenMin {
		return v > i.Min && v <= i.Max
	}
	return v >= i.Min && v <= i.Max
}

// Within reports whether i is entirely inside outer.
func (i Interval[T]) Within(outer Interval[T]) bool {
	return i.Min >= outer.Min && i.Max <= outer.Max
}

// String renders the interval in mathematical notation.
func (i Interval[T]) String() string {
	open := "["
	if i.OpenMin {
		open = "("
	}
	return fmt.Sprintf("%s%v, %v]", open, i.Min, i.Max)
}

// Tiered holds an Error band and an optional narrower Warning band.
// Values outside Error are errors; values inside Error but outside Warning
// are warnings.
type Tiered struct {
	Error   Interval[float64]  `json:"error" yaml:"error" toml:"error"`
	Warning *Interval[float64] `json:"warning,omitempty" yaml:"warning,omitempty" toml:"warning,omitempty" validate:"omitempty"`
}

// Level classifies v against the tiers. It returns LevelError first, so a
// value outside the error band never also yields LevelWarning.
func (t Tiered) Level(v float64) Level {
	if !t.Error.Contains(v) {
		return LevelError
	}
	if t.Warning != nil && !t.Warning.Contains(v) {
		return LevelWarning
	}
	return LevelOK
}

// Level is the outcome of classifying a value against a Tiered band.
type Level int

const (
	LevelOK Level = iota
	LevelWarning
	LevelError
)
