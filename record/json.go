package record

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned when input cannot be interpreted as a record at
// all, for example a non-numeric height. It is a caller contract violation,
// not a validation finding.
var ErrMalformed = errors.New("malformed record")

// wire is the JSON shape of a record. The French keys are accepted as
// aliases for documents produced by older tooling.
type wire struct {
	ID        string            `json:"id,omitempty"`
	Age       Optional[int]     `json:"age"`
	Sex       Optional[string]  `json:"sex"`
	Height    Optional[float64] `json:"height"`
	Weight    Optional[float64] `json:"weight"`
	Waist     Optional[float64] `json:"waist"`
	ArmSpan   Optional[float64] `json:"arm_span"`
	LegLength Optional[float64] `json:"leg_length"`

	Sexe          Optional[string]  `json:"sexe"`
	Taille        Optional[float64] `json:"taille"`
	Poids         Optional[float64] `json:"poids"`
	TourTaille    Optional[float64] `json:"tour_taille"`
	Envergure     Optional[float64] `json:"envergure"`
	LongueurJambe Optional[float64] `json:"longueur_jambe"`
}

func pick[T any](primary, alias Optional[T]) Optional[T] {
	if primary.IsSet() {
		return primary
	}
	return alias
}

// UnmarshalJSON decodes a record, wrapping type mismatches in ErrMalformed.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	*r = Record{
		ID:        w.ID,
		Age:       w.Age,
		Sex:       pick(w.Sex, w.Sexe),
		Height:    pick(w.Height, w.Taille),
		Weight:    pick(w.Weight, w.Poids),
		Waist:     pick(w.Waist, w.TourTaille),
		ArmSpan:   pick(w.ArmSpan, w.Envergure),
		LegLength: pick(w.LegLength, w.LongueurJambe),
	}
	return nil
}

// MarshalJSON encodes the record with the canonical English keys.
func (r Record) MarshalJSON() ([]byte, error) {
	type out struct {
		ID        string            `json:"id,omitempty"`
		Age       Optional[int]     `json:"age"`
		Sex       Optional[string]  `json:"sex"`
		Height    Optional[float64] `json:"height"`
		Weight    Optional[float64] `json:"weight"`
		Waist     Optional[float64] `json:"waist"`
		ArmSpan   Optional[float64] `json:"arm_span"`
		LegLength Optional[float64] `json:"leg_length"`
	}
	return json.Marshal(out{
		ID:        r.ID,
		Age:       r.Age,
		Sex:       r.Sex,
		Height:    r.Height,
		Weight:    r.Weight,
		Waist:     r.Waist,
		ArmSpan:   r.ArmSpan,
		LegLength: r.LegLength,
	})
}

// Decode parses a single JSON record.
func Decode(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		if errors.Is(err, ErrMalformed) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return r, nil
}
