package record

// Sex is the normalized sex of a record.
type Sex string

// The two enumerated sex values.
const (
	Male   Sex = "homme"
	Female Sex = "femme"
)

// Sexes lists the enumerated values in table order.
var Sexes = []Sex{Male, Female}

// Valid reports whether s is one of the enumerated values.
func (s Sex) Valid() bool {
	return s == Male || s == Female
}

// Field names as used in findings and JSON documents.
const (
	FieldAge       = "age"
	FieldSex       = "sex"
	FieldHeight    = "height"
	FieldWeight    = "weight"
	FieldWaist     = "waist"
	FieldArmSpan   = "arm_span"
	FieldLegLength = "leg_length"
)

// RequiredFields lists the fields gating all further evaluation, in the
// order they are checked.
var RequiredFields = []string{FieldAge, FieldSex, FieldHeight, FieldWeight}

// Record is one anthropometric measurement set.
//
// Height, ArmSpan, LegLength and Waist are in centimetres, Weight in
// kilograms, Age in whole years. Sex is the raw input string; the engine
// normalizes it.
type Record struct {
	ID        string
	Age       Optional[int]
	Sex       Optional[string]
	Height    Optional[float64]
	Weight    Optional[float64]
	Waist     Optional[float64]
	ArmSpan   Optional[float64]
	LegLength Optional[float64]
}

// Missing returns the required fields that are absent, in check order.
func (r Record) Missing() []string {
	var missing []string
	if !r.Age.IsSet() {
		missing = append(missing, FieldAge)
	}
	if !r.Sex.IsSet() {
		missing = append(missing, FieldSex)
	}
	if !r.Height.IsSet() {
		missing = append(missing, FieldHeight)
	}
	if !r.Weight.IsSet() {
		missing = append(missing, FieldWeight)
	}
	return missing
}

// Complete reports whether all required fields are present.
func (r Record) Complete() bool {
	return len(r.Missing()) == 0
}
