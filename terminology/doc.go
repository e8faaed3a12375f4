// Package terminology resolves coded sex values to record.Sex.
//
// A Vocabulary is built from FHIR R4 ValueSet expansions, one ValueSet per
// sex. The default vocabulary accepts the local codes "homme" and "femme"
// and maps the HL7 administrative-gender codes "male" and "female" onto
// them for imported FHIR data.
//
// Example usage:
//
//	voc := terminology.Default()
//
//	sex, ok := voc.Normalize("FEMME")   // record.Female, true
//	sex, ok = voc.Translate(terminology.AdministrativeGender, "male")
package terminology
