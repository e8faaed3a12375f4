// Package phase provides the concrete rule phases.
//
// Each phase checks one aspect of an anthropometric record:
//   - required-fields: age, sex, height and weight are present (gate)
//   - age, sex, height, weight: single-field ranges
//   - height-norm: height against the age band norm for the sex
//   - bmi: extreme and unusual BMI
//   - waist-ratio, span-ratio, leg-ratio: measurements against height
//   - adult-weight: weight-for-height from age 18
//   - child-weight: estimated weight-for-age below 18 (warning only)
//   - waist-span, leg-span: measurements that cannot exceed the arm span
//
// Phases implement the pipeline.Phase interface. Default lists them in
// evaluation order; Register installs a list into a Pipeline.
package phase
