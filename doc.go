// Package anthrocheck validates anthropometric records (age, sex, height,
// weight and optional body measurements) against physiological
// plausibility rules.
//
// The package root holds the result model shared by every sub-package:
// Finding, Result, Metrics and the functional Options. The engine itself
// lives in the engine package.
//
// # Quick Start
//
//	import (
//	    ac "github.com/gofhir/anthrocheck"
//	    "github.com/gofhir/anthrocheck/engine"
//	    "github.com/gofhir/anthrocheck/record"
//	)
//
//	eng, err := engine.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := eng.Validate(ctx, record.Record{
//	    Age:    record.Some(25),
//	    Sex:    record.Some("homme"),
//	    Height: record.Some(178.0),
//	    Weight: record.Some(70.0),
//	})
//	if err != nil {
//	    return err // ctx cancelled
//	}
//	for _, f := range result.Errors() {
//	    fmt.Println(f.Message)
//	}
//	result.Release()
//
// # Rules
//
// Rules run in a fixed order and are grouped in nine categories:
//
//   - required-field: age, sex, height and weight must be present; a
//     missing one stops evaluation of the record
//   - basic-value: age, sex, height and weight ranges
//   - height-norm: height against the age band and sex norm
//   - bmi: extreme (error) and unusual (warning) BMI
//   - body-ratio: waist, arm span and leg length against height
//   - adult-weight: weight-for-height for adults
//   - child-weight: estimated weight-for-age for children (warning only)
//   - waist-span, leg-span: cross-measurement plausibility
//
// A record is invalid iff at least one error finding exists. Warnings never
// block acceptance unless strict mode is enabled.
//
// # Functional Options
//
//	eng, err := engine.New(
//	    ac.WithTable(myTable),
//	    ac.WithStrictMode(true),
//	    ac.WithWorkerCount(runtime.NumCPU()),
//	)
package anthrocheck
