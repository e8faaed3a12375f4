// Package reference holds the anthropometric reference tables used by the
// validation engine: height norms by age band and sex, basic value limits,
// BMI bounds, body-ratio bounds and the weight-estimation parameters.
//
// Tables are immutable once built. Default returns a process-wide shared
// instance that every evaluation reads without locking; use Clone to derive
// a modified copy. Alternate tables can be loaded from TOML or YAML with
// LoadFile.
package reference
