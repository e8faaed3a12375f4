// Package record defines the anthropometric record consumed by the
// validation engine.
//
// Every field is wrapped in Optional so that "not measured" is never
// confused with a measured zero. Required fields are optional at the type
// level too: their absence is reported by the engine's required-field gate,
// not by the decoder.
package record
