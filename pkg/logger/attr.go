package logger

import (
	"log/slog"

	ac "github.com/gofhir/anthrocheck"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// RecordID records the record identifier under the key "record_id".
func RecordID(id string) slog.Attr {
	return slog.String("record_id", id)
}

// Rule records a rule category under the key "rule".
func Rule(id ac.RuleID) slog.Attr {
	return slog.String("rule", string(id))
}

// Result groups the outcome of a validation under the key "result".
func Result(r *ac.Result) slog.Attr {
	if r == nil {
		return slog.Attr{}
	}
	return slog.Group("result",
		slog.Bool("valid", r.Valid),
		slog.Float64("score", r.Score),
		slog.Int("errors", r.ErrorCount()),
		slog.Int("warnings", r.WarningCount()),
	)
}
