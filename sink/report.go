// Package sink delivers validation reports to writers and message brokers.
package sink

import (
	"context"
	"time"

	"github.com/google/uuid"

	ac "github.com/gofhir/anthrocheck"
)

// Report is the outbound document for one validated record.
type Report struct {
	MessageID   string       `json:"message_id"`
	Index       int          `json:"index"`
	RecordID    string       `json:"record_id,omitempty"`
	JobID       string       `json:"job_id,omitempty"`
	Valid       bool         `json:"valid"`
	Strict      bool         `json:"strict,omitempty"`
	Score       float64      `json:"score"`
	Errors      int          `json:"errors"`
	Warnings    int          `json:"warnings"`
	Findings    []ac.Finding `json:"findings"`
	Error       string       `json:"error,omitempty"`
	ValidatedAt time.Time    `json:"validated_at"`
}

// NewReport builds a report from a result. The findings are copied so the
// result may be released afterwards.
func NewReport(index int, res *ac.Result, at time.Time) Report {
	r := Report{
		MessageID:   uuid.NewString(),
		Index:       index,
		RecordID:    res.RecordID,
		JobID:       res.JobID,
		Valid:       res.Valid,
		Strict:      res.Strict,
		Score:       res.Score,
		Errors:      res.ErrorCount(),
		Warnings:    res.WarningCount(),
		Findings:    make([]ac.Finding, len(res.Findings)),
		ValidatedAt: at.UTC(),
	}
	copy(r.Findings, res.Findings)
	return r
}

// NewErrorReport builds a report for an entry that could not be evaluated.
func NewErrorReport(index int, recordID string, err error, at time.Time) Report {
	return Report{
		MessageID:   uuid.NewString(),
		Index:       index,
		RecordID:    recordID,
		Findings:    []ac.Finding{},
		Error:       err.Error(),
		ValidatedAt: at.UTC(),
	}
}

// Sink receives reports.
type Sink interface {
	Write(ctx context.Context, r Report) error
	Close() error
}

// Multi fans every report out to all sinks, stopping at the first error.
type Multi []Sink

// Write writes r to each sink in order.
func (m Multi) Write(ctx context.Context, r Report) error {
	for _, s := range m {
		if err := s.Write(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and returns the first error.
func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
