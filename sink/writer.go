package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// JSONLWriter writes one JSON report per line.
type JSONLWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLWriter creates a JSON lines writer on w.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{enc: json.NewEncoder(w)}
}

// Write encodes r followed by a newline.
func (w *JSONLWriter) Write(_ context.Context, r Report) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("sink: encode report: %w", err)
	}
	return nil
}

// Close is a no-op; the underlying writer belongs to the caller.
func (w *JSONLWriter) Close() error {
	return nil
}

// TextWriter writes a human readable block per report.
type TextWriter struct {
	mu sync.Mutex
	w  io.Writer

	// Quiet omits reports of valid records without findings
	Quiet bool
}

// NewTextWriter creates a text writer on w.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// Write prints the record status line followed by one line per finding.
func (w *TextWriter) Write(_ context.Context, r Report) error {
	if w.Quiet && r.Valid && len(r.Findings) == 0 && r.Error == "" {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	label := r.RecordID
	if label == "" {
		label = fmt.Sprintf("#%d", r.Index)
	}

	var err error
	switch {
	case r.Error != "":
		_, err = fmt.Fprintf(w.w, "%s: UNREADABLE: %s\n", label, r.Error)
	case r.Valid:
		_, err = fmt.Fprintf(w.w, "%s: VALID (score %.0f)\n", label, r.Score)
	default:
		_, err = fmt.Fprintf(w.w, "%s: INVALID (score %.0f)\n", label, r.Score)
	}
	if err != nil {
		return fmt.Errorf("sink: write report: %w", err)
	}

	for _, f := range r.Findings {
		if _, err := fmt.Fprintf(w.w, "  %s\n", f); err != nil {
			return fmt.Errorf("sink: write report: %w", err)
		}
	}
	return nil
}

// Close is a no-op; the underlying writer belongs to the caller.
func (w *TextWriter) Close() error {
	return nil
}
