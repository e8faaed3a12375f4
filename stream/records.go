// Package stream provides streaming validation of large record documents.
//
// Input is either a JSON array of records or JSON lines (one record per
// line, or any sequence of concatenated JSON objects). Results are emitted
// on a channel in input order.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/record"
	"github.com/gofhir/anthrocheck/worker"
)

// ErrNotJSON is returned when the stream starts with neither an array nor
// an object.
var ErrNotJSON = errors.New("stream is not a JSON array or JSON lines")

// EntryResult represents the validation result for a single record.
type EntryResult struct {
	// Index is the position of the record in the stream, or -1 for a
	// stream-level error
	Index int

	// RecordID is the id of the record (if present)
	RecordID string

	// Result contains the findings for this record
	Result *ac.Result

	// Error is set if the entry could not be decoded or evaluated
	Error error
}

// RecordValidator validates record streams.
type RecordValidator struct {
	// validate evaluates one decoded record
	validate worker.ValidateFunc

	// bufferSize is the channel buffer size
	bufferSize int

	// workerCount is the number of parallel workers
	workerCount int
}

// NewRecordValidator creates a new streaming record validator.
func NewRecordValidator(validateFunc worker.ValidateFunc) *RecordValidator {
	return &RecordValidator{
		validate:    validateFunc,
		bufferSize:  100,
		workerCount: 4,
	}
}

// WithBufferSize sets the channel buffer size.
func (v *RecordValidator) WithBufferSize(size int) *RecordValidator {
	if size > 0 {
		v.bufferSize = size
	}
	return v
}

// WithWorkerCount sets the number of parallel workers.
func (v *RecordValidator) WithWorkerCount(count int) *RecordValidator {
	if count > 0 {
		v.workerCount = count
	}
	return v
}

// entry is one raw element read from the stream.
type entry struct {
	index int
	raw   json.RawMessage
	err   error
}

// scanner yields raw records from an array or JSON lines document.
type scanner struct {
	dec     *json.Decoder
	isArray bool
	index   int
	done    bool
}

func newScanner(r io.Reader) (*scanner, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return &scanner{done: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}

	s := &scanner{dec: json.NewDecoder(br)}
	switch first {
	case '[':
		if _, err := s.dec.Token(); err != nil {
			return nil, fmt.Errorf("failed to read array start: %w", err)
		}
		s.isArray = true
	case '{':
	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrNotJSON, first)
	}
	return s, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

// next returns the following entry, or false at the end of the stream.
// A syntax error is returned as an entry and ends the stream.
func (s *scanner) next() (entry, bool) {
	if s.done {
		return entry{}, false
	}
	if s.isArray && !s.dec.More() {
		s.done = true
		return entry{}, false
	}

	e := entry{index: s.index}
	err := s.dec.Decode(&e.raw)
	switch {
	case err == io.EOF && !s.isArray:
		s.done = true
		return entry{}, false
	case err != nil:
		s.done = true
		e.err = fmt.Errorf("failed to decode entry %d: %w", s.index, err)
	}
	s.index++
	return e, true
}

// ValidateStream validates records from r one at a time, emitting results in
// input order.
func (v *RecordValidator) ValidateStream(ctx context.Context, r io.Reader) <-chan *EntryResult {
	results := make(chan *EntryResult, v.bufferSize)

	go func() {
		defer close(results)

		s, err := newScanner(r)
		if err != nil {
			results <- &EntryResult{Index: -1, Error: err}
			return
		}

		for {
			if err := ctx.Err(); err != nil {
				results <- &EntryResult{Index: -1, Error: err}
				return
			}
			e, ok := s.next()
			if !ok {
				return
			}
			results <- v.processEntry(ctx, e)
		}
	}()

	return results
}

// processEntry decodes and validates one entry.
func (v *RecordValidator) processEntry(ctx context.Context, e entry) *EntryResult {
	result := &EntryResult{Index: e.index}
	if e.err != nil {
		result.Error = e.err
		return result
	}

	rec, err := record.Decode(e.raw)
	if err != nil {
		result.Error = fmt.Errorf("entry %d: %w", e.index, err)
		return result
	}
	result.RecordID = rec.ID

	res, err := v.validate(ctx, rec)
	if err != nil {
		result.Error = err
		return result
	}
	result.Result = res
	return result
}

// ValidateStreamParallel validates records on a worker.Pool while preserving
// input order in the output.
func (v *RecordValidator) ValidateStreamParallel(ctx context.Context, r io.Reader) <-chan *EntryResult {
	results := make(chan *EntryResult, v.bufferSize)

	go func() {
		defer close(results)

		s, err := newScanner(r)
		if err != nil {
			results <- &EntryResult{Index: -1, Error: err}
			return
		}

		pool := worker.NewPool(ctx, v.validate, v.workerCount)
		o := newOrderer()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer pool.Close()
			for {
				e, ok := s.next()
				if !ok {
					return
				}
				if e.err != nil {
					o.put(&EntryResult{Index: e.index, Error: e.err})
					continue
				}
				rec, err := record.Decode(e.raw)
				if err != nil {
					o.put(&EntryResult{Index: e.index, Error: fmt.Errorf("entry %d: %w", e.index, err)})
					continue
				}
				o.expectID(e.index, rec.ID)
				if !pool.Submit(worker.Job{Index: e.index, Record: rec}) {
					return
				}
			}
		}()

		for jr := range pool.Results() {
			o.put(&EntryResult{Index: jr.Index, Result: jr.Result, Error: jr.Error})
			for _, ready := range o.ready() {
				results <- ready
			}
		}
		wg.Wait()

		for _, rest := range o.drain() {
			results <- rest
		}
		if err := ctx.Err(); err != nil {
			results <- &EntryResult{Index: -1, Error: err}
		}
	}()

	return results
}

// orderer buffers out-of-order results until their predecessors arrive.
type orderer struct {
	mu      sync.Mutex
	pending map[int]*EntryResult
	ids     map[int]string
	next    int
}

func newOrderer() *orderer {
	return &orderer{
		pending: make(map[int]*EntryResult),
		ids:     make(map[int]string),
	}
}

func (o *orderer) expectID(index int, id string) {
	o.mu.Lock()
	o.ids[index] = id
	o.mu.Unlock()
}

func (o *orderer) put(r *EntryResult) {
	o.mu.Lock()
	if id, ok := o.ids[r.Index]; ok {
		r.RecordID = id
		delete(o.ids, r.Index)
	}
	o.pending[r.Index] = r
	o.mu.Unlock()
}

// ready pops the contiguous run starting at the next expected index.
func (o *orderer) ready() []*EntryResult {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []*EntryResult
	for {
		r, ok := o.pending[o.next]
		if !ok {
			return out
		}
		out = append(out, r)
		delete(o.pending, o.next)
		o.next++
	}
}

// drain pops everything left, in index order.
func (o *orderer) drain() []*EntryResult {
	out := o.ready()

	o.mu.Lock()
	defer o.mu.Unlock()

	rest := make([]*EntryResult, 0, len(o.pending))
	for _, r := range o.pending {
		rest = append(rest, r)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Index < rest[j].Index })
	clear(o.pending)
	return append(out, rest...)
}
