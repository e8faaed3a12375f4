// Package fhirimport converts FHIR R4 Bundles into anthropometric records.
//
// Each Patient entry becomes one record. Observations are attributed to a
// patient through subject.reference ("Patient/<id>") and classified by
// LOINC code with compiled FHIRPath predicates. Quantities must already be
// in centimetres or kilograms; no unit conversion is attempted.
package fhirimport

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/gofhir/fhirpath"

	ac "github.com/gofhir/anthrocheck"
	"github.com/gofhir/anthrocheck/cache"
	"github.com/gofhir/anthrocheck/record"
	"github.com/gofhir/anthrocheck/terminology"
)

// LOINC codes of the measurements recognised by default.
const (
	LOINCSystem = "http://loinc.org"
	CodeHeight  = "8302-2"
	CodeWeight  = "29463-7"
	CodeWaist   = "8280-0"
)

var (
	// ErrNotBundle is returned when the document is not a FHIR Bundle.
	ErrNotBundle = errors.New("not a FHIR Bundle")

	// ErrUnsupportedUnit is returned for a quantity not expressed in the
	// unit the record field requires.
	ErrUnsupportedUnit = errors.New("unsupported unit")
)

// units lists the UCUM unit each measurement field must use.
var units = map[string]string{
	record.FieldHeight:    "cm",
	record.FieldWeight:    "kg",
	record.FieldWaist:     "cm",
	record.FieldArmSpan:   "cm",
	record.FieldLegLength: "cm",
}

// fieldOrder fixes the order in which predicates are tried.
var fieldOrder = []string{
	record.FieldHeight,
	record.FieldWeight,
	record.FieldWaist,
	record.FieldArmSpan,
	record.FieldLegLength,
}

// Importer converts Bundles to records. It is safe for concurrent use.
type Importer struct {
	vocab *terminology.Vocabulary
	codes map[string]string
	exprs *cache.Cache[string, *fhirpath.Expression]
	now   func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithVocabulary sets the vocabulary used to translate Patient.gender.
func WithVocabulary(v *terminology.Vocabulary) Option {
	return func(im *Importer) {
		if v != nil {
			im.vocab = v
		}
	}
}

// WithCode binds a LOINC code to a measurement field. An empty code
// unbinds the field.
func WithCode(field, code string) Option {
	return func(im *Importer) {
		if code == "" {
			delete(im.codes, field)
			return
		}
		im.codes[field] = code
	}
}

// WithClock sets the clock used for the age of patients without any dated
// observation.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) {
		if now != nil {
			im.now = now
		}
	}
}

// WithMetrics reports predicate cache hits and misses to m.
func WithMetrics(m *ac.Metrics) Option {
	return func(im *Importer) {
		im.exprs = cache.New[string, *fhirpath.Expression](cache.DefaultCapacity, cache.WithMetrics(m))
	}
}

// New creates an Importer recognising height, weight and waist by default.
func New(opts ...Option) *Importer {
	im := &Importer{
		vocab: terminology.Default(),
		codes: map[string]string{
			record.FieldHeight: CodeHeight,
			record.FieldWeight: CodeWeight,
			record.FieldWaist:  CodeWaist,
		},
		exprs: cache.New[string, *fhirpath.Expression](cache.DefaultCapacity),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// patient accumulates what the bundle says about one Patient.
type patient struct {
	id        string
	gender    string
	hasGender bool
	birthDate string
	latest    time.Time
	values    map[string]measurement
}

type measurement struct {
	value float64
	at    time.Time
}

// observation is an Observation entry waiting for its patient.
type observation struct {
	subject string
	field   string
	m       measurement
}

// ImportReader reads a whole Bundle from r and imports it.
func (im *Importer) ImportReader(r io.Reader) ([]record.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("fhirimport: read bundle: %w", err)
	}
	return im.Import(data)
}

// Import converts a Bundle to records, one per Patient in entry order.
// Observations whose subject is not a Patient of the bundle are ignored.
func (im *Importer) Import(data []byte) ([]record.Record, error) {
	rt, err := jsonparser.GetString(data, "resourceType")
	if err != nil || rt != "Bundle" {
		return nil, fmt.Errorf("fhirimport: %w", ErrNotBundle)
	}

	var (
		patients []*patient
		byID     = make(map[string]*patient)
		pending  []observation
		firstErr error
	)

	_, err = jsonparser.ArrayEach(data, func(entry []byte, _ jsonparser.ValueType, _ int, _ error) {
		if firstErr != nil {
			return
		}
		resource, _, _, err := jsonparser.Get(entry, "resource")
		if err != nil {
			return
		}
		switch kind, _ := jsonparser.GetString(resource, "resourceType"); kind {
		case "Patient":
			p := parsePatient(resource)
			if _, dup := byID[p.id]; !dup {
				byID[p.id] = p
				patients = append(patients, p)
			}
		case "Observation":
			obs, ok, err := im.parseObservation(resource)
			if err != nil {
				firstErr = err
				return
			}
			if ok {
				pending = append(pending, obs)
			}
		}
	}, "entry")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, fmt.Errorf("fhirimport: %w: %v", record.ErrMalformed, err)
	}
	if firstErr != nil {
		return nil, firstErr
	}

	for _, obs := range pending {
		p, ok := byID[obs.subject]
		if !ok {
			continue
		}
		p.observe(obs.field, obs.m)
	}

	records := make([]record.Record, 0, len(patients))
	for _, p := range patients {
		rec, err := im.toRecord(p)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parsePatient(resource []byte) *patient {
	p := &patient{values: make(map[string]measurement)}
	p.id, _ = jsonparser.GetString(resource, "id")
	if g, err := jsonparser.GetString(resource, "gender"); err == nil {
		p.gender, p.hasGender = g, true
	}
	p.birthDate, _ = jsonparser.GetString(resource, "birthDate")
	return p
}

// observe keeps the most recent value per field. Later entries win ties.
func (p *patient) observe(field string, m measurement) {
	if cur, ok := p.values[field]; !ok || !m.at.Before(cur.at) {
		p.values[field] = m
	}
	if m.at.After(p.latest) {
		p.latest = m.at
	}
}

// parseObservation classifies an Observation. It reports false for entries
// that carry nothing usable.
func (im *Importer) parseObservation(resource []byte) (observation, bool, error) {
	if status, _ := jsonparser.GetString(resource, "status"); status == "entered-in-error" {
		return observation{}, false, nil
	}

	ref, err := jsonparser.GetString(resource, "subject", "reference")
	if err != nil {
		return observation{}, false, nil
	}
	subject, ok := strings.CutPrefix(ref, "Patient/")
	if !ok {
		return observation{}, false, nil
	}

	field, err := im.classify(resource)
	if err != nil || field == "" {
		return observation{}, false, err
	}

	value, err := jsonparser.GetFloat(resource, "valueQuantity", "value")
	if err != nil {
		return observation{}, false, nil
	}

	unit, err := jsonparser.GetString(resource, "valueQuantity", "code")
	if err != nil {
		unit, _ = jsonparser.GetString(resource, "valueQuantity", "unit")
	}
	if want := units[field]; unit != want {
		id, _ := jsonparser.GetString(resource, "id")
		return observation{}, false, fmt.Errorf("fhirimport: observation %q %s in %q, want %q: %w",
			id, field, unit, want, ErrUnsupportedUnit)
	}

	var at time.Time
	if eff, err := jsonparser.GetString(resource, "effectiveDateTime"); err == nil {
		if at, err = parseDate(eff); err != nil {
			return observation{}, false, fmt.Errorf("fhirimport: effectiveDateTime %q: %w", eff, err)
		}
	}

	return observation{subject: subject, field: field, m: measurement{value: value, at: at}}, true, nil
}

// classify returns the field whose LOINC predicate matches, or "".
func (im *Importer) classify(resource []byte) (string, error) {
	for _, field := range fieldOrder {
		code, ok := im.codes[field]
		if !ok {
			continue
		}
		expr, err := im.predicate(code)
		if err != nil {
			return "", err
		}
		out, err := expr.Evaluate(resource)
		if err != nil {
			return "", fmt.Errorf("fhirimport: evaluate %s predicate: %w", field, err)
		}
		if out.Empty() {
			continue
		}
		if match, err := out.ToBoolean(); err == nil && match {
			return field, nil
		}
	}
	return "", nil
}

// predicate returns the compiled expression matching a LOINC code.
func (im *Importer) predicate(code string) (*fhirpath.Expression, error) {
	src := fmt.Sprintf("code.coding.where(system = '%s' and code = '%s').exists()", LOINCSystem, code)
	expr, err := im.exprs.GetOrLoad(src, func() (*fhirpath.Expression, error) {
		return fhirpath.Compile(src)
	})
	if err != nil {
		return nil, fmt.Errorf("fhirimport: compile predicate for %s: %w", code, err)
	}
	return expr, nil
}

func (im *Importer) toRecord(p *patient) (record.Record, error) {
	rec := record.Record{ID: p.id}

	if p.hasGender {
		if sex, ok := im.vocab.Translate(terminology.AdministrativeGender, p.gender); ok {
			rec.Sex = record.Some(string(sex))
		} else {
			rec.Sex = record.Some(p.gender)
		}
	}

	if p.birthDate != "" {
		birth, err := parseDate(p.birthDate)
		if err != nil {
			return record.Record{}, fmt.Errorf("fhirimport: patient %q birthDate %q: %w", p.id, p.birthDate, err)
		}
		at := p.latest
		if at.IsZero() {
			at = im.now()
		}
		rec.Age = record.Some(ageAt(birth, at))
	}

	set := func(field string) record.Optional[float64] {
		if m, ok := p.values[field]; ok {
			return record.Some(m.value)
		}
		return record.None[float64]()
	}
	rec.Height = set(record.FieldHeight)
	rec.Weight = set(record.FieldWeight)
	rec.Waist = set(record.FieldWaist)
	rec.ArmSpan = set(record.FieldArmSpan)
	rec.LegLength = set(record.FieldLegLength)

	return rec, nil
}

// dateLayouts are the FHIR date and dateTime precisions.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: not a FHIR date", record.ErrMalformed)
}

// ageAt returns the number of completed years between birth and at.
func ageAt(birth, at time.Time) int {
	years := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		years--
	}
	return years
}
