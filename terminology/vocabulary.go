package terminology

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gofhir/fhir/r4"
	"golang.org/x/text/cases"

	"github.com/gofhir/anthrocheck/record"
)

const (
	// LocalSystem is the code system of the record sex values.
	LocalSystem = "urn:anthrocheck:sex"

	// AdministrativeGender is the HL7 FHIR administrative gender system.
	AdministrativeGender = "http://hl7.org/fhir/administrative-gender"
)

// ErrInvalidValueSet is returned when a ValueSet cannot be loaded.
var ErrInvalidValueSet = errors.New("invalid value set")

// Vocabulary maps (system, code) pairs to a sex. It is safe for concurrent
// use.
type Vocabulary struct {
	mu    sync.RWMutex
	urls  map[string]record.Sex
	codes map[string]map[string]codeEntry // system -> folded code -> entry
}

type codeEntry struct {
	code    string
	display string
	sex     record.Sex
}

// NewVocabulary creates an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		urls:  make(map[string]record.Sex),
		codes: make(map[string]map[string]codeEntry),
	}
}

var defaultVocabulary = sync.OnceValue(func() *Vocabulary {
	v := NewVocabulary()
	for _, vs := range []struct {
		sex    record.Sex
		url    string
		local  string
		gender string
	}{
		{record.Male, "urn:anthrocheck:ValueSet/homme", "Homme", "Male"},
		{record.Female, "urn:anthrocheck:ValueSet/femme", "Femme", "Female"},
	} {
		set := &r4.ValueSet{
			Url: ptr(vs.url),
			Expansion: &r4.ValueSetExpansion{
				Contains: []r4.ValueSetExpansionContains{
					{System: ptr(LocalSystem), Code: ptr(string(vs.sex)), Display: ptr(vs.local)},
					{System: ptr(AdministrativeGender), Code: ptr(strings.ToLower(vs.gender)), Display: ptr(vs.gender)},
				},
			},
		}
		if err := v.LoadValueSet(vs.sex, set); err != nil {
			panic(err)
		}
	}
	return v
})

// Default returns the shared built-in vocabulary. Callers that need extra
// codes should build their own with NewVocabulary.
func Default() *Vocabulary {
	return defaultVocabulary()
}

// LoadValueSet registers every code of an R4 ValueSet as meaning sex.
// Codes are read from the expansion when present, else from the compose
// includes.
func (v *Vocabulary) LoadValueSet(sex record.Sex, vs *r4.ValueSet) error {
	if !sex.Valid() {
		return fmt.Errorf("%w: unknown sex %q", ErrInvalidValueSet, sex)
	}
	if vs == nil || vs.Url == nil {
		return fmt.Errorf("%w: valueset is nil or has no URL", ErrInvalidValueSet)
	}

	var entries []r4.ValueSetExpansionContains
	if vs.Expansion != nil {
		entries = flatten(vs.Expansion.Contains, entries)
	} else if vs.Compose != nil {
		for _, include := range vs.Compose.Include {
			for _, concept := range include.Concept {
				entries = append(entries, r4.ValueSetExpansionContains{
					System:  include.System,
					Code:    concept.Code,
					Display: concept.Display,
				})
			}
		}
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: %s has no codes", ErrInvalidValueSet, *vs.Url)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if prev, ok := v.urls[*vs.Url]; ok && prev != sex {
		return fmt.Errorf("%w: %s already bound to %s", ErrInvalidValueSet, *vs.Url, prev)
	}
	v.urls[*vs.Url] = sex

	for _, c := range entries {
		if c.System == nil || c.Code == nil {
			continue
		}
		system := *c.System
		if v.codes[system] == nil {
			v.codes[system] = make(map[string]codeEntry)
		}
		display := ""
		if c.Display != nil {
			display = *c.Display
		}
		v.codes[system][fold(*c.Code)] = codeEntry{
			code:    *c.Code,
			display: display,
			sex:     sex,
		}
	}
	return nil
}

// Normalize resolves a raw record sex value against the local system.
// The comparison is case-insensitive; whitespace is significant.
func (v *Vocabulary) Normalize(raw string) (record.Sex, bool) {
	return v.Translate(LocalSystem, raw)
}

// Translate resolves a code from any loaded system.
func (v *Vocabulary) Translate(system, code string) (record.Sex, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	entry, ok := v.codes[system][fold(code)]
	if !ok {
		return "", false
	}
	return entry.sex, true
}

// Display returns the display text of a code, if any.
func (v *Vocabulary) Display(system, code string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.codes[system][fold(code)].display
}

// Systems returns the number of loaded code systems.
func (v *Vocabulary) Systems() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.codes)
}

func flatten(contains []r4.ValueSetExpansionContains, out []r4.ValueSetExpansionContains) []r4.ValueSetExpansionContains {
	for _, c := range contains {
		out = append(out, c)
		out = flatten(c.Contains, out)
	}
	return out
}

// fold case-folds a code. Surrounding whitespace is kept, so " homme " does
// not match. A Caser is not safe for concurrent use, so one is created per
// call.
func fold(code string) string {
	return cases.Fold().String(code)
}

func ptr[T any](v T) *T {
	return &v
}
