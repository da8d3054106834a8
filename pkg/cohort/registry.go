package cohort

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyRegistry    = errors.New("index registry is empty")
	ErrDuplicatePatient = errors.New("index registry contains duplicate patient IDs")
	ErrMissingPatientID = errors.New("index registry entry is missing a patient ID")
	ErrMissingIndexDate = errors.New("index registry entry is missing an index date")
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Entry pairs a patient with the index date all window offsets for that
// patient are measured from.
type Entry struct {
	PatientID string
	IndexDate time.Time
}

// Registry is the per-patient index-date table. It is the join anchor
// for every source routine: duplicate patient IDs here would corrupt
// every downstream join, so they are a hard validation error. Once
// built, a Registry is read-only.
type Registry struct {
	entries []Entry
	dates   map[string]time.Time
}

// NewRegistry validates and freezes the index-date table. Index dates
// are normalized to UTC midnight so day offsets are exact.
func NewRegistry(entries []Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, ValidationError{reason: ErrEmptyRegistry}
	}

	reg := &Registry{
		entries: make([]Entry, 0, len(entries)),
		dates:   make(map[string]time.Time, len(entries)),
	}

	var duplicates []string
	for _, e := range entries {
		id := strings.TrimSpace(e.PatientID)
		if id == "" {
			return nil, ValidationError{reason: ErrMissingPatientID}
		}
		if e.IndexDate.IsZero() {
			return nil, ValidationError{reason: fmt.Errorf("patient %s: %w", id, ErrMissingIndexDate)}
		}
		if _, seen := reg.dates[id]; seen {
			duplicates = append(duplicates, id)
			continue
		}
		day := Midnight(e.IndexDate)
		reg.dates[id] = day
		reg.entries = append(reg.entries, Entry{PatientID: id, IndexDate: day})
	}

	if len(duplicates) > 0 {
		return nil, ValidationError{reason: fmt.Errorf("%w: %s", ErrDuplicatePatient, strings.Join(duplicates, ", "))}
	}

	return reg, nil
}

// IndexDate returns the index date for a patient, if the patient is in
// the cohort.
func (r *Registry) IndexDate(patientID string) (time.Time, bool) {
	date, ok := r.dates[patientID]
	return date, ok
}

// Contains reports whether the patient belongs to the cohort.
func (r *Registry) Contains(patientID string) bool {
	_, ok := r.dates[patientID]
	return ok
}

// PatientIDs returns patient IDs in registry order. The slice is a copy.
func (r *Registry) PatientIDs() []string {
	ids := make([]string, len(r.entries))
	for i, e := range r.entries {
		ids[i] = e.PatientID
	}
	return ids
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Midnight truncates a timestamp to its UTC calendar date. Event and
// index dates carry no meaningful time component; comparing midnights
// keeps day offsets free of partial-day drift.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed whole-day difference to − from.
func DaysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)).Hours() / 24)
}
