package window

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cohortforge/platform/pkg/cohort"
)

var ErrNegativeBound = errors.New("window bounds must be non-negative")

// Window is an inclusive offset range around the index date.
// A nil DaysBefore means unbounded lookback; DaysBefore of zero means
// only events on or after the index date qualify. The two are not
// interchangeable and both are exercised by callers.
type Window struct {
	DaysBefore *int
	DaysAfter  int
}

// Bounded returns a window with explicit lookback and lookahead bounds.
func Bounded(daysBefore, daysAfter int) Window {
	before := daysBefore
	return Window{DaysBefore: &before, DaysAfter: daysAfter}
}

// Unbounded returns a window with no lower bound.
func Unbounded(daysAfter int) Window {
	return Window{DaysAfter: daysAfter}
}

// Validate rejects invalid bounds before any event data is touched.
func (w Window) Validate() error {
	if w.DaysBefore != nil && *w.DaysBefore < 0 {
		return fmt.Errorf("days_before %d: %w", *w.DaysBefore, ErrNegativeBound)
	}
	if w.DaysAfter < 0 {
		return fmt.Errorf("days_after %d: %w", w.DaysAfter, ErrNegativeBound)
	}
	return nil
}

// Contains reports whether a signed day offset falls inside the window.
func (w Window) Contains(offset int) bool {
	if offset > w.DaysAfter {
		return false
	}
	if w.DaysBefore != nil && offset < -*w.DaysBefore {
		return false
	}
	return true
}

// Observation is one dated event for one patient. Sources translate
// their typed records into Observations before resolution; Value and
// Label carry the numeric or categorical payload, whichever applies.
type Observation struct {
	PatientID string
	Date      time.Time
	HasDate   bool
	Value     float64
	HasValue  bool
	Label     string
}

// InWindow is an Observation that survived window resolution, annotated
// with its signed day offset from the patient's index date.
type InWindow struct {
	Observation
	Offset int
}

// Resolve joins observations to the index registry, computes signed day
// offsets, and keeps the in-window events grouped per patient.
// Observations for patients outside the registry are discarded up
// front, and a missing event date drops that event only. Resolve is
// stateless; the returned groups are in chronological order per patient
// with same-day ties ordered by ascending value then label, so every
// downstream reduction is independent of input row order.
func Resolve(observations []Observation, reg *cohort.Registry, w Window) (map[string][]InWindow, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	groups := make(map[string][]InWindow)
	for _, obs := range observations {
		if !obs.HasDate {
			continue
		}
		indexDate, ok := reg.IndexDate(obs.PatientID)
		if !ok {
			continue
		}
		offset := cohort.DaysBetween(indexDate, obs.Date)
		if !w.Contains(offset) {
			continue
		}
		groups[obs.PatientID] = append(groups[obs.PatientID], InWindow{Observation: obs, Offset: offset})
	}

	for _, events := range groups {
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].Offset != events[j].Offset {
				return events[i].Offset < events[j].Offset
			}
			if events[i].Value != events[j].Value {
				return events[i].Value < events[j].Value
			}
			return events[i].Label < events[j].Label
		})
	}

	return groups, nil
}
