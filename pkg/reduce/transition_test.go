package reduce

import (
	"testing"

	"github.com/cohortforge/platform/pkg/window"
)

// sequence builds a chronologically ordered group, the shape Resolve
// hands to Transition.
func sequence(values ...float64) []window.InWindow {
	events := make([]window.InWindow, 0, len(values))
	for i, v := range values {
		events = append(events, window.InWindow{
			Observation: window.Observation{PatientID: "P1", Value: v, HasValue: true},
			Offset:      i - len(values),
		})
	}
	return events
}

func TestTransitionDetectsWorsening(t *testing.T) {
	got := Transition(map[string][]window.InWindow{"P1": sequence(0, 1, 2)}, 1, 2)
	if !got["P1"] {
		t.Fatal("expected worsening from 0-1 to >=2 to be detected")
	}
}

func TestTransitionIgnoresAlwaysSevere(t *testing.T) {
	got := Transition(map[string][]window.InWindow{"P1": sequence(2, 2, 2)}, 1, 2)
	if got["P1"] {
		t.Fatal("a patient severe at every observation has no transition")
	}
}

func TestTransitionNeedsAtLeastTwoObservations(t *testing.T) {
	got := Transition(map[string][]window.InWindow{"P1": sequence(2)}, 1, 2)
	if got["P1"] {
		t.Fatal("a single observation cannot be a transition")
	}
}

func TestTransitionAllowsInterimImprovement(t *testing.T) {
	// Improved and worsened again still counts: an early mild value
	// exists and the last value is severe.
	got := Transition(map[string][]window.InWindow{"P1": sequence(0, 2, 1, 2)}, 1, 2)
	if !got["P1"] {
		t.Fatal("expected improved-then-worsened sequence to qualify")
	}
}

func TestTransitionAbsentWithoutEvents(t *testing.T) {
	got := Transition(map[string][]window.InWindow{}, 1, 2)
	if _, ok := got["P1"]; ok {
		t.Fatal("patients without in-window events must stay missing, not false")
	}
}

func TestTransitionFalseWhenLastValueIsMild(t *testing.T) {
	got := Transition(map[string][]window.InWindow{"P1": sequence(0, 2, 1)}, 1, 2)
	if got["P1"] {
		t.Fatal("transition requires the last value to be severe")
	}
}
