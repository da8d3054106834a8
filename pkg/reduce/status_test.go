package reduce

import (
	"testing"

	"github.com/cohortforge/platform/pkg/window"
)

func labelled(labels ...string) []window.InWindow {
	events := make([]window.InWindow, 0, len(labels))
	for _, l := range labels {
		events = append(events, window.InWindow{Observation: window.Observation{PatientID: "P1", Label: l}})
	}
	return events
}

func TestStatusLatticeIsCommutative(t *testing.T) {
	positive := Set("mutation identified")
	negative := Set("no mutation")

	a := Status(map[string][]window.InWindow{"P1": labelled("no mutation", "mutation identified")}, positive, negative)
	b := Status(map[string][]window.InWindow{"P1": labelled("mutation identified", "no mutation")}, positive, negative)

	if a["P1"] != StatusPositive || b["P1"] != StatusPositive {
		t.Fatalf("expected positive regardless of label order, got %q and %q", a["P1"], b["P1"])
	}
}

func TestStatusNegativeWithoutPositives(t *testing.T) {
	got := Status(
		map[string][]window.InWindow{"P1": labelled("indeterminate", "no mutation")},
		Set("mutation identified"),
		Set("no mutation"),
	)
	if got["P1"] != StatusNegative {
		t.Fatalf("expected negative, got %q", got["P1"])
	}
}

func TestStatusUnknownWhenNoSetMatches(t *testing.T) {
	got := Status(
		map[string][]window.InWindow{"P1": labelled("results pending", "quantity not sufficient")},
		Set("mutation identified"),
		Set("no mutation"),
	)
	if got["P1"] != StatusUnknown {
		t.Fatalf("expected unknown for indeterminate evidence, got %q", got["P1"])
	}
}
