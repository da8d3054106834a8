package reduce

import (
	"testing"
	"time"

	"github.com/cohortforge/platform/pkg/cohort"
	"github.com/cohortforge/platform/pkg/window"
)

func event(offset int, value float64) window.InWindow {
	return window.InWindow{
		Observation: window.Observation{PatientID: "P1", Value: value, HasValue: true},
		Offset:      offset,
	}
}

func TestClosestBreaksOffsetTiesUpward(t *testing.T) {
	groups := map[string][]window.InWindow{
		"P1": {event(-5, 1), event(-5, 2)},
	}

	got := Closest(groups)
	if got["P1"] != 2 {
		t.Fatalf("expected tie at offset -5 broken by larger value 2, got %v", got["P1"])
	}
}

func TestClosestNearestOffsetBeatsTieBreak(t *testing.T) {
	// The value tie-break only applies among events sharing the minimum
	// absolute offset; a strictly nearer event always wins first.
	groups := map[string][]window.InWindow{
		"P1": {event(-5, 1), event(-5, 2), event(2, 0)},
	}

	got := Closest(groups)
	if got["P1"] != 0 {
		t.Fatalf("expected nearest event at offset +2 to win, got %v", got["P1"])
	}
}

func TestClosestAfterLookbackOnlyResolution(t *testing.T) {
	index := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	reg, err := cohort.NewRegistry([]cohort.Entry{{PatientID: "P1", IndexDate: index}})
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}

	observations := []window.Observation{
		{PatientID: "P1", Date: index.AddDate(0, 0, -5), HasDate: true, Value: 1, HasValue: true},
		{PatientID: "P1", Date: index.AddDate(0, 0, -5), HasDate: true, Value: 2, HasValue: true},
		{PatientID: "P1", Date: index.AddDate(0, 0, 2), HasDate: true, Value: 0, HasValue: true},
	}

	// With no lookahead, the +2 event never reaches the selector and
	// the -5 tie resolves to the higher value.
	groups, err := window.Resolve(observations, reg, window.Bounded(90, 0))
	if err != nil {
		t.Fatalf("resolution failed: %v", err)
	}
	got := Closest(groups)
	if got["P1"] != 2 {
		t.Fatalf("expected 2 with the +2 event outside the window, got %v", got["P1"])
	}
}

func TestClosestPrefersNearestOffset(t *testing.T) {
	groups := map[string][]window.InWindow{
		"P1": {event(-30, 9), event(-1, 3), event(10, 8)},
	}

	got := Closest(groups)
	if got["P1"] != 3 {
		t.Fatalf("expected value at offset -1, got %v", got["P1"])
	}
}

func TestClosestIsInputOrderIndependent(t *testing.T) {
	a := map[string][]window.InWindow{"P1": {event(-5, 1), event(-5, 2), event(2, 0)}}
	b := map[string][]window.InWindow{"P1": {event(2, 0), event(-5, 2), event(-5, 1)}}

	if Closest(a)["P1"] != Closest(b)["P1"] {
		t.Fatal("selector result depends on input row order")
	}
}

func TestClosestSkipsPatientsWithoutValues(t *testing.T) {
	unvalued := window.InWindow{Observation: window.Observation{PatientID: "P1"}, Offset: 0}
	got := Closest(map[string][]window.InWindow{"P1": {unvalued}})
	if _, ok := got["P1"]; ok {
		t.Fatal("patient without valued events should be absent, not defaulted")
	}
}
