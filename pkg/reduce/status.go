package reduce

import "github.com/cohortforge/platform/pkg/window"

const (
	StatusPositive = "positive"
	StatusNegative = "negative"
	StatusUnknown  = "unknown"
)

// Status collapses the in-window event labels of each patient into a
// single outcome under a priority lattice: any label in the positive
// set makes the patient positive, otherwise any label in the negative
// set makes the patient negative, otherwise unknown. The reduction is
// pure set membership: event order never matters, because an
// ever-positive result dominates regardless of when it was observed.
// Labels outside both sets are indeterminate evidence and fall through
// to unknown when nothing else matches.
func Status(groups map[string][]window.InWindow, positive, negative map[string]struct{}) map[string]string {
	out := make(map[string]string, len(groups))
	for patientID, events := range groups {
		status := StatusUnknown
		for _, e := range events {
			if _, ok := positive[e.Label]; ok {
				status = StatusPositive
				break
			}
			if _, ok := negative[e.Label]; ok {
				status = StatusNegative
			}
		}
		out[patientID] = status
	}
	return out
}

// Set builds a membership set from its arguments.
func Set(labels ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return set
}
