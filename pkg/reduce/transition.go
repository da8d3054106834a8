package reduce

import "github.com/cohortforge/platform/pkg/window"

// Transition detects a directional worsening per patient over a
// chronologically ordered group: true when the last in-window value is
// at or above the severe threshold AND at least one strictly earlier
// value was at or below the mild threshold. A patient severe at every
// observation does not qualify; a patient who improved and then
// worsened again does, as long as an early mild value exists. Patients
// with in-window events but no qualifying transition map to false;
// patients with no in-window events are absent from the result (and so
// resolve to missing downstream).
func Transition(groups map[string][]window.InWindow, mild, severe float64) map[string]bool {
	out := make(map[string]bool, len(groups))
	for patientID, events := range groups {
		valued := make([]window.InWindow, 0, len(events))
		for _, e := range events {
			if e.HasValue {
				valued = append(valued, e)
			}
		}
		if len(valued) == 0 {
			continue
		}

		last := valued[len(valued)-1]
		worsened := false
		if last.Value >= severe {
			for _, e := range valued[:len(valued)-1] {
				if e.Value <= mild {
					worsened = true
					break
				}
			}
		}
		out[patientID] = worsened
	}
	return out
}
