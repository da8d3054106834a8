package reduce

import (
	"sort"

	"github.com/cohortforge/platform/pkg/window"
)

// Closest picks one representative value per patient from a set of
// in-window events: the event nearest the index date wins, and when two
// events tie on absolute offset the numerically larger value is kept.
// Clinical severity scores are read conservatively upward, so the
// tie-break is a documented policy rather than an arbitrary first-row
// pick. Patients whose group holds no valued events are absent from the
// result and are reinstated as missing by the coverage merger.
func Closest(groups map[string][]window.InWindow) map[string]float64 {
	out := make(map[string]float64, len(groups))
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
		sort.SliceStable(valued, func(i, j int) bool {
			di, dj := abs(valued[i].Offset), abs(valued[j].Offset)
			if di != dj {
				return di < dj
			}
			return valued[i].Value > valued[j].Value
		})
		out[patientID] = valued[0].Value
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
