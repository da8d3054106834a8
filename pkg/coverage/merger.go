package coverage

import "github.com/cohortforge/platform/pkg/cohort"

// Reinstate left-joins partial per-patient results back onto the full
// index registry so that every cohort patient appears in the output:
// patients without a computed row get the missing-row placeholder from
// the missing constructor, never a dropped row. Rows come back in
// registry order.
//
// The second return value lists patients that contributed more than one
// row. Duplication signals an upstream data-quality problem the caller
// must judge, so the extra rows are retained and surfaced rather than
// silently deduplicated.
func Reinstate[T any](reg *cohort.Registry, partial map[string][]T, missing func(patientID string) T) ([]T, []string) {
	rows := make([]T, 0, reg.Len())
	var duplicates []string

	for _, patientID := range reg.PatientIDs() {
		matched, ok := partial[patientID]
		if !ok || len(matched) == 0 {
			rows = append(rows, missing(patientID))
			continue
		}
		if len(matched) > 1 {
			duplicates = append(duplicates, patientID)
		}
		rows = append(rows, matched...)
	}

	return rows, duplicates
}

// Single wraps a one-row-per-patient partial result for Reinstate.
func Single[T any](partial map[string]T) map[string][]T {
	grouped := make(map[string][]T, len(partial))
	for patientID, row := range partial {
		grouped[patientID] = []T{row}
	}
	return grouped
}
