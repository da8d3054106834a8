package sources

import (
	"strings"

	"github.com/cohortforge/platform/pkg/cohort"
	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/cohortforge/platform/pkg/coverage"
	"github.com/cohortforge/platform/pkg/extract"
)

const (
	PracticeBoth    = "BOTH"
	PracticeUnknown = "UNKNOWN"
)

// Practice consolidates the practice settings observed for each patient
// into one categorical value: the single setting when only one was
// seen, BOTH when a patient appears under more than one distinct
// setting, UNKNOWN when every row was blank.
func Practice(records []extract.PracticeRecord, reg *cohort.Registry) ([]models.PracticeRow, models.SourceReport) {
	rep := newReport(SourcePractice, len(records))

	seen := make(map[string]map[string]struct{})
	for _, rec := range records {
		if !reg.Contains(rec.PatientID) {
			continue
		}
		if seen[rec.PatientID] == nil {
			seen[rec.PatientID] = make(map[string]struct{})
		}
		if practiceType := strings.TrimSpace(rec.PracticeType); practiceType != "" {
			seen[rec.PatientID][practiceType] = struct{}{}
		}
	}

	partial := make(map[string]models.PracticeRow, len(seen))
	for patientID, types := range seen {
		var consolidated string
		switch len(types) {
		case 0:
			consolidated = PracticeUnknown
		case 1:
			for t := range types {
				consolidated = t
			}
		default:
			consolidated = PracticeBoth
		}
		partial[patientID] = models.PracticeRow{PatientID: patientID, PracticeType: &consolidated}
	}

	rows, duplicates := coverage.Reinstate(reg, coverage.Single(partial), func(patientID string) models.PracticeRow {
		return models.PracticeRow{PatientID: patientID}
	})
	warnDuplicates(&rep, duplicates)
	rep.RowsWritten = len(rows)
	return rows, rep
}
