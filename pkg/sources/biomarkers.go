package sources

import (
	"github.com/cohortforge/platform/pkg/cohort"
	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/cohortforge/platform/pkg/coverage"
	"github.com/cohortforge/platform/pkg/extract"
	"github.com/cohortforge/platform/pkg/reduce"
	"github.com/cohortforge/platform/pkg/window"
)

const brcaBiomarker = "BRCA"

var (
	brcaPositive = reduce.Set(
		"BRCA1 mutation identified",
		"BRCA2 mutation identified",
		"Both BRCA1 and BRCA2 mutations identified",
		"BRCA mutation NOS",
	)
	brcaNegative = reduce.Set(
		"No BRCA mutation",
		"Genetic Variant Favor Polymorphism",
	)
)

// Biomarkers resolves BRCA test results inside the window and reduces
// them to an ever-positive / only-negative / unknown status per
// patient. A missing ResultDate is imputed from SpecimenReceivedDate;
// dropping those rows would silently shrink the cohort's evidence base.
func Biomarkers(records []extract.BiomarkerRecord, reg *cohort.Registry, w window.Window) ([]models.BiomarkerRow, models.SourceReport, error) {
	rep := newReport(SourceBiomarkers, len(records))

	observations := make([]window.Observation, 0, len(records))
	for _, rec := range records {
		if rec.BiomarkerName != brcaBiomarker {
			continue
		}
		resultDate := rec.ResultDate
		if resultDate == nil {
			resultDate = rec.SpecimenReceivedDate
		}
		obs := window.Observation{
			PatientID: rec.PatientID,
			Label:     rec.BiomarkerStatus,
		}
		if resultDate != nil {
			obs.Date = *resultDate
			obs.HasDate = true
		}
		observations = append(observations, obs)
	}

	groups, err := window.Resolve(observations, reg, w)
	if err != nil {
		return nil, rep, err
	}

	statuses := reduce.Status(groups, brcaPositive, brcaNegative)
	partial := make(map[string]models.BiomarkerRow, len(statuses))
	for patientID, status := range statuses {
		s := status
		partial[patientID] = models.BiomarkerRow{PatientID: patientID, BRCAStatus: &s}
	}

	rows, duplicates := coverage.Reinstate(reg, coverage.Single(partial), func(patientID string) models.BiomarkerRow {
		return models.BiomarkerRow{PatientID: patientID}
	})
	warnDuplicates(&rep, duplicates)
	rep.RowsWritten = len(rows)
	return rows, rep, nil
}
