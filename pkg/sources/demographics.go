package sources

import (
	"fmt"

	"github.com/cohortforge/platform/pkg/cohort"
	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/cohortforge/platform/pkg/coverage"
	"github.com/cohortforge/platform/pkg/extract"
	"github.com/cohortforge/platform/pkg/recode"
)

const hispanicOrLatino = "Hispanic or Latino"

const (
	minPlausibleAge = 18
	maxPlausibleAge = 120
)

// Demographics derives age at the index date, maps states to census
// regions, and normalizes race/ethnicity. "Hispanic or Latino" recorded
// as a race is ethnicity information: it moves to the Ethnicity column
// and the Race value is cleared. Implausible ages are warned about but
// never removed.
func Demographics(records []extract.DemographicsRecord, reg *cohort.Registry, dicts recode.Dictionaries) ([]models.DemographicsRow, models.SourceReport) {
	rep := newReport(SourceDemographics, len(records))

	invalidAges := 0
	partial := make(map[string][]models.DemographicsRow)
	for _, rec := range records {
		indexDate, ok := reg.IndexDate(rec.PatientID)
		if !ok {
			continue
		}

		row := models.DemographicsRow{PatientID: rec.PatientID}

		if rec.BirthYear != nil {
			age := indexDate.Year() - *rec.BirthYear
			row.Age = intPtr(age)
			if age < minPlausibleAge || age > maxPlausibleAge {
				invalidAges++
			}
		}

		race := stringPtr(rec.Race)
		ethnicity := stringPtr(rec.Ethnicity)
		if race != nil && *race == hispanicOrLatino {
			ethnicity = stringPtr(hispanicOrLatino)
			race = nil
		}
		row.Race = race
		row.Ethnicity = ethnicity

		// A missing state still yields a region category, so region is
		// never a missing value for patients present in the extract.
		if region := recode.Map(dicts.StateRegions, rec.State); region != nil {
			row.Region = region
		} else {
			unknown := recode.Unknown
			row.Region = &unknown
		}

		partial[rec.PatientID] = append(partial[rec.PatientID], row)
	}

	if invalidAges > 0 {
		rep.Warn(fmt.Sprintf("found %d ages outside valid range (%d-%d)", invalidAges, minPlausibleAge, maxPlausibleAge))
	}

	rows, duplicates := coverage.Reinstate(reg, partial, func(patientID string) models.DemographicsRow {
		return models.DemographicsRow{PatientID: patientID}
	})
	warnDuplicates(&rep, duplicates)
	rep.RowsWritten = len(rows)
	return rows, rep
}
