package sources

import (
	"fmt"

	"github.com/cohortforge/platform/pkg/cohort"
	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/cohortforge/platform/pkg/coverage"
	"github.com/cohortforge/platform/pkg/extract"
	"github.com/cohortforge/platform/pkg/recode"
	"github.com/cohortforge/platform/pkg/reduce"
	"github.com/cohortforge/platform/pkg/window"
)

// ECOG thresholds for the worsening transition: a patient newly reaches
// a score of >=2 after an earlier score of 0 or 1.
const (
	ecogMild   = 1
	ecogSevere = 2
)

// Ecog derives two features over two windows: the score closest to the
// index date inside the near window (equidistant readings resolve to
// the higher score), and a worsening flag over the wider lookback
// window for patients whose last observed score is >=2 after an earlier
// 0-1. Patients with no readings in a window stay missing for that
// feature; a patient observed only at severe scores is 0, not missing.
func Ecog(records []extract.EcogRecord, reg *cohort.Registry, near, further window.Window) ([]models.EcogRow, models.SourceReport, error) {
	rep := newReport(SourceEcog, len(records))

	outOfScale := 0
	observations := make([]window.Observation, 0, len(records))
	for _, rec := range records {
		obs := window.Observation{PatientID: rec.PatientID}
		if rec.EcogDate != nil {
			obs.Date = *rec.EcogDate
			obs.HasDate = true
		}
		if rec.EcogValue != nil {
			if !ecogInScale(*rec.EcogValue) {
				outOfScale++
			}
			obs.Value = float64(*rec.EcogValue)
			obs.HasValue = true
		}
		observations = append(observations, obs)
	}
	if outOfScale > 0 {
		rep.Warn(fmt.Sprintf("found %d ecog scores outside the %d-%d scale",
			outOfScale, recode.EcogOrder[0], recode.EcogOrder[len(recode.EcogOrder)-1]))
	}

	nearGroups, err := window.Resolve(observations, reg, near)
	if err != nil {
		return nil, rep, err
	}
	furtherGroups, err := window.Resolve(observations, reg, further)
	if err != nil {
		return nil, rep, err
	}

	closest := reduce.Closest(nearGroups)
	worsened := reduce.Transition(furtherGroups, ecogMild, ecogSevere)

	partial := make(map[string]models.EcogRow)
	for patientID, score := range closest {
		row := partial[patientID]
		row.PatientID = patientID
		row.EcogIndex = intPtr(int(score))
		partial[patientID] = row
	}
	for patientID, flag := range worsened {
		row := partial[patientID]
		row.PatientID = patientID
		value := 0
		if flag {
			value = 1
		}
		row.EcogNewlyGte2 = intPtr(value)
		partial[patientID] = row
	}

	rows, duplicates := coverage.Reinstate(reg, coverage.Single(partial), func(patientID string) models.EcogRow {
		return models.EcogRow{PatientID: patientID}
	})
	warnDuplicates(&rep, duplicates)
	rep.RowsWritten = len(rows)
	return rows, rep, nil
}

// ecogInScale reports whether a score sits on the declared 0-4 scale.
// Off-scale scores are warned about, not dropped: they still resolve
// and reduce like any other reading.
func ecogInScale(score int) bool {
	for _, s := range recode.EcogOrder {
		if score == s {
			return true
		}
	}
	return false
}
