package sources

import (
	"github.com/cohortforge/platform/pkg/cohort"
	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/cohortforge/platform/pkg/coverage"
	"github.com/cohortforge/platform/pkg/extract"
	"github.com/cohortforge/platform/pkg/recode"
	"github.com/cohortforge/platform/pkg/reduce"
)

// Enhanced consolidates staging and Gleason categories, derives the
// diagnosis-to-metastasis interval, flags castrate resistance reached
// by the index date, and computes PSA doubling time and velocity from
// the paired diagnosis / metastatic-diagnosis measurements.
func Enhanced(records []extract.EnhancedRecord, reg *cohort.Registry, dicts recode.Dictionaries) ([]models.EnhancedRow, models.SourceReport) {
	rep := newReport(SourceEnhanced, len(records))

	partial := make(map[string][]models.EnhancedRow)
	for _, rec := range records {
		indexDate, ok := reg.IndexDate(rec.PatientID)
		if !ok {
			continue
		}

		row := models.EnhancedRow{
			PatientID:       rec.PatientID,
			GroupStage:      recode.Map(dicts.GroupStage, rec.GroupStage),
			TStage:          recode.Map(dicts.TStage, rec.TStage),
			NStage:          recode.Map(dicts.NStage, rec.NStage),
			MStage:          recode.Map(dicts.MStage, rec.MStage),
			GleasonGroup:    recode.Map(dicts.Gleason, rec.GleasonScore),
			Histology:       stringPtr(rec.Histology),
			PSADiagnosis:    rec.PSADiagnosis,
			PSAMetDiagnosis: rec.PSAMetDiagnosis,
		}

		if rec.DiagnosisDate != nil && rec.MetDiagnosisDate != nil {
			row.DaysDiagnosisToMet = intPtr(cohort.DaysBetween(*rec.DiagnosisDate, *rec.MetDiagnosisDate))
		}
		if rec.MetDiagnosisDate != nil {
			row.MetDiagnosisYear = intPtr(rec.MetDiagnosisDate.Year())
		}

		// Castrate resistance counts only when it was reached by the
		// index date; the interval is derived only for those patients.
		isCRPC := 0
		if rec.CRPCDate != nil && !rec.CRPCDate.After(indexDate) {
			isCRPC = 1
			if rec.DiagnosisDate != nil {
				row.DaysDiagnosisToCRPC = intPtr(cohort.DaysBetween(*rec.DiagnosisDate, *rec.CRPCDate))
			}
		}
		row.IsCRPC = intPtr(isCRPC)

		if rec.PSADiagnosis != nil && rec.PSAMetDiagnosis != nil {
			metrics := reduce.Rates(*rec.PSADiagnosis, rec.DiagnosisDate, *rec.PSAMetDiagnosis, rec.MetDiagnosisDate)
			row.PSAVelocity = metrics.Velocity
			row.PSADoubling = metrics.Doubling
		}

		partial[rec.PatientID] = append(partial[rec.PatientID], row)
	}

	rows, duplicates := coverage.Reinstate(reg, partial, func(patientID string) models.EnhancedRow {
		return models.EnhancedRow{PatientID: patientID}
	})
	warnDuplicates(&rep, duplicates)
	rep.RowsWritten = len(rows)
	return rows, rep
}
