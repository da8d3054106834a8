package sources

import (
	"math"
	"testing"

	"github.com/cohortforge/platform/pkg/cohort"
	"github.com/cohortforge/platform/pkg/extract"
	"github.com/cohortforge/platform/pkg/recode"
)

func TestEnhancedRecodesAndIntervals(t *testing.T) {
	reg := testRegistry(t,
		cohort.Entry{PatientID: "P1", IndexDate: day(2019, 3, 2)},
		cohort.Entry{PatientID: "P2", IndexDate: day(2019, 6, 1)},
	)
	dicts := recode.Defaults()

	records := []extract.EnhancedRecord{
		{
			PatientID:        "P1",
			GroupStage:       "IVB",
			TStage:           "T0",
			NStage:           "NX",
			MStage:           "M1b",
			GleasonScore:     "7 (when breakdown not available)",
			Histology:        "Adenocarcinoma",
			DiagnosisDate:    dayPtr(2019, 1, 1),
			MetDiagnosisDate: dayPtr(2019, 3, 2),
			CRPCDate:         dayPtr(2019, 2, 15),
			PSADiagnosis:     floatVal(10),
			PSAMetDiagnosis:  floatVal(20),
		},
		{
			PatientID:        "P2",
			GroupStage:       "Garbled stage",
			DiagnosisDate:    dayPtr(2019, 5, 1),
			MetDiagnosisDate: dayPtr(2019, 6, 1),
			// CRPC reached only after the index date.
			CRPCDate: dayPtr(2019, 9, 1),
		},
	}

	rows, rep := Enhanced(records, reg, dicts)
	if len(rows) != reg.Len() {
		t.Fatalf("coverage invariant violated: %d rows for %d patients", len(rows), reg.Len())
	}
	if rep.RowsWritten != len(rows) {
		t.Fatalf("report rows_written %d, want %d", rep.RowsWritten, len(rows))
	}

	p1 := rows[0]
	if p1.GroupStage == nil || *p1.GroupStage != "IV" {
		t.Fatalf("expected IVB consolidated to IV, got %v", p1.GroupStage)
	}
	if p1.TStage == nil || *p1.TStage != "T1" {
		t.Fatalf("expected T0 folded into T1, got %v", p1.TStage)
	}
	if p1.NStage == nil || *p1.NStage != recode.Unknown {
		t.Fatalf("expected NX recoded to unknown, got %v", p1.NStage)
	}
	if p1.GleasonGroup == nil || *p1.GleasonGroup != "3" {
		t.Fatalf("expected undifferentiated 7 in grade group 3, got %v", p1.GleasonGroup)
	}
	if p1.DaysDiagnosisToMet == nil || *p1.DaysDiagnosisToMet != 60 {
		t.Fatalf("expected 60 days diagnosis to metastasis, got %v", p1.DaysDiagnosisToMet)
	}
	if p1.MetDiagnosisYear == nil || *p1.MetDiagnosisYear != 2019 {
		t.Fatalf("expected metastatic diagnosis year 2019, got %v", p1.MetDiagnosisYear)
	}
	if p1.IsCRPC == nil || *p1.IsCRPC != 1 {
		t.Fatalf("expected CRPC by index date, got %v", p1.IsCRPC)
	}
	if p1.DaysDiagnosisToCRPC == nil || *p1.DaysDiagnosisToCRPC != 45 {
		t.Fatalf("expected 45 days diagnosis to CRPC, got %v", p1.DaysDiagnosisToCRPC)
	}
	if p1.PSAVelocity == nil || math.Abs(*p1.PSAVelocity-5.0) > 1e-9 {
		t.Fatalf("expected PSA velocity 5.0 per month, got %v", p1.PSAVelocity)
	}
	if p1.PSADoubling == nil || math.Abs(*p1.PSADoubling-2.0) > 1e-9 {
		t.Fatalf("expected PSA doubling time 2.0 months, got %v", p1.PSADoubling)
	}

	p2 := rows[1]
	if p2.GroupStage == nil || *p2.GroupStage != recode.Unknown {
		t.Fatalf("expected unmapped stage to recode to unknown, got %v", p2.GroupStage)
	}
	if p2.IsCRPC == nil || *p2.IsCRPC != 0 {
		t.Fatalf("expected CRPC after index date to count as 0, got %v", p2.IsCRPC)
	}
	if p2.DaysDiagnosisToCRPC != nil {
		t.Fatalf("expected no CRPC interval when not castrate resistant, got %d", *p2.DaysDiagnosisToCRPC)
	}
	if p2.PSAVelocity != nil || p2.PSADoubling != nil {
		t.Fatal("expected PSA metrics missing without measurements")
	}
}

func TestEnhancedAbsentPatientRowIsEmpty(t *testing.T) {
	reg := testRegistry(t, cohort.Entry{PatientID: "P1", IndexDate: day(2019, 3, 2)})

	rows, _ := Enhanced(nil, reg, recode.Defaults())
	if len(rows) != 1 {
		t.Fatalf("expected placeholder row, got %d rows", len(rows))
	}
	row := rows[0]
	if row.PatientID != "P1" {
		t.Fatalf("unexpected patient id %q", row.PatientID)
	}
	if row.GroupStage != nil || row.IsCRPC != nil || row.PSAVelocity != nil {
		t.Fatal("expected all derived fields missing for absent patient")
	}
}
