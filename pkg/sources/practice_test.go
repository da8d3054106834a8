package sources

import (
	"testing"

	"github.com/cohortforge/platform/pkg/cohort"
	"github.com/cohortforge/platform/pkg/extract"
)

func TestPracticeConsolidation(t *testing.T) {
	reg := testRegistry(t,
		cohort.Entry{PatientID: "P1", IndexDate: day(2020, 1, 1)},
		cohort.Entry{PatientID: "P2", IndexDate: day(2020, 1, 1)},
		cohort.Entry{PatientID: "P3", IndexDate: day(2020, 1, 1)},
		cohort.Entry{PatientID: "P4", IndexDate: day(2020, 1, 1)},
	)

	records := []extract.PracticeRecord{
		{PatientID: "P1", PracticeType: "COMMUNITY"},
		{PatientID: "P1", PracticeType: "COMMUNITY"},
		{PatientID: "P2", PracticeType: "COMMUNITY"},
		{PatientID: "P2", PracticeType: "ACADEMIC"},
		{PatientID: "P3", PracticeType: "  "},
		// P4 absent from the extract entirely.
	}

	rows, rep := Practice(records, reg)
	if len(rows) != reg.Len() {
		t.Fatalf("coverage invariant violated: %d rows for %d patients", len(rows), reg.Len())
	}
	if rep.RowsRead != len(records) {
		t.Fatalf("report rows_read %d, want %d", rep.RowsRead, len(records))
	}

	want := map[string]string{"P1": "COMMUNITY", "P2": PracticeBoth, "P3": PracticeUnknown}
	for _, row := range rows {
		expected, present := want[row.PatientID]
		if !present {
			if row.PracticeType != nil {
				t.Fatalf("expected %s practice type missing, got %q", row.PatientID, *row.PracticeType)
			}
			continue
		}
		if row.PracticeType == nil || *row.PracticeType != expected {
			t.Fatalf("expected %s practice type %q, got %v", row.PatientID, expected, row.PracticeType)
		}
	}
}

func TestPracticeIgnoresPatientsOutsideCohort(t *testing.T) {
	reg := testRegistry(t, cohort.Entry{PatientID: "P1", IndexDate: day(2020, 1, 1)})

	records := []extract.PracticeRecord{
		{PatientID: "STRANGER", PracticeType: "ACADEMIC"},
	}

	rows, _ := Practice(records, reg)
	if len(rows) != 1 || rows[0].PatientID != "P1" {
		t.Fatalf("expected only cohort patients in output, got %+v", rows)
	}
	if rows[0].PracticeType != nil {
		t.Fatalf("expected P1 practice type missing, got %q", *rows[0].PracticeType)
	}
}
