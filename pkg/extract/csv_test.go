package extract

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestReadRegistry(t *testing.T) {
	input := "PatientID,MetDiagnosisDate,Other\nP1,2021-03-04,x\nP2,2020-12-31,y\n"
	entries, err := ReadRegistry(strings.NewReader(input), "MetDiagnosisDate")
	if err != nil {
		t.Fatalf("failed to read registry: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].PatientID != "P1" || !entries[0].IndexDate.Equal(time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
}

func TestReadRegistryRejectsMissingColumn(t *testing.T) {
	input := "PatientID,SomeDate\nP1,2021-03-04\n"
	_, err := ReadRegistry(strings.NewReader(input), "MetDiagnosisDate")
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestReadRegistryRejectsMissingIndexDate(t *testing.T) {
	input := "PatientID,MetDiagnosisDate\nP1,\n"
	if _, err := ReadRegistry(strings.NewReader(input), "MetDiagnosisDate"); err == nil {
		t.Fatal("expected an error for a blank index date")
	}
}

func TestReadEcogParsesNullableFields(t *testing.T) {
	input := "PatientID,EcogDate,EcogValue\nP1,2021-01-15,2\nP1,,1\nP2,2021-02-01,\n"
	records, err := ReadEcog(strings.NewReader(input))
	if err != nil {
		t.Fatalf("failed to read ecog extract: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].EcogDate == nil || records[0].EcogValue == nil || *records[0].EcogValue != 2 {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].EcogDate != nil {
		t.Fatal("expected blank date to parse as nil")
	}
	if records[2].EcogValue != nil {
		t.Fatal("expected blank value to parse as nil")
	}
}

func TestReadBiomarkersKeepsBothDates(t *testing.T) {
	input := "PatientID,BiomarkerName,BiomarkerStatus,ResultDate,SpecimenReceivedDate\n" +
		"P1,BRCA,No BRCA mutation,,2021-01-10\n"
	records, err := ReadBiomarkers(strings.NewReader(input))
	if err != nil {
		t.Fatalf("failed to read biomarker extract: %v", err)
	}
	if records[0].ResultDate != nil {
		t.Fatal("expected missing ResultDate to stay nil at read time")
	}
	if records[0].SpecimenReceivedDate == nil {
		t.Fatal("expected SpecimenReceivedDate parsed")
	}
}

func TestFormatHelpers(t *testing.T) {
	if FormatString(nil) != "" || FormatInt(nil) != "" || FormatFloat(nil) != "" {
		t.Fatal("nil values must format as empty cells")
	}
	v := 2.5
	if FormatFloat(&v) != "2.5" {
		t.Fatalf("unexpected float formatting: %s", FormatFloat(&v))
	}
	n := 42
	if FormatInt(&n) != "42" {
		t.Fatalf("unexpected int formatting: %s", FormatInt(&n))
	}
}

func TestWriteTableIsDeterministic(t *testing.T) {
	rows := [][]string{{"P1", "1"}, {"P2", ""}}
	var a, b strings.Builder
	if err := WriteTable(&a, []string{"PatientID", "value"}, rows); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := WriteTable(&b, []string{"PatientID", "value"}, rows); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if a.String() != b.String() {
		t.Fatal("identical inputs must produce byte-identical output")
	}
}
