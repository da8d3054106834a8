package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cohortforge/platform/pkg/cohort"
)

var ErrMissingColumn = errors.New("required column not found in extract")

const dateLayout = "2006-01-02"

type header map[string]int

func readHeader(r *csv.Reader, required ...string) (header, error) {
	cols, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading extract header: %w", err)
	}
	h := make(header, len(cols))
	for i, name := range cols {
		h[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, fmt.Errorf("column %q: %w", name, ErrMissingColumn)
		}
	}
	return h, nil
}

func (h header) field(record []string, name string) string {
	idx, ok := h[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func (h header) date(record []string, name string) *time.Time {
	raw := h.field(record, name)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil
	}
	day := cohort.Midnight(parsed)
	return &day
}

func (h header) float(record []string, name string) *float64 {
	raw := h.field(record, name)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func (h header) int(record []string, name string) *int {
	raw := h.field(record, name)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

// ReadRegistry loads (PatientID, index date) pairs from a CSV extract.
// Rows with a blank or unparseable index date are rejected here rather
// than silently skipped: an incomplete registry would change cohort
// membership for every downstream table.
func ReadRegistry(r io.Reader, indexDateColumn string) ([]cohort.Entry, error) {
	if strings.TrimSpace(indexDateColumn) == "" {
		return nil, fmt.Errorf("index date column: %w", ErrMissingColumn)
	}
	cr := newReader(r)
	h, err := readHeader(cr, "PatientID", indexDateColumn)
	if err != nil {
		return nil, err
	}

	var entries []cohort.Entry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading registry row: %w", err)
		}
		date := h.date(record, indexDateColumn)
		if date == nil {
			return nil, fmt.Errorf("patient %s has no parseable %s", h.field(record, "PatientID"), indexDateColumn)
		}
		entries = append(entries, cohort.Entry{
			PatientID: h.field(record, "PatientID"),
			IndexDate: *date,
		})
	}
	return entries, nil
}

func ReadEnhanced(r io.Reader) ([]EnhancedRecord, error) {
	cr := newReader(r)
	h, err := readHeader(cr, "PatientID")
	if err != nil {
		return nil, err
	}

	var records []EnhancedRecord
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading enhanced row: %w", err)
		}
		records = append(records, EnhancedRecord{
			PatientID:        h.field(record, "PatientID"),
			GroupStage:       h.field(record, "GroupStage"),
			TStage:           h.field(record, "TStage"),
			NStage:           h.field(record, "NStage"),
			MStage:           h.field(record, "MStage"),
			GleasonScore:     h.field(record, "GleasonScore"),
			Histology:        h.field(record, "Histology"),
			DiagnosisDate:    h.date(record, "DiagnosisDate"),
			MetDiagnosisDate: h.date(record, "MetDiagnosisDate"),
			CRPCDate:         h.date(record, "CRPCDate"),
			PSADiagnosis:     h.float(record, "PSADiagnosis"),
			PSAMetDiagnosis:  h.float(record, "PSAMetDiagnosis"),
		})
	}
	return records, nil
}

func ReadDemographics(r io.Reader) ([]DemographicsRecord, error) {
	cr := newReader(r)
	h, err := readHeader(cr, "PatientID")
	if err != nil {
		return nil, err
	}

	var records []DemographicsRecord
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading demographics row: %w", err)
		}
		records = append(records, DemographicsRecord{
			PatientID: h.field(record, "PatientID"),
			Gender:    h.field(record, "Gender"),
			Race:      h.field(record, "Race"),
			Ethnicity: h.field(record, "Ethnicity"),
			State:     h.field(record, "State"),
			BirthYear: h.int(record, "BirthYear"),
		})
	}
	return records, nil
}

func ReadPractice(r io.Reader) ([]PracticeRecord, error) {
	cr := newReader(r)
	h, err := readHeader(cr, "PatientID", "PracticeType")
	if err != nil {
		return nil, err
	}

	var records []PracticeRecord
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading practice row: %w", err)
		}
		records = append(records, PracticeRecord{
			PatientID:    h.field(record, "PatientID"),
			PracticeType: h.field(record, "PracticeType"),
		})
	}
	return records, nil
}

func ReadBiomarkers(r io.Reader) ([]BiomarkerRecord, error) {
	cr := newReader(r)
	h, err := readHeader(cr, "PatientID", "BiomarkerName")
	if err != nil {
		return nil, err
	}

	var records []BiomarkerRecord
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading biomarker row: %w", err)
		}
		records = append(records, BiomarkerRecord{
			PatientID:            h.field(record, "PatientID"),
			BiomarkerName:        h.field(record, "BiomarkerName"),
			BiomarkerStatus:      h.field(record, "BiomarkerStatus"),
			ResultDate:           h.date(record, "ResultDate"),
			SpecimenReceivedDate: h.date(record, "SpecimenReceivedDate"),
		})
	}
	return records, nil
}

func ReadEcog(r io.Reader) ([]EcogRecord, error) {
	cr := newReader(r)
	h, err := readHeader(cr, "PatientID")
	if err != nil {
		return nil, err
	}

	var records []EcogRecord
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ecog row: %w", err)
		}
		records = append(records, EcogRecord{
			PatientID: h.field(record, "PatientID"),
			EcogDate:  h.date(record, "EcogDate"),
			EcogValue: h.int(record, "EcogValue"),
		})
	}
	return records, nil
}
