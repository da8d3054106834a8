package extract

import "time"

// Typed rows for each source extract. Pointer fields distinguish a
// blank cell (nil) from a parsed value; downstream window logic drops
// individual events with missing dates rather than whole patients.

type EnhancedRecord struct {
	PatientID        string
	GroupStage       string
	TStage           string
	NStage           string
	MStage           string
	GleasonScore     string
	Histology        string
	DiagnosisDate    *time.Time
	MetDiagnosisDate *time.Time
	CRPCDate         *time.Time
	PSADiagnosis     *float64
	PSAMetDiagnosis  *float64
}

type DemographicsRecord struct {
	PatientID string
	Gender    string
	Race      string
	Ethnicity string
	State     string
	BirthYear *int
}

type PracticeRecord struct {
	PatientID    string
	PracticeType string
}

type BiomarkerRecord struct {
	PatientID            string
	BiomarkerName        string
	BiomarkerStatus      string
	ResultDate           *time.Time
	SpecimenReceivedDate *time.Time
}

type EcogRecord struct {
	PatientID string
	EcogDate  *time.Time
	EcogValue *int
}
