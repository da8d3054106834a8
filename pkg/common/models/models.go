package models

import (
	"time"

	"github.com/google/uuid"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // extract.delivered, derive.run.started, derive.run.completed, derive.run.failed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Per-source feature rows. Pointer fields are the explicit missing
// marker: nil means no qualifying event resolved for the patient, which
// is distinct from a mapped "unknown" category.

type EnhancedRow struct {
	PatientID           string   `json:"patient_id"`
	GroupStage          *string  `json:"group_stage,omitempty"`
	TStage              *string  `json:"t_stage,omitempty"`
	NStage              *string  `json:"n_stage,omitempty"`
	MStage              *string  `json:"m_stage,omitempty"`
	GleasonGroup        *string  `json:"gleason_group,omitempty"`
	Histology           *string  `json:"histology,omitempty"`
	DaysDiagnosisToMet  *int     `json:"days_diagnosis_to_met,omitempty"`
	MetDiagnosisYear    *int     `json:"met_diagnosis_year,omitempty"`
	IsCRPC              *int     `json:"is_crpc,omitempty"`
	DaysDiagnosisToCRPC *int     `json:"days_diagnosis_to_crpc,omitempty"`
	PSADiagnosis        *float64 `json:"psa_diagnosis,omitempty"`
	PSAMetDiagnosis     *float64 `json:"psa_met_diagnosis,omitempty"`
	PSADoubling         *float64 `json:"psa_doubling,omitempty"`
	PSAVelocity         *float64 `json:"psa_velocity,omitempty"`
}

type DemographicsRow struct {
	PatientID string  `json:"patient_id"`
	Race      *string `json:"race,omitempty"`
	Ethnicity *string `json:"ethnicity,omitempty"`
	Age       *int    `json:"age,omitempty"`
	Region    *string `json:"region,omitempty"`
}

type PracticeRow struct {
	PatientID    string  `json:"patient_id"`
	PracticeType *string `json:"practice_type,omitempty"`
}

type BiomarkerRow struct {
	PatientID  string  `json:"patient_id"`
	BRCAStatus *string `json:"brca_status,omitempty"`
}

type EcogRow struct {
	PatientID     string `json:"patient_id"`
	EcogIndex     *int   `json:"ecog_index,omitempty"`
	EcogNewlyGte2 *int   `json:"ecog_newly_gte2,omitempty"`
}

// Run lifecycle
const (
	RunStatusQueued    = "queued"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"

	SourceStatusCompleted = "completed"
	SourceStatusFailed    = "failed"
	SourceStatusSkipped   = "skipped"
)

// SourceReport is the structured diagnostics object each source routine
// returns alongside its rows, so data-quality findings are inspectable
// without scraping logs.
type SourceReport struct {
	Source      string   `json:"source"`
	Status      string   `json:"status"`
	RowsRead    int      `json:"rows_read"`
	RowsWritten int      `json:"rows_written"`
	Warnings    []string `json:"warnings,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func (r *SourceReport) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

type RunOptions struct {
	RegistryFile    string            `json:"registry_file"`
	IndexDateColumn string            `json:"index_date_column"`
	EcogDaysBefore  int               `json:"ecog_days_before"`
	EcogDaysAfter   int               `json:"ecog_days_after"`
	EcogDaysFurther int               `json:"ecog_days_further"`
	BiomarkerBefore *int              `json:"biomarker_days_before"` // nil = unbounded lookback
	BiomarkerAfter  int               `json:"biomarker_days_after"`
	DictionaryFile  string            `json:"dictionary_file,omitempty"`
	Sources         map[string]string `json:"sources"` // source name -> extract file
	RequestedBy     string            `json:"requested_by,omitempty"`
}

type RunResult struct {
	Enhanced     []EnhancedRow     `json:"enhanced,omitempty"`
	Demographics []DemographicsRow `json:"demographics,omitempty"`
	Practice     []PracticeRow     `json:"practice,omitempty"`
	Biomarkers   []BiomarkerRow    `json:"biomarkers,omitempty"`
	Ecog         []EcogRow         `json:"ecog,omitempty"`
	Reports      []SourceReport    `json:"reports"`
	CohortSize   int               `json:"cohort_size"`
}

type Run struct {
	ID           uuid.UUID      `json:"id"`
	Status       string         `json:"status"`
	Options      RunOptions     `json:"options"`
	CohortSize   int            `json:"cohort_size"`
	Reports      []SourceReport `json:"reports,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	RequestedBy  string         `json:"requested_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// Feature store models
type Feature struct {
	Name      string      `json:"name"`
	Value     interface{} `json:"value"`
	Timestamp time.Time   `json:"timestamp"`
}

type FeatureSet struct {
	PatientID string             `json:"patient_id"`
	Features  map[string]Feature `json:"features"`
	Version   int                `json:"version"`
}
