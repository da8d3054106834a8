package derive

import (
	"encoding/json"

	"github.com/cohortforge/platform/pkg/common/models"
)

// eventRunOptions mirrors models.RunOptions with pointer window fields
// so a field absent from an event payload is distinguishable from an
// explicit zero.
type eventRunOptions struct {
	RegistryFile    string            `json:"registry_file"`
	IndexDateColumn string            `json:"index_date_column"`
	EcogDaysBefore  *int              `json:"ecog_days_before"`
	EcogDaysAfter   *int              `json:"ecog_days_after"`
	EcogDaysFurther *int              `json:"ecog_days_further"`
	BiomarkerBefore *int              `json:"biomarker_days_before"`
	BiomarkerAfter  *int              `json:"biomarker_days_after"`
	DictionaryFile  string            `json:"dictionary_file"`
	Sources         map[string]string `json:"sources"`
	RequestedBy     string            `json:"requested_by"`
}

// OptionsFromEvent decodes run options from an event payload. Window
// fields missing from the payload take the supplied defaults; an
// explicit zero stays zero. BiomarkerBefore passes through unchanged
// because nil already carries meaning there (unbounded lookback).
func OptionsFromEvent(data map[string]interface{}, defaults models.RunOptions) (models.RunOptions, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return models.RunOptions{}, err
	}
	var raw eventRunOptions
	if err := json.Unmarshal(payload, &raw); err != nil {
		return models.RunOptions{}, err
	}

	opts := defaults
	if raw.RegistryFile != "" {
		opts.RegistryFile = raw.RegistryFile
	}
	if raw.IndexDateColumn != "" {
		opts.IndexDateColumn = raw.IndexDateColumn
	}
	if raw.DictionaryFile != "" {
		opts.DictionaryFile = raw.DictionaryFile
	}
	if raw.Sources != nil {
		opts.Sources = raw.Sources
	}
	if raw.RequestedBy != "" {
		opts.RequestedBy = raw.RequestedBy
	}
	if raw.EcogDaysBefore != nil {
		opts.EcogDaysBefore = *raw.EcogDaysBefore
	}
	if raw.EcogDaysAfter != nil {
		opts.EcogDaysAfter = *raw.EcogDaysAfter
	}
	if raw.EcogDaysFurther != nil {
		opts.EcogDaysFurther = *raw.EcogDaysFurther
	}
	if raw.BiomarkerAfter != nil {
		opts.BiomarkerAfter = *raw.BiomarkerAfter
	}
	opts.BiomarkerBefore = raw.BiomarkerBefore

	return opts, nil
}
