package derive

import (
	"testing"

	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/cohortforge/platform/pkg/sources"
)

func eventDefaults() models.RunOptions {
	return models.RunOptions{
		EcogDaysBefore:  90,
		EcogDaysAfter:   0,
		EcogDaysFurther: 180,
		BiomarkerAfter:  0,
	}
}

func TestOptionsFromEventKeepsExplicitZeroWindows(t *testing.T) {
	data := map[string]interface{}{
		"registry_file":     "registry.csv",
		"index_date_column": "MetDiagnosisDate",
		"ecog_days_before":  0,
		"ecog_days_further": 0,
	}

	opts, err := OptionsFromEvent(data, eventDefaults())
	if err != nil {
		t.Fatalf("decoding event payload failed: %v", err)
	}
	if opts.EcogDaysBefore != 0 {
		t.Fatalf("explicit zero lookback overridden to %d", opts.EcogDaysBefore)
	}
	if opts.EcogDaysFurther != 0 {
		t.Fatalf("explicit zero further lookback overridden to %d", opts.EcogDaysFurther)
	}
}

func TestOptionsFromEventAppliesDefaultsForAbsentFields(t *testing.T) {
	data := map[string]interface{}{
		"registry_file":     "registry.csv",
		"index_date_column": "MetDiagnosisDate",
	}

	opts, err := OptionsFromEvent(data, eventDefaults())
	if err != nil {
		t.Fatalf("decoding event payload failed: %v", err)
	}
	if opts.EcogDaysBefore != 90 || opts.EcogDaysFurther != 180 {
		t.Fatalf("expected window defaults 90/180, got %d/%d", opts.EcogDaysBefore, opts.EcogDaysFurther)
	}
	if opts.BiomarkerBefore != nil {
		t.Fatalf("expected unbounded biomarker lookback, got %d", *opts.BiomarkerBefore)
	}
	if opts.RegistryFile != "registry.csv" || opts.IndexDateColumn != "MetDiagnosisDate" {
		t.Fatalf("payload fields lost: %+v", opts)
	}
}

func TestOptionsFromEventBoundedBiomarkerLookback(t *testing.T) {
	data := map[string]interface{}{
		"registry_file":         "registry.csv",
		"index_date_column":     "MetDiagnosisDate",
		"biomarker_days_before": 365,
		"sources": map[string]interface{}{
			sources.SourceBiomarkers: "biomarkers.csv",
		},
	}

	opts, err := OptionsFromEvent(data, eventDefaults())
	if err != nil {
		t.Fatalf("decoding event payload failed: %v", err)
	}
	if opts.BiomarkerBefore == nil || *opts.BiomarkerBefore != 365 {
		t.Fatalf("expected bounded biomarker lookback 365, got %v", opts.BiomarkerBefore)
	}
	if opts.Sources[sources.SourceBiomarkers] != "biomarkers.csv" {
		t.Fatalf("sources map lost: %v", opts.Sources)
	}
}
