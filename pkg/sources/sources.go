// Package sources holds one processing routine per extract table. Every
// routine follows the same shape: join events to the index registry,
// resolve a time window around each patient's index date, reduce the
// qualifying events to per-patient features, and reinstate full cohort
// coverage. Routines are pure functions of their inputs and report
// data-quality findings through the returned SourceReport instead of a
// global logging subsystem.
package sources

import (
	"fmt"
	"strings"

	"github.com/cohortforge/platform/pkg/common/models"
)

const (
	SourceEnhanced     = "enhanced"
	SourceDemographics = "demographics"
	SourcePractice     = "practice"
	SourceBiomarkers   = "biomarkers"
	SourceEcog         = "ecog"
)

func newReport(source string, rowsRead int) models.SourceReport {
	return models.SourceReport{
		Source:   source,
		Status:   models.SourceStatusCompleted,
		RowsRead: rowsRead,
	}
}

// warnDuplicates surfaces duplicate patient keys without deduplicating:
// extra rows indicate an upstream data-quality issue the caller must
// judge, so they stay in the output.
func warnDuplicates(rep *models.SourceReport, duplicates []string) {
	if len(duplicates) == 0 {
		return
	}
	rep.Warn(fmt.Sprintf("duplicate patient IDs retained in output: %s", strings.Join(duplicates, ", ")))
}

func stringPtr(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func intPtr(v int) *int {
	return &v
}
