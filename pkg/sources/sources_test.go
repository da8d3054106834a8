package sources

import (
	"testing"
	"time"

	"github.com/cohortforge/platform/pkg/cohort"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(year int, month time.Month, d int) *time.Time {
	t := day(year, month, d)
	return &t
}

func floatVal(v float64) *float64 {
	return &v
}

func testRegistry(t *testing.T, entries ...cohort.Entry) *cohort.Registry {
	t.Helper()
	reg, err := cohort.NewRegistry(entries)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return reg
}
