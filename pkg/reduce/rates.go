package reduce

import (
	"math"
	"time"

	"github.com/cohortforge/platform/pkg/cohort"
)

// MinElapsedDays is the shortest measurement gap rate metrics accept.
// Near-simultaneous readings amplify measurement noise into the slope,
// so pairs closer than this are skipped, not errored.
const MinElapsedDays = 30

// RateMetrics holds the two closed-form metrics derived from a pair of
// dated measurements. The preconditions are independent: a patient can
// qualify for velocity while doubling stays missing.
type RateMetrics struct {
	Velocity *float64
	Doubling *float64
}

// Rates computes change velocity per 30-day unit and log-2 doubling
// time in 30-day months from two dated measurements. Shared
// preconditions: both dates present, elapsed days strictly greater than
// MinElapsedDays, both values strictly positive. Doubling additionally
// requires the later value to exceed the earlier one, since the
// logarithmic formula is meaningless for non-increasing series.
func Rates(t0Value float64, t0Date *time.Time, t1Value float64, t1Date *time.Time) RateMetrics {
	var metrics RateMetrics

	if t0Date == nil || t1Date == nil {
		return metrics
	}
	elapsed := cohort.DaysBetween(*t0Date, *t1Date)
	if elapsed <= MinElapsedDays {
		return metrics
	}
	if t0Value <= 0 || t1Value <= 0 {
		return metrics
	}

	months := float64(elapsed) / 30.0

	velocity := (t1Value - t0Value) / months
	metrics.Velocity = &velocity

	if t1Value > t0Value {
		doubling := (months * math.Ln2) / (math.Log(t1Value) - math.Log(t0Value))
		metrics.Doubling = &doubling
	}

	return metrics
}
