package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	runsQueued        atomic.Int64
	runsCompleted     atomic.Int64
	runsFailed        atomic.Int64
	patientsProcessed atomic.Int64
	sourceWarnings    atomic.Int64
	sourceFailures    atomic.Int64
)

func Init() {}

func ObserveRunQueued() {
	runsQueued.Add(1)
}

func ObserveRunCompleted(cohortSize, warnings, failedSources int) {
	runsCompleted.Add(1)
	patientsProcessed.Add(int64(cohortSize))
	sourceWarnings.Add(int64(warnings))
	sourceFailures.Add(int64(failedSources))
}

func ObserveRunFailed() {
	runsFailed.Add(1)
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP cohortforge_derive_runs_queued_total Number of derivation runs accepted.\n")
	fmt.Fprintf(w, "# TYPE cohortforge_derive_runs_queued_total counter\n")
	fmt.Fprintf(w, "cohortforge_derive_runs_queued_total %d\n", runsQueued.Load())

	fmt.Fprintf(w, "# HELP cohortforge_derive_runs_completed_total Number of derivation runs completed.\n")
	fmt.Fprintf(w, "# TYPE cohortforge_derive_runs_completed_total counter\n")
	fmt.Fprintf(w, "cohortforge_derive_runs_completed_total %d\n", runsCompleted.Load())

	fmt.Fprintf(w, "# HELP cohortforge_derive_runs_failed_total Number of derivation runs failed.\n")
	fmt.Fprintf(w, "# TYPE cohortforge_derive_runs_failed_total counter\n")
	fmt.Fprintf(w, "cohortforge_derive_runs_failed_total %d\n", runsFailed.Load())

	fmt.Fprintf(w, "# HELP cohortforge_derive_patients_processed_total Number of cohort patients processed across completed runs.\n")
	fmt.Fprintf(w, "# TYPE cohortforge_derive_patients_processed_total counter\n")
	fmt.Fprintf(w, "cohortforge_derive_patients_processed_total %d\n", patientsProcessed.Load())

	fmt.Fprintf(w, "# HELP cohortforge_derive_source_warnings_total Number of data-quality warnings raised by source routines.\n")
	fmt.Fprintf(w, "# TYPE cohortforge_derive_source_warnings_total counter\n")
	fmt.Fprintf(w, "cohortforge_derive_source_warnings_total %d\n", sourceWarnings.Load())

	fmt.Fprintf(w, "# HELP cohortforge_derive_source_failures_total Number of source routines that failed inside otherwise successful runs.\n")
	fmt.Fprintf(w, "# TYPE cohortforge_derive_source_failures_total counter\n")
	fmt.Fprintf(w, "cohortforge_derive_source_failures_total %d\n", sourceFailures.Load())
}
