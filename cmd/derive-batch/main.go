package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/cohortforge/platform/pkg/common/logger"
	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/cohortforge/platform/pkg/derive"
	"github.com/cohortforge/platform/pkg/extract"
	"github.com/cohortforge/platform/pkg/recode"
	"github.com/cohortforge/platform/pkg/sources"
)

func main() {
	var (
		extractDir      = flag.String("extracts", "./extracts", "directory holding the source extract files")
		outputDir       = flag.String("out", "./derived", "directory for the derived output tables")
		registryFile    = flag.String("registry", "Enhanced_MetProstate.csv", "extract holding the index registry")
		indexDateColumn = flag.String("index-date-column", "MetDiagnosisDate", "column holding the index date")
		dictionaryFile  = flag.String("dictionaries", "", "optional YAML recoding dictionary file")
		ecogBefore      = flag.Int("ecog-days-before", 90, "ECOG lookback in days")
		ecogAfter       = flag.Int("ecog-days-after", 0, "ECOG lookahead in days")
		ecogFurther     = flag.Int("ecog-days-further", 180, "ECOG progression lookback in days")
		biomarkerBefore = flag.Int("biomarker-days-before", -1, "biomarker lookback in days, -1 for unbounded")
		biomarkerAfter  = flag.Int("biomarker-days-after", 0, "biomarker lookahead in days")
	)
	flag.Parse()

	logger.Init()

	dicts, err := recode.Load(*dictionaryFile)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load recoding dictionaries")
	}

	opts := models.RunOptions{
		RegistryFile:    *registryFile,
		IndexDateColumn: *indexDateColumn,
		EcogDaysBefore:  *ecogBefore,
		EcogDaysAfter:   *ecogAfter,
		EcogDaysFurther: *ecogFurther,
		BiomarkerAfter:  *biomarkerAfter,
		Sources: map[string]string{
			sources.SourceEnhanced:     "Enhanced_MetProstate.csv",
			sources.SourceDemographics: "Demographics.csv",
			sources.SourcePractice:     "Practice.csv",
			sources.SourceBiomarkers:   "Enhanced_MetPC_Biomarkers.csv",
			sources.SourceEcog:         "ECOG.csv",
		},
	}
	if *biomarkerBefore >= 0 {
		opts.BiomarkerBefore = biomarkerBefore
	}

	service := derive.NewService(extract.DirLoader{Dir: *extractDir}, dicts)
	result, err := service.Run(context.Background(), opts)
	if err != nil {
		logger.Log.WithError(err).Fatal("derivation run failed")
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Log.WithError(err).Fatal("failed to create output directory")
	}
	if err := writeOutputs(*outputDir, result); err != nil {
		logger.Log.WithError(err).Fatal("failed to write output tables")
	}

	failed := 0
	for _, rep := range result.Reports {
		entry := logger.Log.WithFields(map[string]interface{}{
			"source":       rep.Source,
			"status":       rep.Status,
			"rows_read":    rep.RowsRead,
			"rows_written": rep.RowsWritten,
			"warnings":     len(rep.Warnings),
		})
		if rep.Status == models.SourceStatusFailed {
			failed++
			entry.WithField("error", rep.Error).Error("source failed")
		} else {
			entry.Info("source completed")
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"cohort_size": result.CohortSize,
		"output_dir":  *outputDir,
	}).Info("derivation run completed")

	if failed > 0 {
		os.Exit(1)
	}
}

func writeOutputs(dir string, result models.RunResult) error {
	for _, table := range outputTables(result) {
		if table.empty {
			continue
		}
		f, err := os.Create(filepath.Join(dir, table.name))
		if err != nil {
			return err
		}
		err = extract.WriteTable(f, table.columns, table.rows)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
	}
	return nil
}
