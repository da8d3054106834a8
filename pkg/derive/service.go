package derive

import (
	"context"
	"fmt"
	"io"

	"github.com/cohortforge/platform/pkg/cohort"
	"github.com/cohortforge/platform/pkg/common/logger"
	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/cohortforge/platform/pkg/extract"
	"github.com/cohortforge/platform/pkg/recode"
	"github.com/cohortforge/platform/pkg/sources"
	"github.com/cohortforge/platform/pkg/window"
)

// Service executes one derivation run: it loads and validates the index
// registry, then processes every configured source table against it.
// Each source is isolated behind its own failure boundary: a malformed
// biomarker extract yields a failed biomarker report without stopping
// demographics from completing.
type Service struct {
	loader extract.Loader
	dicts  recode.Dictionaries
}

func NewService(loader extract.Loader, dicts recode.Dictionaries) *Service {
	return &Service{loader: loader, dicts: dicts}
}

func windowsFor(opts models.RunOptions) (near, further, biomarker window.Window) {
	near = window.Bounded(opts.EcogDaysBefore, opts.EcogDaysAfter)
	further = window.Bounded(opts.EcogDaysFurther, opts.EcogDaysAfter)
	if opts.BiomarkerBefore == nil {
		biomarker = window.Unbounded(opts.BiomarkerAfter)
	} else {
		biomarker = window.Bounded(*opts.BiomarkerBefore, opts.BiomarkerAfter)
	}
	return near, further, biomarker
}

// ValidateOptions rejects bad window configuration before any extract
// is opened. These are caller bugs, not data issues.
func ValidateOptions(opts models.RunOptions) error {
	if opts.RegistryFile == "" {
		return fmt.Errorf("registry file: %w", extract.ErrMissingColumn)
	}
	if opts.IndexDateColumn == "" {
		return fmt.Errorf("index date column: %w", extract.ErrMissingColumn)
	}
	near, further, biomarker := windowsFor(opts)
	for _, w := range []window.Window{near, further, biomarker} {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Run processes all configured sources and returns the per-source
// feature tables plus their reports. Registry problems are hard errors;
// everything downstream degrades per source.
func (s *Service) Run(ctx context.Context, opts models.RunOptions) (models.RunResult, error) {
	var result models.RunResult

	if err := ValidateOptions(opts); err != nil {
		return result, err
	}

	registry, err := s.loadRegistry(ctx, opts)
	if err != nil {
		return result, err
	}
	result.CohortSize = registry.Len()

	near, further, biomarker := windowsFor(opts)

	for _, source := range []string{
		sources.SourceEnhanced,
		sources.SourceDemographics,
		sources.SourcePractice,
		sources.SourceBiomarkers,
		sources.SourceEcog,
	} {
		file, configured := opts.Sources[source]
		if !configured {
			result.Reports = append(result.Reports, models.SourceReport{
				Source: source,
				Status: models.SourceStatusSkipped,
			})
			continue
		}
		rep := s.processSource(ctx, source, file, registry, near, further, biomarker, &result)
		for _, warning := range rep.Warnings {
			logger.Log.WithFields(map[string]interface{}{
				"source": source,
			}).Warn(warning)
		}
		if rep.Status == models.SourceStatusFailed {
			logger.Log.WithFields(map[string]interface{}{
				"source": source,
				"error":  rep.Error,
			}).Error("source processing failed")
		} else {
			logger.Log.WithFields(map[string]interface{}{
				"source":       source,
				"rows_read":    rep.RowsRead,
				"rows_written": rep.RowsWritten,
			}).Info("source processed")
		}
		result.Reports = append(result.Reports, rep)
	}

	return result, nil
}

func (s *Service) loadRegistry(ctx context.Context, opts models.RunOptions) (*cohort.Registry, error) {
	rc, err := s.loader.Open(ctx, opts.RegistryFile)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	entries, err := extract.ReadRegistry(rc, opts.IndexDateColumn)
	if err != nil {
		return nil, err
	}
	registry, err := cohort.NewRegistry(entries)
	if err != nil {
		return nil, err
	}
	logger.Log.WithFields(map[string]interface{}{
		"patients":          registry.Len(),
		"index_date_column": opts.IndexDateColumn,
	}).Info("index registry loaded")
	return registry, nil
}

// processSource runs one source routine behind a recover boundary so an
// unexpected failure is reported for that source alone.
func (s *Service) processSource(ctx context.Context, source, file string, registry *cohort.Registry, near, further, biomarker window.Window, result *models.RunResult) (rep models.SourceReport) {
	rep = models.SourceReport{Source: source, Status: models.SourceStatusCompleted}

	defer func() {
		if recovered := recover(); recovered != nil {
			rep.Status = models.SourceStatusFailed
			rep.Error = fmt.Sprintf("panic: %v", recovered)
		}
	}()

	rc, err := s.loader.Open(ctx, file)
	if err != nil {
		rep.Status = models.SourceStatusFailed
		rep.Error = err.Error()
		return rep
	}
	defer rc.Close()

	if err := s.dispatch(source, rc, registry, near, further, biomarker, result, &rep); err != nil {
		rep.Status = models.SourceStatusFailed
		rep.Error = err.Error()
	}
	return rep
}

func (s *Service) dispatch(source string, r io.Reader, registry *cohort.Registry, near, further, biomarker window.Window, result *models.RunResult, rep *models.SourceReport) error {
	switch source {
	case sources.SourceEnhanced:
		records, err := extract.ReadEnhanced(r)
		if err != nil {
			return err
		}
		result.Enhanced, *rep = sources.Enhanced(records, registry, s.dicts)
	case sources.SourceDemographics:
		records, err := extract.ReadDemographics(r)
		if err != nil {
			return err
		}
		result.Demographics, *rep = sources.Demographics(records, registry, s.dicts)
	case sources.SourcePractice:
		records, err := extract.ReadPractice(r)
		if err != nil {
			return err
		}
		result.Practice, *rep = sources.Practice(records, registry)
	case sources.SourceBiomarkers:
		records, err := extract.ReadBiomarkers(r)
		if err != nil {
			return err
		}
		rows, biomarkerRep, err := sources.Biomarkers(records, registry, biomarker)
		if err != nil {
			return err
		}
		result.Biomarkers, *rep = rows, biomarkerRep
	case sources.SourceEcog:
		records, err := extract.ReadEcog(r)
		if err != nil {
			return err
		}
		rows, ecogRep, err := sources.Ecog(records, registry, near, further)
		if err != nil {
			return err
		}
		result.Ecog, *rep = rows, ecogRep
	default:
		return fmt.Errorf("unknown source %q", source)
	}
	return nil
}
