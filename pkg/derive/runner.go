package derive

import (
	"context"
	"time"

	"github.com/cohortforge/platform/pkg/common/kafka"
	"github.com/cohortforge/platform/pkg/common/logger"
	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/cohortforge/platform/pkg/observability/metrics"
	"github.com/cohortforge/platform/pkg/storage"
	"github.com/google/uuid"
)

const (
	EventRunStarted   = "derive.run.started"
	EventRunCompleted = "derive.run.completed"
	EventRunFailed    = "derive.run.failed"
)

// Runner queues derivation runs, executes them on a bounded worker
// pool, persists lifecycle state, materializes the derived features,
// and announces run outcomes on the event bus.
type Runner struct {
	repo         *storage.RunRepository
	service      *Service
	featureStore *storage.FeatureStore
	producer     *kafka.Producer
	workers      chan struct{}
}

func NewRunner(repo *storage.RunRepository, svc *Service, featureStore *storage.FeatureStore, producer *kafka.Producer, maxWorkers int) *Runner {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Runner{
		repo:         repo,
		service:      svc,
		featureStore: featureStore,
		producer:     producer,
		workers:      make(chan struct{}, maxWorkers),
	}
}

// Enqueue validates the options, records a queued run, and starts it in
// the background. Invalid configuration is rejected here, before any
// extract is read.
func (r *Runner) Enqueue(ctx context.Context, opts models.RunOptions) (models.Run, error) {
	if err := ValidateOptions(opts); err != nil {
		return models.Run{}, err
	}

	run := models.Run{
		ID:          uuid.New(),
		Status:      models.RunStatusQueued,
		Options:     opts,
		RequestedBy: opts.RequestedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.repo.Create(ctx, run); err != nil {
		return models.Run{}, err
	}
	metrics.ObserveRunQueued()

	go r.run(run.ID, opts)

	return run, nil
}

func (r *Runner) Get(ctx context.Context, id uuid.UUID) (models.Run, error) {
	return r.repo.Get(ctx, id)
}

func (r *Runner) List(ctx context.Context, limit int) ([]models.Run, error) {
	return r.repo.List(ctx, limit)
}

func (r *Runner) run(runID uuid.UUID, opts models.RunOptions) {
	r.workers <- struct{}{}
	defer func() { <-r.workers }()

	ctx := context.Background()
	started := time.Now().UTC()
	_ = r.repo.Update(ctx, runID, map[string]interface{}{
		"status":     models.RunStatusRunning,
		"started_at": started,
	})
	r.publish(ctx, EventRunStarted, map[string]interface{}{"run_id": runID.String()})

	result, err := r.service.Run(ctx, opts)
	if err != nil {
		r.fail(ctx, runID, err)
		return
	}

	if err := r.materialize(ctx, result); err != nil {
		r.fail(ctx, runID, err)
		return
	}

	reportsJSON, err := storage.MarshalReports(result.Reports)
	if err != nil {
		r.fail(ctx, runID, err)
		return
	}

	completed := time.Now().UTC()
	_ = r.repo.Update(ctx, runID, map[string]interface{}{
		"status":        models.RunStatusCompleted,
		"cohort_size":   result.CohortSize,
		"reports":       reportsJSON,
		"completed_at":  completed,
		"error_message": "",
	})

	warnings, failedSources := 0, 0
	for _, rep := range result.Reports {
		warnings += len(rep.Warnings)
		if rep.Status == models.SourceStatusFailed {
			failedSources++
		}
	}
	metrics.ObserveRunCompleted(result.CohortSize, warnings, failedSources)

	r.publish(ctx, EventRunCompleted, map[string]interface{}{
		"run_id":         runID.String(),
		"cohort_size":    result.CohortSize,
		"sources":        len(result.Reports),
		"failed_sources": failedSources,
		"warnings":       warnings,
	})
}

func (r *Runner) fail(ctx context.Context, runID uuid.UUID, err error) {
	logger.Log.WithError(err).Error("derivation run failed")
	metrics.ObserveRunFailed()
	completed := time.Now().UTC()
	_ = r.repo.Update(ctx, runID, map[string]interface{}{
		"status":        models.RunStatusFailed,
		"error_message": err.Error(),
		"completed_at":  completed,
	})
	r.publish(ctx, EventRunFailed, map[string]interface{}{
		"run_id": runID.String(),
		"error":  err.Error(),
	})
}

func (r *Runner) materialize(ctx context.Context, result models.RunResult) error {
	if r.featureStore == nil {
		return nil
	}
	version := int(time.Now().Unix())
	for patientID, features := range FlattenFeatures(result) {
		if err := r.featureStore.Materialize(ctx, patientID, features, version); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if r.producer == nil {
		return
	}
	if err := r.producer.PublishEvent(ctx, eventType, "derive-service", data); err != nil {
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("failed to publish run event")
	}
}
