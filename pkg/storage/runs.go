package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type runModel struct {
	ID           uuid.UUID      `gorm:"primaryKey;column:id"`
	Status       string         `gorm:"column:status"`
	Options      datatypes.JSON `gorm:"column:options"`
	Reports      datatypes.JSON `gorm:"column:reports"`
	CohortSize   int            `gorm:"column:cohort_size"`
	ErrorMessage string         `gorm:"column:error_message"`
	RequestedBy  string         `gorm:"column:requested_by"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	StartedAt    *time.Time     `gorm:"column:started_at"`
	CompletedAt  *time.Time     `gorm:"column:completed_at"`
}

func (runModel) TableName() string {
	return "derivation_runs"
}

// RunRepository keeps the bookkeeping for derivation runs so callers
// can inspect what was derived, with which window options, and which
// sources raised warnings.
type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&runModel{})
}

func (r *RunRepository) Create(ctx context.Context, run models.Run) error {
	model, err := toModel(run)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *RunRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&runModel{}).Where("id = ?", id).Updates(updates).Error
}

func (r *RunRepository) Get(ctx context.Context, id uuid.UUID) (models.Run, error) {
	var model runModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return models.Run{}, result.Error
	}
	if result.Error != nil {
		return models.Run{}, result.Error
	}
	return toDomain(&model), nil
}

func (r *RunRepository) List(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []runModel
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	runs := make([]models.Run, 0, len(records))
	for i := range records {
		runs = append(runs, toDomain(&records[i]))
	}
	return runs, nil
}

// MarshalReports serializes source reports for the JSON column; kept
// exported so the runner can attach them through Update.
func MarshalReports(reports []models.SourceReport) (datatypes.JSON, error) {
	data, err := json.Marshal(reports)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func toModel(run models.Run) (*runModel, error) {
	optionsJSON, err := json.Marshal(run.Options)
	if err != nil {
		return nil, err
	}
	reportsJSON, err := MarshalReports(run.Reports)
	if err != nil {
		return nil, err
	}
	return &runModel{
		ID:           run.ID,
		Status:       run.Status,
		Options:      datatypes.JSON(optionsJSON),
		Reports:      reportsJSON,
		CohortSize:   run.CohortSize,
		ErrorMessage: run.ErrorMessage,
		RequestedBy:  run.RequestedBy,
		CreatedAt:    run.CreatedAt,
		StartedAt:    run.StartedAt,
		CompletedAt:  run.CompletedAt,
	}, nil
}

func toDomain(model *runModel) models.Run {
	run := models.Run{
		ID:           model.ID,
		Status:       model.Status,
		CohortSize:   model.CohortSize,
		ErrorMessage: model.ErrorMessage,
		RequestedBy:  model.RequestedBy,
		CreatedAt:    model.CreatedAt,
		StartedAt:    model.StartedAt,
		CompletedAt:  model.CompletedAt,
	}
	if len(model.Options) > 0 {
		_ = json.Unmarshal(model.Options, &run.Options)
	}
	if len(model.Reports) > 0 {
		_ = json.Unmarshal(model.Reports, &run.Reports)
	}
	return run
}
