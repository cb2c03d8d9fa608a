package implementation

import (
	"context"
	"errors"
	"time"

	"riff-be/internal/constant"
	"riff-be/internal/entity"
	"riff-be/internal/mapper"
	"riff-be/internal/model"
	"riff-be/internal/repository/contract"
	"riff-be/internal/repository/specification"

	"gorm.io/gorm"
)

type RunRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RunMapper
}

func NewRunRepository(db *gorm.DB) contract.RunRepository {
	return &RunRepositoryImpl{
		db:     db,
		mapper: mapper.NewRunMapper(),
	}
}

func (r *RunRepositoryImpl) Create(ctx context.Context, run *entity.Run) error {
	return r.db.WithContext(ctx).Create(r.mapper.ToModel(run)).Error
}

func (r *RunRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Run, error) {
	var m model.Run
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RunRepositoryImpl) UpdateStatus(ctx context.Context, id string, status constant.RunStatus, errMsg string, finishedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Run{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      string(status),
		"error":       errMsg,
		"finished_at": finishedAt,
	}).Error
}

type RunEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RunMapper
}

func NewRunEventRepository(db *gorm.DB) contract.RunEventRepository {
	return &RunEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewRunMapper(),
	}
}

func (r *RunEventRepositoryImpl) NextSeq(ctx context.Context, runID string) (int, error) {
	var maxSeq int
	err := r.db.WithContext(ctx).
		Model(&model.RunEvent{}).
		Where("run_id = ?", runID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	return maxSeq + 1, nil
}

func (r *RunEventRepositoryImpl) Create(ctx context.Context, event *entity.RunEvent) error {
	m := r.mapper.EventToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	event.Id = m.Id
	return nil
}

func (r *RunEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RunEvent, error) {
	var models []*model.RunEvent
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.EventsToEntities(models), nil
}
