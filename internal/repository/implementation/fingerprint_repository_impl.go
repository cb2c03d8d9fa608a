package implementation

import (
	"context"
	"errors"

	"riff-be/internal/entity"
	"riff-be/internal/mapper"
	"riff-be/internal/model"
	"riff-be/internal/repository/contract"
	"riff-be/internal/repository/scope"
	"riff-be/internal/repository/specification"

	"gorm.io/gorm"
)

type FingerprintRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FingerprintMapper
}

func NewFingerprintRepository(db *gorm.DB) contract.FingerprintRepository {
	return &FingerprintRepositoryImpl{
		db:     db,
		mapper: mapper.NewFingerprintMapper(),
	}
}

func (r *FingerprintRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Fingerprint, error) {
	var fp model.Fingerprint
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&fp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var insights []*model.Insight
	if err := r.db.WithContext(ctx).
		Scopes(scope.OrderByPosition).
		Where("fp = ?", fp.Fp).
		Find(&insights).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntity(&fp, insights), nil
}

func (r *FingerprintRepositoryImpl) Create(ctx context.Context, fp *entity.Fingerprint) error {
	if err := r.db.WithContext(ctx).Create(r.mapper.ToModel(fp)).Error; err != nil {
		return err
	}

	insights := r.mapper.InsightsToModels(fp)
	if len(insights) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(insights, 100).Error
}

func (r *FingerprintRepositoryImpl) DeleteByFp(ctx context.Context, fp string) error {
	if err := r.db.WithContext(ctx).Where("fp = ?", fp).Delete(&model.Insight{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("fp = ?", fp).Delete(&model.Fingerprint{}).Error
}

func (r *FingerprintRepositoryImpl) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Insight{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Fingerprint{}).Error
}
