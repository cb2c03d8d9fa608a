package implementation

import (
	"context"
	"errors"

	"riff-be/internal/entity"
	"riff-be/internal/mapper"
	"riff-be/internal/model"
	"riff-be/internal/repository/contract"
	"riff-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ChainRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChainMapper
}

func NewChainRepository(db *gorm.DB) contract.ChainRepository {
	return &ChainRepositoryImpl{
		db:     db,
		mapper: mapper.NewChainMapper(),
	}
}

func (r *ChainRepositoryImpl) Create(ctx context.Context, chain *entity.Chain) error {
	m, err := r.mapper.ToModel(chain)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	chain.CreatedAt = m.CreatedAt
	return nil
}

func (r *ChainRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chain, error) {
	var m model.Chain
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *ChainRepositoryImpl) CreateShare(ctx context.Context, share *entity.Share) error {
	m := r.mapper.ShareToModel(share)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	share.CreatedAt = m.CreatedAt
	return nil
}

func (r *ChainRepositoryImpl) FindShare(ctx context.Context, slug string) (*entity.Share, error) {
	var m model.Share
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ShareToEntity(&m), nil
}
